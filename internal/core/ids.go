package core

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const idPrefix = "txn_"

// IDGenerator produces transaction identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator builds ids from UUIDv7: a millisecond timestamp followed by
// random bits, so ids sort by creation time and do not collide within the
// same millisecond.
type UUIDGenerator struct {
	fallback atomic.Uint64
}

func (g *UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		n := g.fallback.Add(1)
		return idPrefix + strconv.FormatInt(time.Now().UnixNano(), 10) + "_" + strconv.FormatUint(n, 10)
	}
	return idPrefix + id.String()
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }
