// Package kv defines the key-value persistence port shared by the ledger and
// settings stores.
package kv

import (
	"context"
	"errors"
)

// Fixed storage keys.
const (
	LedgerKey   = "financeTrackerData"
	SettingsKey = "financeSettings"
)

var ErrClosed = errors.New("store closed")

// Ports for persistence backends.
type (
	Getter interface {
		// Get returns the stored value and whether the key exists.
		Get(ctx context.Context, key string) ([]byte, bool, error)
	}

	Setter interface {
		// Set replaces the value stored under key.
		Set(ctx context.Context, key string, value []byte) error
	}

	Store interface {
		Getter
		Setter
	}
)
