package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{Description: "Lunch", Amount: "12.50", Category: "Food", Date: "2025-01-01"}
	amount, err := good.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected amount %s", amount)
	}

	cases := []struct {
		name   string
		in     TransactionInput
		fields []string
	}{
		{"blank description", TransactionInput{Description: "  ", Amount: "1", Category: "c", Date: "2025-01-01"}, []string{FieldDescription}},
		{"zero amount", TransactionInput{Description: "a", Amount: "0", Category: "c", Date: "2025-01-01"}, []string{FieldAmount}},
		{"text amount", TransactionInput{Description: "a", Amount: "abc", Category: "c", Date: "2025-01-01"}, []string{FieldAmount}},
		{"no category", TransactionInput{Description: "a", Amount: "1", Category: "", Date: "2025-01-01"}, []string{FieldCategory}},
		{"no date", TransactionInput{Description: "a", Amount: "1", Category: "c", Date: ""}, []string{FieldDate}},
		{"everything", TransactionInput{}, []string{FieldDescription, FieldAmount, FieldCategory, FieldDate}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Validate()
			verrs, ok := AsValidation(err)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if len(verrs) != len(tc.fields) {
				t.Fatalf("expected %d errors, got %v", len(tc.fields), verrs)
			}
			for i, f := range tc.fields {
				if verrs[i].Field != f {
					t.Fatalf("error %d: expected field %s, got %s", i, f, verrs[i].Field)
				}
			}
		})
	}
}

func TestValidationErrorsMatchSentinels(t *testing.T) {
	_, err := TransactionInput{Date: "01/02/2025"}.Validate()
	for _, want := range []error{ErrEmptyDescription, ErrInvalidAmount, ErrMissingCategory, ErrInvalidDate} {
		if !errors.Is(err, want) {
			t.Fatalf("expected errors.Is(%v)", want)
		}
	}
	verrs, _ := AsValidation(err)
	if verrs[3].Code() != "InvalidDate" || verrs[0].Code() != "EmptyDescription" {
		t.Fatalf("unexpected codes: %s %s", verrs[0].Code(), verrs[3].Code())
	}
	if verrs.Fields()[FieldAmount] != ErrInvalidAmount.Error() {
		t.Fatalf("unexpected field map: %v", verrs.Fields())
	}
}

func TestTransactionValidate(t *testing.T) {
	ok := Transaction{ID: "a", Description: "d", Amount: decimal.NewFromInt(1), Category: "c", Date: "2025-01-01"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := Transaction{ID: "a", Description: "d", Amount: decimal.NewFromInt(-1), Category: "c", Date: "2025-01-01"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransactionJSONFieldOrder(t *testing.T) {
	tx := Transaction{
		ID:          "txn_1",
		Description: "Bus",
		Amount:      decimal.RequireFromString("2.5"),
		Category:    "Transport",
		Date:        "2025-02-03",
		CreatedAt:   "2025-02-03T10:00:00.000Z",
		UpdatedAt:   "2025-02-03T10:00:00.000Z",
	}
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"txn_1","description":"Bus","amount":2.5,"category":"Transport","date":"2025-02-03","createdAt":"2025-02-03T10:00:00.000Z","updatedAt":"2025-02-03T10:00:00.000Z"}`
	if string(b) != want {
		t.Fatalf("got %s", b)
	}
}

func TestLedgerHelpers(t *testing.T) {
	l := Ledger{{ID: "a"}, {ID: "b"}}
	c := l.Clone()
	c[0].ID = "z"
	if l[0].ID != "a" {
		t.Fatalf("clone shares storage")
	}
	if l.Index("b") != 1 || l.Index("x") != -1 {
		t.Fatalf("unexpected index")
	}
	if _, ok := l.IDs()["a"]; !ok {
		t.Fatalf("missing id")
	}
	if Ledger(nil).Clone() == nil {
		t.Fatalf("clone of nil should be empty, not nil")
	}
}

func TestUUIDGeneratorUnique(t *testing.T) {
	var g UUIDGenerator
	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		id := g.NewID()
		if !strings.HasPrefix(id, "txn_") {
			t.Fatalf("unexpected id %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
