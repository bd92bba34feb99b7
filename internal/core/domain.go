package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"
)

type (
	// TxType is the two-variant transaction kind. The sign of Amount never
	// encodes it; callers must branch on the type explicitly.
	TxType string

	// Transaction is a single income or expense record. ID is assigned by
	// the store at creation and immutable afterwards.
	Transaction struct {
		ID       string
		Title    string
		Amount   float64
		Category string
		Type     TxType
		Date     time.Time
	}
)

var (
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrTitleTooLong  = errors.New("title too long (max 200 characters)")
	ErrEmptyCategory = errors.New("empty category")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// DefaultCategories is the picker set offered by the entry form. The store
// does not enforce it; any non-empty category string is persisted as-is.
func DefaultCategories() []string {
	return []string{"General", "Food", "Transport", "Bills", "Entertainment", "Health", "Salary", "Other"}
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// Validate enforces the creation-time invariants. Stores persist whatever
// they are given; this runs only at the boundary where records are built.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return ErrTitleTooLong
	}
	if t.Amount <= 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
