// Package store defines the transaction persistence port implemented by
// the memory and sqlite backends.
package store

import (
	"context"
	"errors"

	"pocketbudget/internal/core"
)

// ErrNotFound reports an id with no matching transaction.
var ErrNotFound = errors.New("transaction not found")

// Store is the outbound port for transaction persistence. FetchAll
// returns a snapshot ordered by date descending; the aggregation layer
// consumes that snapshot and never reaches back into the store.
type Store interface {
	FetchAll(ctx context.Context) ([]core.Transaction, error)
	Get(ctx context.Context, id string) (core.Transaction, error)
	// Create assigns the id and returns the stored record.
	Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	// Update rewrites all fields of an existing record, preserving its id.
	Update(ctx context.Context, id string, tx core.Transaction) error
	Delete(ctx context.Context, id string) error
}
