// Package memory provides an in-memory exporter used as a test double
// and for local runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"pocketbudget/internal/core"
)

type Exporter struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Exporter {
	return &Exporter{}
}

// Append stores the transaction and returns a synthetic row reference.
func (e *Exporter) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = append(e.items, tx)
	return fmt.Sprintf("mem:%d", len(e.items)), nil
}

// Remove drops every stored row carrying the given transaction id.
func (e *Exporter) Remove(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.items[:0]
	for _, tx := range e.items {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	e.items = kept
	return nil
}

// Exported returns a copy of everything appended so far.
func (e *Exporter) Exported() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.Transaction, len(e.items))
	copy(out, e.items)
	return out
}
