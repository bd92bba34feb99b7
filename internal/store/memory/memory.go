// Package memory provides an in-memory transaction store used as the
// default backend and as a test double.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pocketbudget/internal/core"
	"pocketbudget/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store pre-populated with the given records,
// assigning ids to any record missing one.
func NewSeeded(txs []core.Transaction) *Store {
	s := New()
	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.items = append(s.items, t)
	}
	return s
}

// FetchAll returns a copy of the records ordered by date descending.
func (s *Store) FetchAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, store.ErrNotFound
}

func (s *Store) Create(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	s.items = append(s.items, tx)
	return tx, nil
}

func (s *Store) Update(_ context.Context, id string, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			tx.ID = id
			s.items[i] = tx
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
