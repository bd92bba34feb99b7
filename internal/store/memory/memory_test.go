package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pocketbudget/internal/core"
	"pocketbudget/internal/store"
)

func sample(title string, day int) core.Transaction {
	return core.Transaction{
		Title:    title,
		Amount:   10,
		Category: "General",
		Type:     core.Expense,
		Date:     time.Date(2025, 6, day, 12, 0, 0, 0, time.Local),
	}
}

func TestCreateAssignsID(t *testing.T) {
	s := New()
	created, err := s.Create(context.Background(), sample("Coffee", 1))
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("Create must assign an id")
	}

	got, err := s.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Coffee" {
		t.Fatalf("Get() = %+v", got)
	}
}

func TestFetchAllDateDescending(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, d := range []int{3, 1, 5} {
		if _, err := s.Create(ctx, sample("t", d)); err != nil {
			t.Fatal(err)
		}
	}
	all, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].Date.Day() != 5 || all[1].Date.Day() != 3 || all[2].Date.Day() != 1 {
		t.Fatalf("not date-descending: %v", all)
	}
}

func TestUpdatePreservesID(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, _ := s.Create(ctx, sample("Old", 1))

	replacement := sample("New", 2)
	replacement.ID = "should-be-ignored"
	if err := s.Update(ctx, created.ID, replacement); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "New" || got.ID != created.ID {
		t.Fatalf("Update rewrote id or lost fields: %+v", got)
	}
}

func TestNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
	if err := s.Update(ctx, "missing", sample("x", 1)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Update error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Delete error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, _ := s.Create(ctx, sample("gone", 1))
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("record still present after delete")
	}
}

func TestFetchAllCopiesOut(t *testing.T) {
	s := NewSeeded([]core.Transaction{sample("seed", 1)})
	ctx := context.Background()
	all, _ := s.FetchAll(ctx)
	all[0].Title = "mutated"
	again, _ := s.FetchAll(ctx)
	if again[0].Title != "seed" {
		t.Fatal("FetchAll must return a copy")
	}
}
