package memory

import (
	"context"
	"testing"
	"time"

	"pocketbudget/internal/core"
)

func sample(id, title string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Title:    title,
		Amount:   12.50,
		Category: "Food",
		Type:     core.Expense,
		Date:     time.Date(2026, 8, 10, 9, 0, 0, 0, time.Local),
	}
}

func TestAppendAndExported(t *testing.T) {
	exp := New()
	ctx := context.Background()

	ref, err := exp.Append(ctx, sample("a", "Coffee"))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	if _, err := exp.Append(ctx, sample("b", "Lunch")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got := exp.Exported()
	if len(got) != 2 {
		t.Fatalf("len(Exported()) = %d, want 2", len(got))
	}
	if got[0].Title != "Coffee" || got[1].Title != "Lunch" {
		t.Errorf("exported order = %q, %q", got[0].Title, got[1].Title)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	exp := New()
	tx := sample("a", "")
	if _, err := exp.Append(context.Background(), tx); err == nil {
		t.Error("expected validation error for empty title")
	}
}

func TestRemoveDropsMatchingRows(t *testing.T) {
	exp := New()
	ctx := context.Background()

	exp.Append(ctx, sample("a", "Coffee"))
	exp.Append(ctx, sample("b", "Lunch"))
	exp.Append(ctx, sample("a", "Coffee again"))

	if err := exp.Remove(ctx, "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	got := exp.Exported()
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("after remove: %+v, want only id b", got)
	}
}
