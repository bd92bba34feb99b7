// Package ledger derives summary statistics and time series from a
// snapshot of transactions. Every function is pure: it reads the slice it
// is given, performs no I/O, and can be re-run on any snapshot. Callers
// are responsible for supplying a coherent snapshot (one fetch result).
package ledger

import (
	"sort"
	"time"

	"pocketbudget/internal/core"
)

// FilterAll is the sentinel accepted by the filtering helpers in place of
// a concrete type or category. It is a menu option, not a real category.
const FilterAll = "All"

// Totals sums amounts per transaction type. Records are bucketed by their
// Type field only; the sign of the amount does not participate.
func Totals(txs []core.Transaction) (income, expense float64) {
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			income += t.Amount
		case core.Expense:
			expense += t.Amount
		}
	}
	return income, expense
}

// Balance is total income minus total expense.
func Balance(txs []core.Transaction) float64 {
	income, expense := Totals(txs)
	return income - expense
}

// BudgetUsage is the fraction of income consumed by expenses, clamped to
// [0, 1]. Zero income yields 0 rather than a division by zero.
func BudgetUsage(txs []core.Transaction) float64 {
	income, expense := Totals(txs)
	if income <= 0 {
		return 0
	}
	usage := expense / income
	if usage < 0 {
		return 0
	}
	if usage > 1 {
		return 1
	}
	return usage
}

// Categories returns the unique category values present, sorted lexically,
// with the FilterAll sentinel prepended for filter menus.
func Categories(txs []core.Transaction) []string {
	seen := map[string]struct{}{}
	for _, t := range txs {
		seen[t.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen)+1)
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return append([]string{FilterAll}, out...)
}

// DayGroup is one calendar day's worth of transactions, newest first.
type DayGroup struct {
	Day   time.Time
	Items []core.Transaction
}

// FilterGroupByDay selects records matching the type and category filters
// (FilterAll matches everything), groups them by calendar day, and returns
// the groups most recent day first with each day's items date-descending.
// Note the ordering is the opposite of the trend functions, which ascend.
func FilterGroupByDay(txs []core.Transaction, typeFilter, categoryFilter string) []DayGroup {
	buckets := map[int64][]core.Transaction{}
	for _, t := range txs {
		if typeFilter != FilterAll && string(t.Type) != typeFilter {
			continue
		}
		if categoryFilter != FilterAll && t.Category != categoryFilter {
			continue
		}
		day := startOfDay(t.Date)
		buckets[day.Unix()] = append(buckets[day.Unix()], t)
	}

	groups := make([]DayGroup, 0, len(buckets))
	for key, items := range buckets {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
		groups = append(groups, DayGroup{Day: time.Unix(key, 0).In(time.Local), Items: items})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Day.After(groups[j].Day) })
	return groups
}
