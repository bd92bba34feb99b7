package ledger

import (
	"sort"
	"time"

	"pocketbudget/internal/core"
)

type (
	// TrendPoint is one bucket of a time series: the bucket start (day or
	// month, local calendar) and the summed amount for that bucket.
	TrendPoint struct {
		Start time.Time
		Total float64
	}

	// SeriesPoint is a labelled point in a merged income/expense series.
	SeriesPoint struct {
		Date  time.Time
		Value float64
		Label string
	}
)

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func sortedTrend(buckets map[int64]float64, loc *time.Location) []TrendPoint {
	points := make([]TrendPoint, 0, len(buckets))
	for key, total := range buckets {
		points = append(points, TrendPoint{Start: time.Unix(key, 0).In(loc), Total: total})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Start.Before(points[j].Start) })
	return points
}

// MonthlyTrend groups records of the given type by calendar year+month and
// sums their amounts, returning buckets ascending by month start. Two
// records in the same month share a bucket regardless of day.
func MonthlyTrend(txs []core.Transaction, typ core.TxType) []TrendPoint {
	buckets := map[int64]float64{}
	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		buckets[monthStart(t.Date).Unix()] += t.Amount
	}
	return sortedTrend(buckets, time.Local)
}

// DailyTrend restricts records of the given type to ref's calendar
// year+month, groups by day (time of day discarded) and sums per day,
// ascending. Days without a matching record do not appear.
func DailyTrend(txs []core.Transaction, typ core.TxType, ref time.Time) []TrendPoint {
	buckets := map[int64]float64{}
	for _, t := range txs {
		if t.Type != typ || !sameMonth(t.Date, ref) {
			continue
		}
		buckets[startOfDay(t.Date).Unix()] += t.Amount
	}
	return sortedTrend(buckets, time.Local)
}

// MonthTotal sums records of the given type falling in ref's calendar
// month. Used for the previous/current month comparison.
func MonthTotal(txs []core.Transaction, typ core.TxType, ref time.Time) float64 {
	var total float64
	for _, t := range txs {
		if t.Type == typ && sameMonth(t.Date, ref) {
			total += t.Amount
		}
	}
	return total
}

// UpToDay keeps only the buckets whose start falls on or before the day
// containing ref. Charts use it to cut a daily series off at "today".
func UpToDay(points []TrendPoint, ref time.Time) []TrendPoint {
	cutoff := startOfDay(ref)
	out := make([]TrendPoint, 0, len(points))
	for _, p := range points {
		if !startOfDay(p.Start).After(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// CombinedSeries merges an income and an expense series into one labelled
// sequence sorted by date ascending, ties broken by label lexical order
// (Expense before Income).
func CombinedSeries(income, expense []TrendPoint) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(income)+len(expense))
	for _, p := range income {
		out = append(out, SeriesPoint{Date: p.Start, Value: p.Total, Label: string(core.Income)})
	}
	for _, p := range expense {
		out = append(out, SeriesPoint{Date: p.Start, Value: p.Total, Label: string(core.Expense)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Label < out[j].Label
	})
	return out
}
