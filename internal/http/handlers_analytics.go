package http

import (
	"log/slog"
	"net/http"
	"time"

	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
)

const analyticsCacheKey = "analytics"

type (
	trendPointJSON struct {
		Date  string  `json:"date"`
		Total float64 `json:"total"`
	}

	seriesPointJSON struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
		Label string  `json:"label"`
	}

	monthComparisonJSON struct {
		PreviousExpense  float64 `json:"previous_expense"`
		CurrentExpense   float64 `json:"current_expense"`
		PredictedExpense float64 `json:"predicted_expense"`
	}

	analyticsResponse struct {
		MonthlyIncome   []trendPointJSON    `json:"monthly_income"`
		MonthlyExpense  []trendPointJSON    `json:"monthly_expense"`
		DailyIncome     []trendPointJSON    `json:"daily_income"`
		DailyExpense    []trendPointJSON    `json:"daily_expense"`
		Combined        []seriesPointJSON   `json:"combined"`
		MonthComparison monthComparisonJSON `json:"month_comparison"`
	}
)

// handleAnalytics returns the trend series for the charts: monthly
// history, the current month day by day, the merged income/expense
// series cut off at today, and the month-over-month comparison.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if resp, ok := s.analyticsCache.Get(analyticsCacheKey); ok {
		slog.DebugContext(r.Context(), "Analytics cache hit")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	txs, err := s.service.FetchAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := s.buildAnalytics(txs, time.Now())
	s.analyticsCache.Set(analyticsCacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) buildAnalytics(txs []core.Transaction, now time.Time) analyticsResponse {
	dailyIncome := ledger.DailyTrend(txs, core.Income, now)
	dailyExpense := ledger.DailyTrend(txs, core.Expense, now)

	combined := ledger.CombinedSeries(
		ledger.UpToDay(dailyIncome, now),
		ledger.UpToDay(dailyExpense, now),
	)

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	previousMonth := currentMonth.AddDate(0, -1, 0)

	income, expense := ledger.Totals(txs)

	return analyticsResponse{
		MonthlyIncome:  renderTrend(ledger.MonthlyTrend(txs, core.Income)),
		MonthlyExpense: renderTrend(ledger.MonthlyTrend(txs, core.Expense)),
		DailyIncome:    renderTrend(dailyIncome),
		DailyExpense:   renderTrend(dailyExpense),
		Combined:       renderSeries(combined),
		MonthComparison: monthComparisonJSON{
			PreviousExpense:  ledger.MonthTotal(txs, core.Expense, previousMonth),
			CurrentExpense:   ledger.MonthTotal(txs, core.Expense, currentMonth),
			PredictedExpense: s.predictor.Predict(income, expense),
		},
	}
}

func renderTrend(points []ledger.TrendPoint) []trendPointJSON {
	out := make([]trendPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointJSON{Date: p.Start.Format(dayLayout), Total: p.Total})
	}
	return out
}

func renderSeries(points []ledger.SeriesPoint) []seriesPointJSON {
	out := make([]seriesPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, seriesPointJSON{Date: p.Date.Format(dayLayout), Value: p.Value, Label: p.Label})
	}
	return out
}
