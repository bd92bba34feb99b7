package http

import (
	"log/slog"
	"net/http"

	"pocketbudget/internal/ledger"
)

const dashboardCacheKey = "dashboard"

type dashboardResponse struct {
	TotalIncome      float64 `json:"total_income"`
	TotalExpense     float64 `json:"total_expense"`
	Balance          float64 `json:"balance"`
	BudgetUsage      float64 `json:"budget_usage"`
	PredictedExpense float64 `json:"predicted_expense"`
}

// handleDashboard returns the headline aggregates plus the next-month
// expense forecast, computed from a single snapshot.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp, ok := s.dashboardCache.Get(dashboardCacheKey); ok {
		slog.DebugContext(r.Context(), "Dashboard cache hit")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	txs, err := s.service.FetchAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	income, expense := ledger.Totals(txs)
	resp := dashboardResponse{
		TotalIncome:      income,
		TotalExpense:     expense,
		Balance:          ledger.Balance(txs),
		BudgetUsage:      ledger.BudgetUsage(txs),
		PredictedExpense: s.predictor.Predict(income, expense),
	}

	s.dashboardCache.Set(dashboardCacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}
