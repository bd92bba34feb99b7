package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pocketbudget/internal/core"
	"pocketbudget/internal/ledger"
	"pocketbudget/internal/store"
)

const maxBodyBytes = 1 << 20

const dayLayout = "2006-01-02"

type transactionPayload struct {
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Date     string  `json:"date"`
}

func (p transactionPayload) toCore() (core.Transaction, error) {
	date, err := parseDate(p.Date)
	if err != nil {
		return core.Transaction{}, core.ErrZeroDate
	}
	return core.Transaction{
		Title:    sanitizeInput(p.Title),
		Amount:   p.Amount,
		Category: sanitizeInput(p.Category),
		Type:     core.TxType(p.Type),
		Date:     date,
	}, nil
}

// parseDate accepts RFC3339 or a bare YYYY-MM-DD day.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(time.Local), nil
	}
	t, err := time.ParseInLocation(dayLayout, value, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type transactionJSON struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Date     string  `json:"date"`
}

func renderTransaction(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:       tx.ID,
		Title:    tx.Title,
		Amount:   tx.Amount,
		Category: tx.Category,
		Type:     string(tx.Type),
		Date:     tx.Date.Format(time.RFC3339),
	}
}

type dayGroupJSON struct {
	Day          string            `json:"day"`
	Transactions []transactionJSON `json:"transactions"`
}

type listResponse struct {
	Groups []dayGroupJSON `json:"groups"`
}

// handleListTransactions returns transactions grouped by calendar day,
// optionally filtered by type and category ("All" matches everything).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	typeFilter := filterParam(r, "type")
	categoryFilter := filterParam(r, "category")

	txs, err := s.service.FetchAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	groups := ledger.FilterGroupByDay(txs, typeFilter, categoryFilter)
	resp := listResponse{Groups: make([]dayGroupJSON, 0, len(groups))}
	for _, g := range groups {
		items := make([]transactionJSON, 0, len(g.Items))
		for _, tx := range g.Items {
			items = append(items, renderTransaction(tx))
		}
		resp.Groups = append(resp.Groups, dayGroupJSON{
			Day:          g.Day.Format(dayLayout),
			Transactions: items,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func filterParam(r *http.Request, name string) string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return ledger.FilterAll
	}
	return v
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	tx, err := payload.toCore()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}

	saved, err := s.service.Create(r.Context(), tx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.invalidateAggregates()
	writeJSON(w, http.StatusCreated, renderTransaction(saved))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransaction(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	tx, err := payload.toCore()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}

	id := r.PathValue("id")
	if err := s.service.Update(r.Context(), id, tx); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.invalidateAggregates()

	updated, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransaction(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.invalidateAggregates()
	w.WriteHeader(http.StatusNoContent)
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// handleCategories returns the distinct categories present in the data,
// "All" first, for filter menus.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	txs, err := s.service.FetchAll(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: ledger.Categories(txs)})
}

func decodePayload(w http.ResponseWriter, r *http.Request) (transactionPayload, bool) {
	var payload transactionPayload
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return transactionPayload{}, false
	}
	return payload, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"url", r.URL.Path,
			"error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrEmptyTitle,
		core.ErrTitleTooLong,
		core.ErrInvalidAmount,
		core.ErrEmptyCategory,
		core.ErrInvalidType,
		core.ErrZeroDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
