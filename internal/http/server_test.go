package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pocketbudget/internal/core"
	"pocketbudget/internal/predict"
	"pocketbudget/internal/services"
	"pocketbudget/internal/store/memory"
)

func newTestServer(seed ...core.Transaction) (*Server, *httptest.Server) {
	svc := services.NewTransactionService(memory.NewSeeded(seed), nil)
	s := NewServer(":0", svc, predict.NewHeuristic())
	ts := httptest.NewServer(s.Handler)
	return s, ts
}

func seedTx(title string, amount float64, category string, typ core.TxType, date time.Time) core.Transaction {
	return core.Transaction{Title: title, Amount: amount, Category: category, Type: typ, Date: date}
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthAndReady(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestTransactionLifecycle(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	payload := transactionPayload{
		Title:    "Groceries",
		Amount:   54.20,
		Category: "Food",
		Type:     "Expense",
		Date:     "2026-08-10",
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/transactions", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created transactionJSON
	decodeInto(t, resp, &created)
	if created.ID == "" {
		t.Fatal("created transaction should carry an id")
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/transactions/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	var fetched transactionJSON
	decodeInto(t, resp, &fetched)
	if fetched.Title != "Groceries" {
		t.Errorf("fetched title = %q", fetched.Title)
	}

	payload.Title = "Weekly groceries"
	payload.Amount = 61.80
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/v1/transactions/"+created.ID, payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	var updated transactionJSON
	decodeInto(t, resp, &updated)
	if updated.Title != "Weekly groceries" || updated.Amount != 61.80 {
		t.Errorf("updated = %+v", updated)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/transactions/"+created.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/transactions/"+created.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestCreateValidation(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	tests := []struct {
		name    string
		payload transactionPayload
		want    int
	}{
		{
			name:    "empty title",
			payload: transactionPayload{Amount: 10, Category: "Food", Type: "Expense", Date: "2026-08-10"},
			want:    http.StatusUnprocessableEntity,
		},
		{
			name:    "zero amount",
			payload: transactionPayload{Title: "x", Category: "Food", Type: "Expense", Date: "2026-08-10"},
			want:    http.StatusUnprocessableEntity,
		},
		{
			name:    "lowercase type",
			payload: transactionPayload{Title: "x", Amount: 10, Category: "Food", Type: "expense", Date: "2026-08-10"},
			want:    http.StatusUnprocessableEntity,
		},
		{
			name:    "garbage date",
			payload: transactionPayload{Title: "x", Amount: 10, Category: "Food", Type: "Expense", Date: "not-a-date"},
			want:    http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/transactions", tt.payload)
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/transactions", "application/json",
		bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListGroupsByDayWithFilters(t *testing.T) {
	day1 := time.Date(2026, 8, 10, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 8, 11, 9, 0, 0, 0, time.Local)
	_, ts := newTestServer(
		seedTx("Salary", 2500, "Salary", core.Income, day1),
		seedTx("Coffee", 3.50, "Food", core.Expense, day1.Add(time.Hour)),
		seedTx("Lunch", 12, "Food", core.Expense, day2),
	)
	defer ts.Close()

	var resp listResponse
	r := doJSON(t, http.MethodGet, ts.URL+"/api/v1/transactions?type=Expense&category=Food", nil)
	decodeInto(t, r, &resp)

	if len(resp.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(resp.Groups))
	}
	// Most recent day first.
	if resp.Groups[0].Day != "2026-08-11" || resp.Groups[1].Day != "2026-08-10" {
		t.Errorf("group order = %s, %s", resp.Groups[0].Day, resp.Groups[1].Day)
	}
	for _, g := range resp.Groups {
		for _, tx := range g.Transactions {
			if tx.Type != "Expense" || tx.Category != "Food" {
				t.Errorf("filter leaked %+v", tx)
			}
		}
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.Local)
	_, ts := newTestServer(
		seedTx("Coffee", 3.50, "Food", core.Expense, day),
		seedTx("Bus", 2, "Transport", core.Expense, day),
	)
	defer ts.Close()

	var resp categoriesResponse
	r := doJSON(t, http.MethodGet, ts.URL+"/api/v1/categories", nil)
	decodeInto(t, r, &resp)

	want := []string{"All", "Food", "Transport"}
	if fmt.Sprint(resp.Categories) != fmt.Sprint(want) {
		t.Errorf("categories = %v, want %v", resp.Categories, want)
	}
}

func TestDashboardValues(t *testing.T) {
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.Local)
	_, ts := newTestServer(
		seedTx("Salary", 50000, "Salary", core.Income, day),
		seedTx("Rent", 6500, "Rent", core.Expense, day),
	)
	defer ts.Close()

	var resp dashboardResponse
	r := doJSON(t, http.MethodGet, ts.URL+"/api/v1/dashboard", nil)
	decodeInto(t, r, &resp)

	if resp.TotalIncome != 50000 || resp.TotalExpense != 6500 {
		t.Errorf("totals = %v / %v", resp.TotalIncome, resp.TotalExpense)
	}
	if resp.Balance != 43500 {
		t.Errorf("balance = %v, want 43500", resp.Balance)
	}
	if resp.BudgetUsage != 0.13 {
		t.Errorf("budget usage = %v, want 0.13", resp.BudgetUsage)
	}
	if resp.PredictedExpense != 6662.5 {
		t.Errorf("predicted = %v, want 6662.5", resp.PredictedExpense)
	}
}

func TestDashboardCacheInvalidatedByMutation(t *testing.T) {
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.Local)
	_, ts := newTestServer(seedTx("Salary", 1000, "Salary", core.Income, day))
	defer ts.Close()

	var before dashboardResponse
	decodeInto(t, doJSON(t, http.MethodGet, ts.URL+"/api/v1/dashboard", nil), &before)
	if before.TotalExpense != 0 {
		t.Fatalf("expense before = %v", before.TotalExpense)
	}

	payload := transactionPayload{Title: "Rent", Amount: 400, Category: "Rent", Type: "Expense", Date: "2026-08-10"}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/transactions", payload)
	resp.Body.Close()

	var after dashboardResponse
	decodeInto(t, doJSON(t, http.MethodGet, ts.URL+"/api/v1/dashboard", nil), &after)
	if after.TotalExpense != 400 {
		t.Errorf("expense after create = %v, want 400 (stale cache?)", after.TotalExpense)
	}
}

func TestBuildAnalytics(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.Local)
	txs := []core.Transaction{
		seedTx("July rent", 800, "Rent", core.Expense, time.Date(2026, 7, 1, 10, 0, 0, 0, time.Local)),
		seedTx("Salary", 2500, "Salary", core.Income, time.Date(2026, 8, 1, 9, 0, 0, 0, time.Local)),
		seedTx("Rent", 850, "Rent", core.Expense, time.Date(2026, 8, 1, 10, 0, 0, 0, time.Local)),
		seedTx("Groceries", 60, "Food", core.Expense, time.Date(2026, 8, 14, 18, 0, 0, 0, time.Local)),
		// After "now": excluded from the combined series, kept in daily.
		seedTx("Concert", 90, "Entertainment", core.Expense, time.Date(2026, 8, 20, 20, 0, 0, 0, time.Local)),
	}

	s := &Server{predictor: predict.NewHeuristic()}
	resp := s.buildAnalytics(txs, now)

	if len(resp.MonthlyExpense) != 2 {
		t.Errorf("monthly expense buckets = %d, want 2", len(resp.MonthlyExpense))
	}
	if len(resp.DailyExpense) != 3 {
		t.Errorf("daily expense buckets = %d, want 3", len(resp.DailyExpense))
	}

	// The 2026-08-20 expense is beyond the cutoff.
	for _, p := range resp.Combined {
		if p.Date > "2026-08-15" {
			t.Errorf("combined contains point after cutoff: %+v", p)
		}
	}
	// Same-date tie: Expense sorts before Income.
	if len(resp.Combined) < 2 || resp.Combined[0].Label != "Expense" || resp.Combined[1].Label != "Income" {
		t.Errorf("combined head = %+v", resp.Combined[:min(2, len(resp.Combined))])
	}

	cmp := resp.MonthComparison
	if cmp.PreviousExpense != 800 {
		t.Errorf("previous expense = %v, want 800", cmp.PreviousExpense)
	}
	if cmp.CurrentExpense != 1000 {
		t.Errorf("current expense = %v, want 1000", cmp.CurrentExpense)
	}
	if cmp.PredictedExpense != predict.Heuristic(2500, 1800) {
		t.Errorf("predicted = %v", cmp.PredictedExpense)
	}
}
