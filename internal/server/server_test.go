package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashflow/internal/certs"
	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *ledger.Service) {
	t.Helper()
	svc := testutil.NewLedger(t, testutil.WithRates(map[string]float64{"USD": 0.012})).Service

	srv, err := New(svc, Config{}, nil)
	require.NoError(t, err)
	return srv, svc
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) model.Snapshot {
	t.Helper()
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(nil, Config{}, nil)
	require.Error(t, err)
}

func TestServer_BudgetFlow(t *testing.T) {
	srv, svc := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/salary", `{"salary": 1000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.InDelta(t, 1000, snap.Salary, 1e-9)
	assert.Equal(t, "INR", snap.Currency)

	rec = do(t, srv, http.MethodPost, "/api/expenses", `{"name": "Rent", "amount": 950}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created expenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Rent", created.Expense.Name)
	assert.NotZero(t, created.Expense.ID)
	assert.InDelta(t, 50, created.Snapshot.Balance, 1e-9)
	assert.True(t, created.Snapshot.Alert)

	rec = do(t, srv, http.MethodGet, "/api/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	require.Len(t, snap.Expenses, 1)
	assert.InDelta(t, 950, snap.TotalExpenses, 1e-9)

	rec = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.Expense.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decodeSnapshot(t, rec)
	assert.Empty(t, snap.Expenses)
	assert.False(t, snap.Alert)
	assert.Empty(t, svc.Ledger().Expenses)
}

func TestServer_SelectCurrency(t *testing.T) {
	srv, svc := newTestServer(t)
	_, err := svc.SetSalary(context.Background(), 1000)
	require.NoError(t, err)

	rec := do(t, srv, http.MethodPut, "/api/currency", `{"currency": "usd"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeSnapshot(t, rec)
	assert.Equal(t, "USD", snap.Currency)
	assert.InDelta(t, 0.012, snap.Rate, 1e-12)
	assert.InDelta(t, 12, snap.Salary, 1e-9)

	rec = do(t, srv, http.MethodGet, "/api/snapshot?currency=INR", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INR", decodeSnapshot(t, rec).Currency)
}

func TestServer_ConversionFailureKeepsPreviousCurrency(t *testing.T) {
	srv, svc := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/currency", `{"currency": "JPY"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Currency conversion failed", errorOf(t, rec))
	assert.Equal(t, "INR", svc.Snapshot().Currency)
}

func TestServer_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{name: "negative salary", method: http.MethodPut, target: "/api/salary", body: `{"salary": -1}`},
		{name: "missing salary", method: http.MethodPut, target: "/api/salary", body: `{}`},
		{name: "malformed body", method: http.MethodPut, target: "/api/salary", body: `{"salary":`},
		{name: "unknown field", method: http.MethodPost, target: "/api/expenses", body: `{"name":"a","amount":1,"x":1}`},
		{name: "blank name", method: http.MethodPost, target: "/api/expenses", body: `{"name":"  ","amount":10}`},
		{name: "zero amount", method: http.MethodPost, target: "/api/expenses", body: `{"name":"Rent","amount":0}`},
		{name: "missing amount", method: http.MethodPost, target: "/api/expenses", body: `{"name":"Rent"}`},
		{name: "bad id", method: http.MethodDelete, target: "/api/expenses/abc"},
		{name: "bad currency code", method: http.MethodPut, target: "/api/currency", body: `{"currency":"dollars"}`},
		{name: "bad report format", method: http.MethodGet, target: "/api/report?format=docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, svc := newTestServer(t)
			rec := do(t, srv, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, errorOf(t, rec))
			assert.Zero(t, svc.Ledger().Salary)
			assert.Empty(t, svc.Ledger().Expenses)
		})
	}
}

func TestServer_Report(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx := context.Background()
	_, err := svc.SetSalary(ctx, 1000)
	require.NoError(t, err)
	_, _, err = svc.AddExpense(ctx, "Rent", 400)
	require.NoError(t, err)
	// Exports stay in base units whatever the display currency.
	_, err = svc.SelectCurrency(ctx, "USD")
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/report?format=json", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "cash-flow-report.json")

		var rep model.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
		assert.Equal(t, "INR", rep.Currency)
		assert.InDelta(t, 600, rep.Balance, 1e-9)
	})

	t.Run("text", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/report?format=text", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "cash-flow-report.txt")
		assert.Contains(t, rec.Body.String(), "Rent")
	})

	t.Run("pdf", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/report?format=pdf", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	})

	t.Run("default format", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/report", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})
}

func TestServer_CORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/salary", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(currency.ErrSuperseded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("disk full")))
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	_, svc := newTestServer(t)
	srv, err := New(svc, Config{Addr: "127.0.0.1:0"}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ListenAndServeTLSStopsOnCancel(t *testing.T) {
	_, svc := newTestServer(t)
	tlsCfg, err := certs.TLSConfig(certs.NewFileManager(t.TempDir()))
	require.NoError(t, err)

	srv, err := New(svc, Config{Addr: "127.0.0.1:0", TLS: tlsCfg}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
