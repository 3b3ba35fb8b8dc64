package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/currency"
	"github.com/Veraticus/cashflow/internal/ledger"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/report"
)

// ReportFileName is the base name offered for downloaded reports.
const ReportFileName = "cash-flow-report"

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"txt":  "text/plain; charset=utf-8",
	"json": "application/json",
}

type salaryRequest struct {
	Salary *float64 `json:"salary"`
}

type expenseRequest struct {
	Amount *float64 `json:"amount"`
	Name   string   `json:"name"`
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

type expenseResponse struct {
	Expense  model.Expense  `json:"expense"`
	Snapshot model.Snapshot `json:"snapshot"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("currency")
	if code == "" {
		s.writeJSON(w, http.StatusOK, s.svc.Snapshot())
		return
	}
	s.dispatch(w, r, ledger.Action{Kind: ledger.ActionSelectCurrency, Currency: code})
}

func (s *Server) putSalary(w http.ResponseWriter, r *http.Request) {
	var req salaryRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Salary == nil {
		s.writeError(w, common.InvalidInput("salary is required"))
		return
	}
	s.dispatch(w, r, ledger.Action{Kind: ledger.ActionSetSalary, Salary: *req.Salary})
}

func (s *Server) postExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Amount == nil {
		s.writeError(w, common.InvalidInput("amount is required"))
		return
	}

	res, err := s.svc.Dispatch(r.Context(), ledger.Action{
		Kind:   ledger.ActionAddExpense,
		Name:   req.Name,
		Amount: *req.Amount,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, expenseResponse{Expense: *res.Expense, Snapshot: res.Snapshot})
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, common.InvalidInput("expense id %q is not a number", chi.URLParam(r, "id")))
		return
	}
	s.dispatch(w, r, ledger.Action{Kind: ledger.ActionDeleteExpense, ID: id})
}

func (s *Server) putCurrency(w http.ResponseWriter, r *http.Request) {
	var req currencyRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, ledger.Action{Kind: ledger.ActionSelectCurrency, Currency: req.Currency})
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = s.cfg.ExportFormat
	}
	renderer, err := report.New(format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Rendered into memory so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if _, err := s.svc.Dispatch(r.Context(), ledger.Action{
		Kind:     ledger.ActionRequestExport,
		Renderer: renderer,
		Output:   &buf,
	}); err != nil {
		s.writeError(w, err)
		return
	}

	ext := renderer.Extension()
	w.Header().Set("Content-Type", contentTypes[ext])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFileName+"."+ext))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("Failed to write report response", "error", err)
	}
}

// dispatch runs a and responds with the resulting snapshot.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, a ledger.Action) {
	res, err := s.svc.Dispatch(r.Context(), a)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res.Snapshot)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, common.InvalidInput("malformed request body: %v", err))
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, currency.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrConversionFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	} else {
		s.logger.Debug("Request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: common.UserMessage(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", "error", err)
	}
}
