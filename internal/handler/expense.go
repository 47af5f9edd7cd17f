package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/trip-planner/internal/domain"
)

// ExpenseRequest is the body of POST /trips/{tripId}/expenses.
// Amount accepts a JSON number or a decimal string.
type ExpenseRequest struct {
	Title    string              `json:"title"`
	Category string              `json:"category,omitempty"`
	Amount   decimal.Decimal     `json:"amount"`
	Currency string              `json:"currency"`
	SpentOn  *openapi_types.Date `json:"spent_on"`
}

// ListExpenses handles GET /trips/{tripId}/expenses.
func (s *Server) ListExpenses(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	expenses, err := s.expenses.List(r.Context(), session(r), tripID)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(expenses))
}

// AddExpense handles POST /trips/{tripId}/expenses.
func (s *Server) AddExpense(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body ExpenseRequest
	if !decodeBody(w, r, &body) {
		return
	}
	e := domain.Expense{
		Title:    body.Title,
		Category: body.Category,
		Amount:   body.Amount,
		Currency: body.Currency,
	}
	if body.SpentOn != nil {
		e.SpentOn = body.SpentOn.Time
	}

	created, err := s.expenses.Add(r.Context(), session(r), tripID, e)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ExpenseSummary handles GET /trips/{tripId}/expenses/summary.
func (s *Server) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	summary, err := s.expenses.Summary(r.Context(), session(r), tripID)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DeleteExpense handles DELETE /trips/{tripId}/expenses/{expenseId}.
func (s *Server) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var expenseID openapi_types.UUID
	if !pathParam(w, r, "expenseId", &expenseID) {
		return
	}
	if err := s.expenses.Delete(r.Context(), session(r), tripID, expenseID); err != nil {
		serviceError(w, r, err, "expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
