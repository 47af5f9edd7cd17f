package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a single spend logged against a trip in its original currency.
type Expense struct {
	ID       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Category string          `json:"category,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	SpentOn  time.Time       `json:"spent_on"`
}

// ExpenseSummary totals a trip's expenses.
// ByCurrency holds the raw sums; Total is everything converted to Currency.
type ExpenseSummary struct {
	Currency   string                     `json:"currency"`
	Total      decimal.Decimal            `json:"total"`
	ByCurrency map[string]decimal.Decimal `json:"by_currency"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
}

// ChecklistItem is a packing or to-do entry on a trip.
type ChecklistItem struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
	Done bool      `json:"done"`
}
