package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/repo"
)

// Rates holds exchange rates as units of each currency per one unit of a
// common base currency.
type Rates map[string]decimal.Decimal

// ParseRates converts configured "CODE" -> "rate" strings into Rates.
func ParseRates(raw map[string]string) (Rates, error) {
	rates := make(Rates, len(raw))
	for code, v := range raw {
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("service.ParseRates: %s: %w", code, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("service.ParseRates: %s: rate must be positive", code)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = d
	}
	return rates, nil
}

// Convert expresses amount in currency from as currency to, rounded to
// cents. Returns domain.ErrValidation when either currency has no rate.
func (r Rates) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	fromRate, ok := r[from]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: no exchange rate for %s", domain.ErrValidation, from)
	}
	toRate, ok := r[to]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: no exchange rate for %s", domain.ErrValidation, to)
	}
	return amount.Div(fromRate).Mul(toRate).Round(2), nil
}

// ExpenseService records spending against trips and totals it.
type ExpenseService struct {
	store repo.TripStore
	rates Rates
	locks *TripLocks
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(store repo.TripStore, rates Rates, locks *TripLocks) *ExpenseService {
	return &ExpenseService{store: store, rates: rates, locks: locks}
}

// List returns the trip's expenses.
func (s *ExpenseService) List(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.Expense, error) {
	trip, err := loadOwned(ctx, s.store, sess, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.List: %w", err)
	}
	return trip.Expenses, nil
}

// Add validates and records an expense.
func (s *ExpenseService) Add(ctx context.Context, sess domain.Session, tripID uuid.UUID, e domain.Expense) (domain.Expense, error) {
	e.Title = strings.TrimSpace(e.Title)
	e.Category = strings.TrimSpace(e.Category)
	e.Currency = strings.ToUpper(strings.TrimSpace(e.Currency))
	if e.Title == "" {
		return domain.Expense{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !e.Amount.IsPositive() {
		return domain.Expense{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if _, ok := s.rates[e.Currency]; !ok {
		return domain.Expense{}, fmt.Errorf("%w: unsupported currency %q", domain.ErrValidation, e.Currency)
	}
	if e.SpentOn.IsZero() {
		return domain.Expense{}, fmt.Errorf("%w: spent_on is required", domain.ErrValidation)
	}
	e.ID = uuid.New()
	e.Amount = e.Amount.Round(2)

	_, err := mutate(ctx, s.store, s.locks, sess, tripID, func(t *domain.Trip) error {
		t.Expenses = append(t.Expenses, e)
		return nil
	})
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Add: %w", err)
	}
	return e, nil
}

// Delete removes an expense.
func (s *ExpenseService) Delete(ctx context.Context, sess domain.Session, tripID, expenseID uuid.UUID) error {
	_, err := mutate(ctx, s.store, s.locks, sess, tripID, func(t *domain.Trip) error {
		i := slices.IndexFunc(t.Expenses, func(e domain.Expense) bool { return e.ID == expenseID })
		if i < 0 {
			return domain.ErrNotFound
		}
		t.Expenses = slices.Delete(t.Expenses, i, i+1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("service.ExpenseService.Delete: %w", err)
	}
	return nil
}

// Summary totals the trip's expenses per original currency, and per
// category and overall in the trip's home currency.
func (s *ExpenseService) Summary(ctx context.Context, sess domain.Session, tripID uuid.UUID) (domain.ExpenseSummary, error) {
	trip, err := loadOwned(ctx, s.store, sess, tripID)
	if err != nil {
		return domain.ExpenseSummary{}, fmt.Errorf("service.ExpenseService.Summary: %w", err)
	}

	sum := domain.ExpenseSummary{
		Currency:   trip.HomeCurrency,
		Total:      decimal.Zero,
		ByCurrency: map[string]decimal.Decimal{},
		ByCategory: map[string]decimal.Decimal{},
	}
	for _, e := range trip.Expenses {
		sum.ByCurrency[e.Currency] = sum.ByCurrency[e.Currency].Add(e.Amount)

		home, err := s.rates.Convert(e.Amount, e.Currency, trip.HomeCurrency)
		if err != nil {
			return domain.ExpenseSummary{}, fmt.Errorf("service.ExpenseService.Summary: %w", err)
		}
		category := e.Category
		if category == "" {
			category = "other"
		}
		sum.ByCategory[category] = sum.ByCategory[category].Add(home)
		sum.Total = sum.Total.Add(home)
	}
	return sum, nil
}
