// Package domain contains the core data types for the trip planner.
// This package has no dependencies on other internal packages and is imported
// by every other internal package (itinerary, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is the aggregate root. Day plans, flight bookings, expenses and the
// checklist all belong to exactly one trip and are persisted with it.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CoverImage  string    `json:"cover_image,omitempty"`
	// HomeCurrency is the ISO 4217 code expense totals are converted into.
	HomeCurrency string `json:"home_currency"`

	Days      []DayPlan       `json:"days"`
	Flights   []FlightBooking `json:"flights"`
	Expenses  []Expense       `json:"expenses"`
	Checklist []ChecklistItem `json:"checklist"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateLayout is the layout of persisted day keys.
const DateLayout = "2006-01-02"

// Day returns a pointer to the day plan for date, or nil when the trip does
// not span that date.
func (t *Trip) Day(date string) *DayPlan {
	for i := range t.Days {
		if t.Days[i].Date == date {
			return &t.Days[i]
		}
	}
	return nil
}
