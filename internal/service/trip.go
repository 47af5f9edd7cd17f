// Package service contains the business logic for the trip planner API.
// Services validate inputs, enforce ownership, run the itinerary engine and
// orchestrate store calls. No SQL lives here; services depend on
// repo.TripStore, not its implementation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/events"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/repo"
)

// maxTripDays bounds the generated day list.
const maxTripDays = 366

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// TripService implements business logic for Trip operations.
type TripService struct {
	store  repo.TripStore
	events events.Publisher
	locks  *TripLocks
}

// NewTripService constructs a TripService.
func NewTripService(store repo.TripStore, pub events.Publisher, locks *TripLocks) *TripService {
	return &TripService{store: store, events: pub, locks: locks}
}

// Create validates the trip, generates its empty day plans and persists it
// under the session's user.
// Returns domain.ErrValidation if input violates business rules.
func (s *TripService) Create(ctx context.Context, sess domain.Session, trip domain.Trip) (domain.Trip, error) {
	normalizeTrip(&trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}

	trip.ID = uuid.New()
	trip.OwnerID = sess.UserID
	trip.Days = itinerary.BuildDays(trip.StartDate, trip.EndDate)
	trip.Flights = []domain.FlightBooking{}
	trip.Expenses = []domain.Expense{}
	trip.Checklist = []domain.ChecklistItem{}

	created, err := s.store.Upsert(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	publish(ctx, s.events, events.TripSaved, created)
	return created, nil
}

// Get returns one of the session user's trips.
// Returns domain.ErrNotFound or domain.ErrForbidden.
func (s *TripService) Get(ctx context.Context, sess domain.Session, id uuid.UUID) (domain.Trip, error) {
	trip, err := loadOwned(ctx, s.store, sess, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// List returns one page of the session user's trips and the total count.
// Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context, sess domain.Session, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.store.LoadPaged(ctx, sess.UserID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update replaces the trip's header fields. A changed date range
// regenerates the day list: days still in range keep their entries, new
// days start empty and entries on days that fell out of range are dropped.
func (s *TripService) Update(ctx context.Context, sess domain.Session, in domain.Trip) (domain.Trip, error) {
	normalizeTrip(&in)
	if err := validateTrip(in); err != nil {
		return domain.Trip{}, err
	}

	updated, err := mutate(ctx, s.store, s.locks, sess, in.ID, func(t *domain.Trip) error {
		t.Name = in.Name
		t.Destination = in.Destination
		t.CoverImage = in.CoverImage
		t.HomeCurrency = in.HomeCurrency

		if !t.StartDate.Equal(in.StartDate) || !t.EndDate.Equal(in.EndDate) {
			days, dropped := itinerary.Regenerate(t.Days, in.StartDate, in.EndDate)
			if len(dropped) > 0 {
				slog.WarnContext(ctx, "itinerary entries dropped by date change",
					"trip_id", t.ID, "dropped", len(dropped))
			}
			t.Days = days
			t.StartDate = in.StartDate
			t.EndDate = in.EndDate
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	publish(ctx, s.events, events.TripSaved, updated)
	return updated, nil
}

// Delete removes one of the session user's trips.
// Returns domain.ErrNotFound if the user has no such trip.
func (s *TripService) Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id, sess.UserID); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	publish(ctx, s.events, events.TripDeleted, domain.Trip{ID: id, OwnerID: sess.UserID})
	return nil
}

func normalizeTrip(t *domain.Trip) {
	t.Name = strings.TrimSpace(t.Name)
	t.Destination = strings.TrimSpace(t.Destination)
	t.HomeCurrency = strings.ToUpper(strings.TrimSpace(t.HomeCurrency))
	if t.HomeCurrency == "" {
		t.HomeCurrency = "USD"
	}
}

// validateTrip enforces the rules shared by Create and Update.
//   - Name must be non-empty.
//   - EndDate must not be before StartDate.
//   - The trip may span at most maxTripDays days.
//   - HomeCurrency must be a three-letter code.
func validateTrip(t domain.Trip) error {
	if t.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrValidation)
	}
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	if days := int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1; days > maxTripDays {
		return fmt.Errorf("%w: a trip may span at most %d days", domain.ErrValidation, maxTripDays)
	}
	if !currencyCode.MatchString(t.HomeCurrency) {
		return fmt.Errorf("%w: home_currency must be a three-letter code", domain.ErrValidation)
	}
	return nil
}
