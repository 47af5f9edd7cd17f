package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/events"
	"github.com/pkordes/trip-planner/internal/genai"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
)

// mockStore is a hand-written test double for repo.TripStore.
// Each method is a function field; set only the ones a test needs.
type mockStore struct {
	load      func(ctx context.Context, owner string) ([]domain.Trip, error)
	loadPaged func(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Trip, int64, error)
	loadByID  func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	upsert    func(ctx context.Context, t domain.Trip) (domain.Trip, error)
	delete    func(ctx context.Context, id uuid.UUID, owner string) error
}

func (m *mockStore) Load(ctx context.Context, owner string) ([]domain.Trip, error) {
	return m.load(ctx, owner)
}
func (m *mockStore) LoadPaged(ctx context.Context, owner string, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.loadPaged(ctx, owner, p)
}
func (m *mockStore) LoadByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.loadByID(ctx, id)
}
func (m *mockStore) Upsert(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.upsert(ctx, t)
}
func (m *mockStore) Delete(ctx context.Context, id uuid.UUID, owner string) error {
	return m.delete(ctx, id, owner)
}

// compile-time check: mockStore must satisfy repo.TripStore.
var _ repo.TripStore = (*mockStore)(nil)

// memStore returns a mockStore holding a single trip in memory. Reads and
// writes copy the nested collections so callers never share slices with
// the stored value. upserts counts successful writes.
type memStore struct {
	*mockStore
	mu      sync.Mutex
	trip    domain.Trip
	upserts int
}

func newMemStore(trip domain.Trip) *memStore {
	s := &memStore{trip: cloneTrip(trip)}
	s.mockStore = &mockStore{
		loadByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if id != s.trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			return cloneTrip(s.trip), nil
		},
		upsert: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if t.ID == s.trip.ID && t.OwnerID != s.trip.OwnerID {
				return domain.Trip{}, domain.ErrNotFound
			}
			t.UpdatedAt = time.Now()
			s.trip = cloneTrip(t)
			s.upserts++
			return t, nil
		},
	}
	return s
}

func (s *memStore) current() domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTrip(s.trip)
}

func cloneTrip(t domain.Trip) domain.Trip {
	days := make([]domain.DayPlan, len(t.Days))
	for i, d := range t.Days {
		days[i] = domain.DayPlan{Date: d.Date, Items: append([]domain.ItineraryItem{}, d.Items...)}
	}
	t.Days = days
	t.Flights = append([]domain.FlightBooking{}, t.Flights...)
	t.Expenses = append([]domain.Expense{}, t.Expenses...)
	t.Checklist = append([]domain.ChecklistItem{}, t.Checklist...)
	return t
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.TripEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev events.TripEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var _ events.Publisher = (*fakePublisher)(nil)

// estimatorFunc adapts a function to itinerary.Estimator.
type estimatorFunc func(ctx context.Context, from, to string, mode domain.TransportMode, locale string) (string, error)

func (f estimatorFunc) Estimate(ctx context.Context, from, to string, mode domain.TransportMode, locale string) (string, error) {
	return f(ctx, from, to, mode, locale)
}

var _ itinerary.Estimator = estimatorFunc(nil)

// lookupFunc adapts a function to service.FlightLookup.
type lookupFunc func(ctx context.Context, q domain.FlightQuery) ([]domain.FlightSegment, error)

func (f lookupFunc) Search(ctx context.Context, q domain.FlightQuery) ([]domain.FlightSegment, error) {
	return f(ctx, q)
}

var _ service.FlightLookup = lookupFunc(nil)

// chatFunc adapts a function to service.Chatter.
type chatFunc func(ctx context.Context, tripContext any, messages []genai.Message) (string, error)

func (f chatFunc) Chat(ctx context.Context, tripContext any, messages []genai.Message) (string, error) {
	return f(ctx, tripContext, messages)
}

var _ service.Chatter = chatFunc(nil)

// ---- fixtures --------------------------------------------------------------

var owner = domain.Session{UserID: "user-1", DisplayName: "Ada", Locale: "en"}

func date(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

// storedTrip returns a persisted three-day trip owned by owner.
func storedTrip() domain.Trip {
	start, end := date("2025-06-01"), date("2025-06-03")
	return domain.Trip{
		ID:           uuid.New(),
		OwnerID:      owner.UserID,
		Name:         "Seoul",
		StartDate:    start,
		EndDate:      end,
		HomeCurrency: "USD",
		Days:         itinerary.BuildDays(start, end),
	}
}
