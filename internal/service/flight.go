package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/events"
	"github.com/pkordes/trip-planner/internal/itinerary"
	"github.com/pkordes/trip-planner/internal/metrics"
	"github.com/pkordes/trip-planner/internal/repo"
)

var airportCode = regexp.MustCompile(`^[A-Z]{3}$`)

// FlightLookup searches a flight schedule source.
type FlightLookup interface {
	Search(ctx context.Context, q domain.FlightQuery) ([]domain.FlightSegment, error)
}

// SearchResult is the outcome of a flight search. Failed is set when the
// lookup could not be completed; Segments is then empty and the caller
// shows a generic "search failed" message.
type SearchResult struct {
	Segments []domain.FlightSegment `json:"segments"`
	Failed   bool                   `json:"failed"`
}

// FlightService searches flights and attaches bookings to trips.
type FlightService struct {
	store  repo.TripStore
	lookup FlightLookup
	events events.Publisher
	locks  *TripLocks
}

// NewFlightService constructs a FlightService.
func NewFlightService(store repo.TripStore, lookup FlightLookup, pub events.Publisher, locks *TripLocks) *FlightService {
	return &FlightService{store: store, lookup: lookup, events: pub, locks: locks}
}

// Search looks up candidate segments. Lookup failures never surface as
// errors; only a malformed query does (domain.ErrValidation).
func (s *FlightService) Search(ctx context.Context, q domain.FlightQuery) (SearchResult, error) {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))
	q.FlightNumber = strings.ToUpper(strings.TrimSpace(q.FlightNumber))
	if !airportCode.MatchString(q.Origin) || !airportCode.MatchString(q.Destination) {
		return SearchResult{}, fmt.Errorf("%w: origin and destination must be three-letter airport codes", domain.ErrValidation)
	}
	if _, err := time.Parse(domain.DateLayout, q.Date); err != nil {
		return SearchResult{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}

	segments, err := s.lookup.Search(ctx, q)
	if err != nil {
		metrics.FlightLookups.WithLabelValues("failed").Inc()
		slog.WarnContext(ctx, "flight lookup failed",
			"origin", q.Origin, "destination", q.Destination, "date", q.Date, "error", err)
		return SearchResult{Segments: []domain.FlightSegment{}, Failed: true}, nil
	}
	metrics.FlightLookups.WithLabelValues("ok").Inc()
	if segments == nil {
		segments = []domain.FlightSegment{}
	}
	return SearchResult{Segments: segments}, nil
}

// Bookings returns the trip's flight bookings.
func (s *FlightService) Bookings(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.FlightBooking, error) {
	trip, err := loadOwned(ctx, s.store, sess, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.FlightService.Bookings: %w", err)
	}
	return trip.Flights, nil
}

// SaveBooking validates and attaches a booking to the trip, then merges the
// itinerary entries synthesized from its segments into the trip's days.
// Returns the stored booking and the number of entries added.
func (s *FlightService) SaveBooking(ctx context.Context, sess domain.Session, tripID uuid.UUID, b domain.FlightBooking) (domain.FlightBooking, int, error) {
	if err := validateSegment("outbound", b.Outbound); err != nil {
		return domain.FlightBooking{}, 0, err
	}
	if b.Inbound != nil {
		if err := validateSegment("inbound", *b.Inbound); err != nil {
			return domain.FlightBooking{}, 0, err
		}
	}

	b.ID = uuid.New()
	b.OwnerID = sess.UserID
	b.TravelerName = strings.TrimSpace(b.TravelerName)
	if b.TravelerName == "" {
		b.TravelerName = sess.Name()
	}
	b.CreatedAt = time.Now().UTC()

	var added int
	saved, err := mutate(ctx, s.store, s.locks, sess, tripID, func(t *domain.Trip) error {
		t.Flights = append(t.Flights, b)
		added = itinerary.SynthesizeBooking(t.Days, b)
		return nil
	})
	if err != nil {
		return domain.FlightBooking{}, 0, fmt.Errorf("service.FlightService.SaveBooking: %w", err)
	}
	metrics.SynthesizedItems.Add(float64(added))
	publish(ctx, s.events, events.TripSaved, saved)
	return b, added, nil
}

// DeleteBooking detaches a booking from the trip. Itinerary entries already
// synthesized from it are independent copies and stay.
func (s *FlightService) DeleteBooking(ctx context.Context, sess domain.Session, tripID, bookingID uuid.UUID) error {
	saved, err := mutate(ctx, s.store, s.locks, sess, tripID, func(t *domain.Trip) error {
		i := slices.IndexFunc(t.Flights, func(f domain.FlightBooking) bool { return f.ID == bookingID })
		if i < 0 {
			return domain.ErrNotFound
		}
		t.Flights = slices.Delete(t.Flights, i, i+1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("service.FlightService.DeleteBooking: %w", err)
	}
	publish(ctx, s.events, events.TripSaved, saved)
	return nil
}

func validateSegment(leg string, seg domain.FlightSegment) error {
	if strings.TrimSpace(seg.FlightNumber) == "" {
		return fmt.Errorf("%w: %s flight_number is required", domain.ErrValidation, leg)
	}
	if seg.DepartureAirport == "" || seg.ArrivalAirport == "" {
		return fmt.Errorf("%w: %s airports are required", domain.ErrValidation, leg)
	}
	if seg.DepartureTime.IsZero() || seg.ArrivalTime.IsZero() {
		return fmt.Errorf("%w: %s departure_time and arrival_time are required", domain.ErrValidation, leg)
	}
	return nil
}
