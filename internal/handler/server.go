// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. They are split into domain-specific
// files (trip.go, itinerary.go, flight.go, ...) but share the same Server
// struct and the route table in Routes.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/genai"
	"github.com/pkordes/trip-planner/internal/middleware"
	"github.com/pkordes/trip-planner/internal/service"
	"github.com/pkordes/trip-planner/spec"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interfaces here, in the consumer package, lets handler tests
// inject mocks without touching the database or the service layer.
type TripServicer interface {
	Create(ctx context.Context, sess domain.Session, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, sess domain.Session, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, sess domain.Session, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, sess domain.Session, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, sess domain.Session, id uuid.UUID) error
}

// ItineraryServicer defines the day-plan editing operations.
type ItineraryServicer interface {
	Days(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.DayPlan, error)
	AddActivity(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, kind domain.ItemKind) (domain.DayPlan, error)
	UpdateField(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, index int, field, value string) (domain.DayPlan, error)
	DeleteItem(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, index int) (domain.DayPlan, error)
	InsertTransport(ctx context.Context, sess domain.Session, tripID uuid.UUID, date string, afterIndex int, mode domain.TransportMode) (domain.DayPlan, domain.ItineraryItem, error)
}

// FlightServicer defines flight search and booking operations.
type FlightServicer interface {
	Search(ctx context.Context, q domain.FlightQuery) (service.SearchResult, error)
	Bookings(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.FlightBooking, error)
	SaveBooking(ctx context.Context, sess domain.Session, tripID uuid.UUID, b domain.FlightBooking) (domain.FlightBooking, int, error)
	DeleteBooking(ctx context.Context, sess domain.Session, tripID, bookingID uuid.UUID) error
}

// ExpenseServicer defines expense tracking operations.
type ExpenseServicer interface {
	List(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.Expense, error)
	Add(ctx context.Context, sess domain.Session, tripID uuid.UUID, e domain.Expense) (domain.Expense, error)
	Delete(ctx context.Context, sess domain.Session, tripID, expenseID uuid.UUID) error
	Summary(ctx context.Context, sess domain.Session, tripID uuid.UUID) (domain.ExpenseSummary, error)
}

// ChecklistServicer defines checklist operations.
type ChecklistServicer interface {
	List(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.ChecklistItem, error)
	Add(ctx context.Context, sess domain.Session, tripID uuid.UUID, text string) (domain.ChecklistItem, error)
	SetDone(ctx context.Context, sess domain.Session, tripID, itemID uuid.UUID, done bool) (domain.ChecklistItem, error)
	Delete(ctx context.Context, sess domain.Session, tripID, itemID uuid.UUID) error
}

// AssistantServicer answers questions about a trip.
type AssistantServicer interface {
	Ask(ctx context.Context, sess domain.Session, tripID uuid.UUID, messages []genai.Message) (genai.Message, error)
}

// ExportServicer flattens a trip for download.
type ExportServicer interface {
	Export(ctx context.Context, sess domain.Session, tripID uuid.UUID) ([]domain.ExportRow, error)
}

// Services bundles the dependencies of Server. A nil field leaves the
// matching routes unregistered.
type Services struct {
	Trips     TripServicer
	Itinerary ItineraryServicer
	Flights   FlightServicer
	Expenses  ExpenseServicer
	Checklist ChecklistServicer
	Assistant AssistantServicer
	Export    ExportServicer
}

// Server holds the services behind the HTTP API.
type Server struct {
	trips     TripServicer
	itinerary ItineraryServicer
	flights   FlightServicer
	expenses  ExpenseServicer
	checklist ChecklistServicer
	assistant AssistantServicer
	export    ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(s Services) *Server {
	return &Server{
		trips:     s.Trips,
		itinerary: s.Itinerary,
		flights:   s.Flights,
		expenses:  s.Expenses,
		checklist: s.Checklist,
		assistant: s.Assistant,
		export:    s.Export,
	}
}

// Routes returns the API router. Global middleware (request ID, logging,
// CORS, recovery) is applied by the caller; Routes adds the session
// requirement to everything under /trips and /flights.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)

		if s.flights != nil {
			r.Get("/flights/search", s.SearchFlights)
		}
		r.Route("/trips", func(r chi.Router) {
			if s.trips != nil {
				r.Post("/", s.CreateTrip)
				r.Get("/", s.ListTrips)
				r.Get("/{tripId}", s.GetTrip)
				r.Put("/{tripId}", s.UpdateTrip)
				r.Delete("/{tripId}", s.DeleteTrip)
			}
			if s.itinerary != nil {
				r.Get("/{tripId}/days", s.ListDays)
				r.Post("/{tripId}/days/{date}/items", s.AddActivity)
				r.Patch("/{tripId}/days/{date}/items/{index}", s.UpdateItem)
				r.Delete("/{tripId}/days/{date}/items/{index}", s.DeleteItem)
				r.Post("/{tripId}/days/{date}/transports", s.InsertTransport)
			}
			if s.flights != nil {
				r.Get("/{tripId}/flights", s.ListBookings)
				r.Post("/{tripId}/flights", s.SaveBooking)
				r.Delete("/{tripId}/flights/{bookingId}", s.DeleteBooking)
			}
			if s.expenses != nil {
				r.Get("/{tripId}/expenses", s.ListExpenses)
				r.Post("/{tripId}/expenses", s.AddExpense)
				r.Get("/{tripId}/expenses/summary", s.ExpenseSummary)
				r.Delete("/{tripId}/expenses/{expenseId}", s.DeleteExpense)
			}
			if s.checklist != nil {
				r.Get("/{tripId}/checklist", s.ListChecklist)
				r.Post("/{tripId}/checklist", s.AddChecklistItem)
				r.Patch("/{tripId}/checklist/{itemId}", s.UpdateChecklistItem)
				r.Delete("/{tripId}/checklist/{itemId}", s.DeleteChecklistItem)
			}
			if s.assistant != nil {
				r.Post("/{tripId}/assistant", s.AskAssistant)
			}
			if s.export != nil {
				r.Get("/{tripId}/export", s.ExportTrip)
			}
		})
	})
	return r
}

// session returns the caller's session. RequireSession guarantees it exists
// on every route that calls this.
func session(r *http.Request) domain.Session {
	sess, _ := middleware.SessionFrom(r.Context())
	return sess
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
