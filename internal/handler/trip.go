package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
)

// TripRequest is the body of POST /trips and PUT /trips/{tripId}.
type TripRequest struct {
	Name         string              `json:"name"`
	Destination  string              `json:"destination,omitempty"`
	StartDate    *openapi_types.Date `json:"start_date"`
	EndDate      *openapi_types.Date `json:"end_date"`
	CoverImage   string              `json:"cover_image,omitempty"`
	HomeCurrency string              `json:"home_currency,omitempty"`
}

// Trip is the JSON representation of a trip.
type Trip struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Destination  string                 `json:"destination,omitempty"`
	StartDate    openapi_types.Date     `json:"start_date"`
	EndDate      openapi_types.Date     `json:"end_date"`
	CoverImage   string                 `json:"cover_image,omitempty"`
	HomeCurrency string                 `json:"home_currency"`
	Days         []domain.DayPlan       `json:"days"`
	Flights      []domain.FlightBooking `json:"flights"`
	Expenses     []domain.Expense       `json:"expenses"`
	Checklist    []domain.ChecklistItem `json:"checklist"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// TripSummary is a trip in list responses; nested collections are omitted.
type TripSummary struct {
	ID           uuid.UUID          `json:"id"`
	Name         string             `json:"name"`
	Destination  string             `json:"destination,omitempty"`
	StartDate    openapi_types.Date `json:"start_date"`
	EndDate      openapi_types.Date `json:"end_date"`
	CoverImage   string             `json:"cover_image,omitempty"`
	HomeCurrency string             `json:"home_currency"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []TripSummary `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}
	trip, err := requestToTrip(body)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	created, err := s.trips.Create(r.Context(), session(r), trip)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if !queryParam(w, r, "page", &page) || !queryParam(w, r, "limit", &limit) {
		return
	}
	params := domain.NewPaginationParams(page, limit)

	trips, total, err := s.trips.List(r.Context(), session(r), params)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}

	data := make([]TripSummary, len(trips))
	for i, t := range trips {
		data[i] = tripToSummary(t)
	}
	writeJSON(w, http.StatusOK, TripList{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.Get(r.Context(), session(r), id)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripId}.
// Changing the dates regenerates the day plans; entries on dates that fall
// out of range are dropped.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}
	trip, err := requestToTrip(body)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	trip.ID = id

	updated, err := s.trips.Update(r.Context(), session(r), trip)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), session(r), id); err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

type missingFieldError string

func (e missingFieldError) Error() string { return string(e) + " is required" }

// requestToTrip converts a TripRequest body into a domain.Trip.
func requestToTrip(body TripRequest) (domain.Trip, error) {
	if body.StartDate == nil {
		return domain.Trip{}, missingFieldError("start_date")
	}
	if body.EndDate == nil {
		return domain.Trip{}, missingFieldError("end_date")
	}
	return domain.Trip{
		Name:         body.Name,
		Destination:  body.Destination,
		StartDate:    body.StartDate.Time,
		EndDate:      body.EndDate.Time,
		CoverImage:   body.CoverImage,
		HomeCurrency: body.HomeCurrency,
	}, nil
}

func tripToResponse(t domain.Trip) Trip {
	return Trip{
		ID:           t.ID,
		Name:         t.Name,
		Destination:  t.Destination,
		StartDate:    openapi_types.Date{Time: t.StartDate},
		EndDate:      openapi_types.Date{Time: t.EndDate},
		CoverImage:   t.CoverImage,
		HomeCurrency: t.HomeCurrency,
		Days:         nonNil(t.Days),
		Flights:      nonNil(t.Flights),
		Expenses:     nonNil(t.Expenses),
		Checklist:    nonNil(t.Checklist),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func tripToSummary(t domain.Trip) TripSummary {
	return TripSummary{
		ID:           t.ID,
		Name:         t.Name,
		Destination:  t.Destination,
		StartDate:    openapi_types.Date{Time: t.StartDate},
		EndDate:      openapi_types.Date{Time: t.EndDate},
		CoverImage:   t.CoverImage,
		HomeCurrency: t.HomeCurrency,
	}
}

// nonNil makes empty collections encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
