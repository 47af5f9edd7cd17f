package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/internal/domain"
)

// SaveBookingRequest is the body of POST /trips/{tripId}/flights.
type SaveBookingRequest struct {
	TravelerName        string                `json:"traveler_name,omitempty"`
	Outbound            *domain.FlightSegment `json:"outbound"`
	Inbound             *domain.FlightSegment `json:"inbound,omitempty"`
	SyncedFromCompanion bool                  `json:"synced_from_companion,omitempty"`
}

// SaveBookingResponse reports the saved booking and how many itinerary
// entries were synthesized from it.
type SaveBookingResponse struct {
	Booking    domain.FlightBooking `json:"booking"`
	ItemsAdded int                  `json:"items_added"`
}

// SearchFlights handles GET /flights/search.
// A failed lookup is still a 200; the body carries failed=true.
func (s *Server) SearchFlights(w http.ResponseWriter, r *http.Request) {
	var q domain.FlightQuery
	var date *openapi_types.Date
	if !queryParam(w, r, "origin", &q.Origin) ||
		!queryParam(w, r, "destination", &q.Destination) ||
		!queryParam(w, r, "flight_number", &q.FlightNumber) ||
		!queryParam(w, r, "date", &date) {
		return
	}
	if date != nil {
		q.Date = date.Format(domain.DateLayout)
	}

	result, err := s.flights.Search(r.Context(), q)
	if err != nil {
		serviceError(w, r, err, "flight")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListBookings handles GET /trips/{tripId}/flights.
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	bookings, err := s.flights.Bookings(r.Context(), session(r), tripID)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bookings))
}

// SaveBooking handles POST /trips/{tripId}/flights.
func (s *Server) SaveBooking(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body SaveBookingRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Outbound == nil {
		requestError(w, "outbound is required")
		return
	}

	booking, added, err := s.flights.SaveBooking(r.Context(), session(r), tripID, domain.FlightBooking{
		TravelerName:        body.TravelerName,
		Outbound:            *body.Outbound,
		Inbound:             body.Inbound,
		SyncedFromCompanion: body.SyncedFromCompanion,
	})
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, SaveBookingResponse{Booking: booking, ItemsAdded: added})
}

// DeleteBooking handles DELETE /trips/{tripId}/flights/{bookingId}.
// Itinerary entries synthesized from the booking stay in place.
func (s *Server) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var bookingID openapi_types.UUID
	if !pathParam(w, r, "bookingId", &bookingID) {
		return
	}
	if err := s.flights.DeleteBooking(r.Context(), session(r), tripID, bookingID); err != nil {
		serviceError(w, r, err, "booking")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
