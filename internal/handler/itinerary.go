package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/internal/domain"
)

// AddActivityRequest is the body of POST /trips/{tripId}/days/{date}/items.
type AddActivityRequest struct {
	Kind domain.ItemKind `json:"kind"`
}

// UpdateItemRequest is the body of PATCH /trips/{tripId}/days/{date}/items/{index}.
// Field is one of time, name, note, kind, transport_mode.
type UpdateItemRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// InsertTransportRequest is the body of POST /trips/{tripId}/days/{date}/transports.
type InsertTransportRequest struct {
	AfterIndex int                  `json:"after_index"`
	Mode       domain.TransportMode `json:"mode"`
}

// InsertTransportResponse returns the saved day and the new link. The
// link's note is the pending placeholder until its estimate arrives. Item
// is absent when no link fits at the requested position.
type InsertTransportResponse struct {
	Day  domain.DayPlan        `json:"day"`
	Item *domain.ItineraryItem `json:"item,omitempty"`
}

// ListDays handles GET /trips/{tripId}/days.
func (s *Server) ListDays(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	days, err := s.itinerary.Days(r.Context(), session(r), tripID)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(days))
}

// AddActivity handles POST /trips/{tripId}/days/{date}/items.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var body AddActivityRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Kind != domain.KindPlace && body.Kind != domain.KindFood {
		requestError(w, "kind must be Place or Food")
		return
	}

	day, err := s.itinerary.AddActivity(r.Context(), session(r), tripID, date, body.Kind)
	if err != nil {
		serviceError(w, r, err, "day")
		return
	}
	writeJSON(w, http.StatusCreated, day)
}

// UpdateItem handles PATCH /trips/{tripId}/days/{date}/items/{index}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	tripID, date, index, ok := itemParams(w, r)
	if !ok {
		return
	}
	var body UpdateItemRequest
	if !decodeBody(w, r, &body) {
		return
	}

	day, err := s.itinerary.UpdateField(r.Context(), session(r), tripID, date, index, body.Field, body.Value)
	if err != nil {
		serviceError(w, r, err, "day")
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// DeleteItem handles DELETE /trips/{tripId}/days/{date}/items/{index}.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	tripID, date, index, ok := itemParams(w, r)
	if !ok {
		return
	}
	day, err := s.itinerary.DeleteItem(r.Context(), session(r), tripID, date, index)
	if err != nil {
		serviceError(w, r, err, "day")
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// InsertTransport handles POST /trips/{tripId}/days/{date}/transports.
// It answers 202: the link is saved but its duration is still being estimated.
// When no link fits it answers 200 with the day unchanged.
func (s *Server) InsertTransport(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var body InsertTransportRequest
	if !decodeBody(w, r, &body) {
		return
	}

	day, item, err := s.itinerary.InsertTransport(r.Context(), session(r), tripID, date, body.AfterIndex, body.Mode)
	if err != nil {
		serviceError(w, r, err, "day")
		return
	}
	if item.ID == "" {
		writeJSON(w, http.StatusOK, InsertTransportResponse{Day: day})
		return
	}
	writeJSON(w, http.StatusAccepted, InsertTransportResponse{Day: day, Item: &item})
}

func itemParams(w http.ResponseWriter, r *http.Request) (tripID uuid.UUID, date string, index int, ok bool) {
	if tripID, ok = tripIDParam(w, r); !ok {
		return
	}
	if date, ok = dateParam(w, r); !ok {
		return
	}
	ok = pathParam(w, r, "index", &index)
	return
}
