package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ChecklistRequest is the body of POST /trips/{tripId}/checklist.
type ChecklistRequest struct {
	Text string `json:"text"`
}

// ChecklistUpdateRequest is the body of PATCH /trips/{tripId}/checklist/{itemId}.
type ChecklistUpdateRequest struct {
	Done *bool `json:"done"`
}

// ListChecklist handles GET /trips/{tripId}/checklist.
func (s *Server) ListChecklist(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	items, err := s.checklist.List(r.Context(), session(r), tripID)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// AddChecklistItem handles POST /trips/{tripId}/checklist.
func (s *Server) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body ChecklistRequest
	if !decodeBody(w, r, &body) {
		return
	}
	item, err := s.checklist.Add(r.Context(), session(r), tripID, body.Text)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateChecklistItem handles PATCH /trips/{tripId}/checklist/{itemId}.
func (s *Server) UpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var itemID openapi_types.UUID
	if !pathParam(w, r, "itemId", &itemID) {
		return
	}
	var body ChecklistUpdateRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Done == nil {
		requestError(w, "done is required")
		return
	}
	item, err := s.checklist.SetDone(r.Context(), session(r), tripID, itemID, *body.Done)
	if err != nil {
		serviceError(w, r, err, "checklist item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteChecklistItem handles DELETE /trips/{tripId}/checklist/{itemId}.
func (s *Server) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var itemID openapi_types.UUID
	if !pathParam(w, r, "itemId", &itemID) {
		return
	}
	if err := s.checklist.Delete(r.Context(), session(r), tripID, itemID); err != nil {
		serviceError(w, r, err, "checklist item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
