package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/internal/genai"
)

// AssistantRequest is the body of POST /trips/{tripId}/assistant: the
// conversation so far, ending with the user's question.
type AssistantRequest struct {
	Messages []genai.Message `json:"messages"`
}

// AskAssistant handles POST /trips/{tripId}/assistant.
func (s *Server) AskAssistant(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var body AssistantRequest
	if !decodeBody(w, r, &body) {
		return
	}
	reply, err := s.assistant.Ask(r.Context(), session(r), tripID, body.Messages)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
