package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkordes/trip-planner/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{"trip_name", "date", "time", "kind", "transport_mode", "name", "note"}

// ExportTrip handles GET /trips/{tripId}/export.
// It returns the trip's itinerary as a flat table: one row per entry, one
// row per empty day. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDParam(w, r)
	if !ok {
		return
	}
	var format string
	if !queryParam(w, r, "format", &format) {
		return
	}
	if format != "" && format != "csv" && format != "json" {
		requestError(w, "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context(), session(r), tripID)
	if err != nil {
		serviceError(w, r, err, "trip")
		return
	}

	if format != "csv" {
		writeJSON(w, http.StatusOK, nonNil(rows))
		return
	}
	body := encodeCSV(rows)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "trip-"+tripID.String()+".csv"))
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}

// encodeCSV writes the header row followed by one record per export row.
func encodeCSV(rows []domain.ExportRow) *bytes.Buffer {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write([]string{r.TripName, r.Date, r.Time, r.Kind, r.TransportMode, r.Name, r.Note})
	}
	cw.Flush()
	return &buf
}
