package domain

// ExportRow is one itinerary entry flattened for CSV or JSON export.
// Days without entries contribute a single row with only Date set.
type ExportRow struct {
	TripName      string `json:"trip_name"`
	Date          string `json:"date"`
	Time          string `json:"time,omitempty"`
	Kind          string `json:"kind,omitempty"`
	TransportMode string `json:"transport_mode,omitempty"`
	Name          string `json:"name,omitempty"`
	Note          string `json:"note,omitempty"`
}
