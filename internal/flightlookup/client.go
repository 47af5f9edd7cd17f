// Package flightlookup queries an external flight schedule API for
// candidate flight segments.
package flightlookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkordes/trip-planner/internal/domain"
)

// ErrNotConfigured is returned by Search when no API URL is set.
var ErrNotConfigured = errors.New("flight lookup not configured")

// maxResults bounds the candidates returned to the wizard.
const maxResults = 20

// Client talks to an aviationstack-style schedules endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New returns a Client for baseURL. An empty baseURL yields a client whose
// searches fail with ErrNotConfigured.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type schedulesResponse struct {
	Data  []scheduleRecord `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type scheduleRecord struct {
	Airline struct {
		Name string `json:"name"`
		IATA string `json:"iata"`
	} `json:"airline"`
	Flight struct {
		IATA string `json:"iata"`
	} `json:"flight"`
	Departure endpoint `json:"departure"`
	Arrival   endpoint `json:"arrival"`
}

type endpoint struct {
	IATA      string `json:"iata"`
	Terminal  string `json:"terminal"`
	Scheduled string `json:"scheduled"`
}

// Search returns the flights from q.Origin to q.Destination on q.Date,
// optionally narrowed to one flight number. No matches is an empty slice
// and a nil error.
func (c *Client) Search(ctx context.Context, q domain.FlightQuery) ([]domain.FlightSegment, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("dep_iata", strings.ToUpper(q.Origin))
	params.Set("arr_iata", strings.ToUpper(q.Destination))
	params.Set("flight_date", q.Date)
	if q.FlightNumber != "" {
		params.Set("flight_iata", strings.ToUpper(strings.ReplaceAll(q.FlightNumber, " ", "")))
	}
	if c.apiKey != "" {
		params.Set("access_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/flights?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("flightlookup.Search: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flightlookup.Search: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("flightlookup.Search: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out schedulesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("flightlookup.Search: decode: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("flightlookup.Search: %s: %s", out.Error.Code, out.Error.Message)
	}

	segments := make([]domain.FlightSegment, 0, len(out.Data))
	for _, rec := range out.Data {
		seg, ok := toSegment(rec)
		if !ok {
			continue
		}
		segments = append(segments, seg)
		if len(segments) == maxResults {
			break
		}
	}
	return segments, nil
}

// toSegment maps one record, dropping records without usable times.
func toSegment(rec scheduleRecord) (domain.FlightSegment, bool) {
	dep, err := parseScheduled(rec.Departure.Scheduled)
	if err != nil {
		return domain.FlightSegment{}, false
	}
	arr, err := parseScheduled(rec.Arrival.Scheduled)
	if err != nil {
		return domain.FlightSegment{}, false
	}
	return domain.FlightSegment{
		AirlineCode:      rec.Airline.IATA,
		AirlineName:      rec.Airline.Name,
		FlightNumber:     rec.Flight.IATA,
		DepartureAirport: rec.Departure.IATA,
		ArrivalAirport:   rec.Arrival.IATA,
		DepartureTime:    dep,
		ArrivalTime:      arr,
		Terminal:         rec.Departure.Terminal,
	}, true
}

// parseScheduled keeps the airport-local wall clock of an ISO-8601
// timestamp and discards any offset.
func parseScheduled(s string) (domain.LocalDateTime, error) {
	if len(s) < len(domain.LocalDateTimeLayout) {
		return domain.LocalDateTime{}, fmt.Errorf("short timestamp %q", s)
	}
	return domain.ParseLocalDateTime(s[:len(domain.LocalDateTimeLayout)])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
