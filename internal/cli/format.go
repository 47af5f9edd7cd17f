package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pkordes/trip-planner/internal/domain"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	promptColor  = color.New(color.FgCyan)
	dimColor     = color.New(color.FgHiBlack)
)

func printSection(w io.Writer, title string) {
	_, _ = headerColor.Fprintf(w, "\n▸ %s\n\n", title)
}

func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

// printTable prints rows under headers with padded columns.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], c)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}
	_, _ = headerColor.Fprintln(w, line(headers))
	for _, row := range rows {
		fmt.Fprintln(w, line(row))
	}
}

// segmentLine renders a segment on one line, e.g.
// "KE123  ICN 2025-06-01 10:00 → NRT 2025-06-01 13:30  Korean Air".
func segmentLine(s domain.FlightSegment) string {
	line := fmt.Sprintf("%-7s %s %s %s → %s %s %s",
		s.FlightNumber,
		s.DepartureAirport, s.DepartureTime.Date(), s.DepartureTime.Clock(),
		s.ArrivalAirport, s.ArrivalTime.Date(), s.ArrivalTime.Clock())
	if s.AirlineName != "" {
		line += "  " + dimColor.Sprint(s.AirlineName)
	}
	return line
}
