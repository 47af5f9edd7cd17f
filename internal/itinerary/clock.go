// Package itinerary is the itinerary editor core. It keeps each day's entries
// ordered by time of day, synthesizes transport links from flight bookings and
// turns travel-time estimates into display text.
//
// Functions in this package operate on in-memory domain values only. They
// never block and never touch the trip store; the service layer loads,
// mutates and persists.
package itinerary

import (
	"fmt"
	"strconv"
	"strings"
)

// minutesPerDay is the modulus of all clock arithmetic.
const minutesPerDay = 24 * 60

// ParseClock converts a "15:04" clock value to minutes after midnight.
func ParseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, false
	}
	return h*60 + m, true
}

// FormatClock renders minutes after midnight as "15:04", wrapping modulo 24h.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes advances a clock value by n minutes, wrapping past midnight.
// Unparseable input is returned unchanged.
func AddMinutes(clock string, n int) string {
	m, ok := ParseClock(clock)
	if !ok {
		return clock
	}
	return FormatClock(m + n)
}

// Midpoint returns the clock value halfway between a and b. When b is
// numerically earlier than a it is taken to be on the following day, so
// Midpoint("23:00", "01:00") is "00:00".
func Midpoint(a, b string) (string, bool) {
	am, ok := ParseClock(a)
	if !ok {
		return "", false
	}
	bm, ok := ParseClock(b)
	if !ok {
		return "", false
	}
	if bm < am {
		bm += minutesPerDay
	}
	return FormatClock((am + bm) / 2), true
}

// ClockDiff returns the minutes from a to b, treating a negative difference
// as crossing midnight.
func ClockDiff(a, b string) (int, bool) {
	am, ok := ParseClock(a)
	if !ok {
		return 0, false
	}
	bm, ok := ParseClock(b)
	if !ok {
		return 0, false
	}
	d := bm - am
	if d < 0 {
		d += minutesPerDay
	}
	return d, true
}

// FormatDuration renders minutes as "2h 5m", or "45m" under one hour.
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// sortKey orders items by minutes after midnight. Unparseable times sort last.
func sortKey(clock string) int {
	if m, ok := ParseClock(clock); ok {
		return m
	}
	return minutesPerDay
}
