// Package dateparse converts user-supplied month, day and hour strings into
// calendar values for Datadog usage metering queries.
//
// Values are naive calendar points: they are parsed as UTC and never converted
// between time zones.
package dateparse

import (
	"fmt"
	"strings"
	"time"
)

// layout pairs a Go time layout with the format name shown to users.
type layout struct {
	goLayout string
	display  string
}

var (
	monthLayout = layout{"2006-01", "YYYY-MM"}
	dayLayout   = layout{"2006-01-02", "YYYY-MM-DD"}
	hourLayout  = layout{"2006-01-02T15", "YYYY-MM-DDTHH"}
)

// monthLayouts are tried in order for month-level inputs.
var monthLayouts = []layout{monthLayout, dayLayout}

// InvalidDateFormatError is returned when a string matches none of the accepted formats.
type InvalidDateFormatError struct {
	Value   string
	Formats []string
}

func (e *InvalidDateFormatError) Error() string {
	return fmt.Sprintf("cannot parse %q as date, accepted formats: %s", e.Value, strings.Join(e.Formats, ", "))
}

// Kind reports the error classification used by the tool dispatcher.
func (e *InvalidDateFormatError) Kind() string {
	return "InvalidDateFormat"
}

// ParseMonth parses a month-level input, accepting YYYY-MM then YYYY-MM-DD.
func ParseMonth(s string) (time.Time, error) {
	return parse(s, monthLayouts)
}

// ParseDay parses a YYYY-MM-DD input.
func ParseDay(s string) (time.Time, error) {
	return parse(s, []layout{dayLayout})
}

// ParseHour parses a YYYY-MM-DDTHH input.
func ParseHour(s string) (time.Time, error) {
	return parse(s, []layout{hourLayout})
}

// EndOfDay returns the last hour (23:00) of the given YYYY-MM-DD day.
func EndOfDay(day string) (time.Time, error) {
	t, err := ParseHour(day + "T23")
	if err != nil {
		// Report the caller's string, not the synthesized one.
		return time.Time{}, &InvalidDateFormatError{Value: day, Formats: []string{dayLayout.display}}
	}
	return t, nil
}

// FormatMonth renders t with month precision, as expected by the cost and summary endpoints.
func FormatMonth(t time.Time) string {
	return t.Format(monthLayout.goLayout)
}

// FormatHour renders t with hour precision, as expected by the hourly usage endpoints.
func FormatHour(t time.Time) string {
	return t.Format(hourLayout.goLayout)
}

func parse(s string, layouts []layout) (time.Time, error) {
	for _, l := range layouts {
		if t, err := time.Parse(l.goLayout, s); err == nil {
			return t, nil
		}
	}

	formats := make([]string, len(layouts))
	for i, l := range layouts {
		formats[i] = l.display
	}
	return time.Time{}, &InvalidDateFormatError{Value: s, Formats: formats}
}
