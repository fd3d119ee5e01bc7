// Package dateutils provides common date operations used throughout the
// application.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO   = "2006-01-02"
	DateLayoutUS    = "01/02/2006"
	DateLayoutFull  = "2006-01-02 15:04:05"
	DateLayoutMonth = "2006-01"
)

// CommonFormats is the list of formats tried when parsing dates from
// exported bank CSVs. ISO first, then US, then the long tail.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutUS,
	DateLayoutFull,
	time.RFC3339,
	"01-02-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace in a date string.
func CleanDateString(dateStr string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDate attempts to parse a date string using multiple common formats.
func ParseDate(dateStr string) (time.Time, error) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD).
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// MonthKey formats a date as YYYY-MM for monthly aggregation.
func MonthKey(date time.Time) string {
	return date.Format(DateLayoutMonth)
}

// StartOfMonth returns the first day of the month for a given date.
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month for a given date.
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// Truncate drops the time-of-day component.
func Truncate(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// DaysBetween returns the whole number of days from earlier to later,
// ignoring time-of-day.
func DaysBetween(earlier, later time.Time) int {
	return int(Truncate(later).Sub(Truncate(earlier)).Hours() / 24)
}
