package legacy

import (
	"errors"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

var ErrUnparseableDate = errors.New("unrecognised date")

// DefaultLocation is used for dates written without a zone.
var DefaultLocation = loadDefaultLocation()

func loadDefaultLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}

var layouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var naturalParser = &dps.Parser{}

// ParseDate accepts RFC 3339, a handful of ISO layouts interpreted in loc,
// and finally natural-language dates in Portuguese or English such as
// "15 de março de 2025 22:00".
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return parseDateAt(value, loc, time.Now())
}

func parseDateAt(value string, loc *time.Location, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrUnparseableDate
	}
	if loc == nil {
		loc = DefaultLocation
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	dt, err := naturalParser.Parse(&dps.Configuration{
		Languages:       []string{"pt", "en"},
		CurrentTime:     now.In(loc),
		DefaultTimezone: loc,
	}, value)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, ErrUnparseableDate
	}
	return dt.Time, nil
}
