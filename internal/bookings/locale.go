package bookings

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	errUnparseableDate = errors.New("bookings: unrecognised date")
	errUnparseableTime = errors.New("bookings: unrecognised time")
)

// Accepted date layouts, most specific first. Slash dates are read US style.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

var timeLayouts = []string{
	TimeLayout,
	"15:04:05",
	"15.04",
	"3:04pm",
	"3.04pm",
	"3pm",
}

var meridiemRE = regexp.MustCompile(`\s*([ap])\.?\s*m\.?$`)

// Locale resolves free-form dates and times using the business time zone.
type Locale struct {
	loc *time.Location
	now func() time.Time
}

// NewLocale returns a Locale for loc; nil loc means UTC and nil now means
// time.Now.
func NewLocale(loc *time.Location, now func() time.Time) Locale {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return Locale{loc: loc, now: now}
}

// Today returns the current calendar date in the business time zone.
func (l Locale) Today() string {
	return l.current().Format(DateLayout)
}

func (l Locale) current() time.Time {
	now := l.now
	if now == nil {
		now = time.Now
	}
	loc := l.loc
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// ParseDate normalizes s to YYYY-MM-DD.
func (l Locale) ParseDate(s string) (string, error) {
	value := strings.TrimSpace(s)
	switch strings.ToLower(value) {
	case "today", "tonight":
		return l.Today(), nil
	case "tomorrow":
		return l.current().AddDate(0, 0, 1).Format(DateLayout), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, l.loc); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", errUnparseableDate
}

// ParseTime normalizes s to 24h HH:MM.
func (l Locale) ParseTime(s string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	switch value {
	case "noon", "midday":
		return "12:00", nil
	case "midnight":
		return "00:00", nil
	}
	value = meridiemRE.ReplaceAllString(value, "${1}m")
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", errUnparseableTime
}
