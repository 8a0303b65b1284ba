package bookings

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

// Booking is a stored reservation. Date is normalized to YYYY-MM-DD and Time
// to 24h HH:MM.
type Booking struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Contact             string     `json:"contact"`
	Date                string     `json:"date"`
	Time                string     `json:"time"`
	Guests              int        `json:"guests"`
	SpecialRequirements string     `json:"special_requirements"`
	Status              Status     `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	ModifiedAt          *time.Time `json:"modified_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
}

// Fields returns the guest-supplied portion of the booking.
func (b Booking) Fields() Fields {
	return Fields{
		Name:                b.Name,
		Contact:             b.Contact,
		Date:                b.Date,
		Time:                b.Time,
		Guests:              b.Guests,
		SpecialRequirements: b.SpecialRequirements,
	}
}

// Fields is the input to Ledger.Create.
type Fields struct {
	Name                string `json:"name" validate:"required"`
	Contact             string `json:"contact" validate:"required"`
	Date                string `json:"date" validate:"required"`
	Time                string `json:"time" validate:"required"`
	Guests              int    `json:"guests" validate:"min=1"`
	SpecialRequirements string `json:"special_requirements"`
}

func (f Fields) trimmed() Fields {
	f.Name = strings.TrimSpace(f.Name)
	f.Contact = strings.TrimSpace(f.Contact)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	f.SpecialRequirements = strings.TrimSpace(f.SpecialRequirements)
	return f
}

// Changes is a partial update for Ledger.Modify; nil fields are left alone.
type Changes struct {
	Name                *string `json:"name,omitempty"`
	Contact             *string `json:"contact,omitempty"`
	Date                *string `json:"date,omitempty"`
	Time                *string `json:"time,omitempty"`
	Guests              *int    `json:"guests,omitempty"`
	SpecialRequirements *string `json:"special_requirements,omitempty"`
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Name == nil && c.Contact == nil && c.Date == nil && c.Time == nil &&
		c.Guests == nil && c.SpecialRequirements == nil
}

func (c Changes) apply(f Fields) Fields {
	if c.Name != nil {
		f.Name = *c.Name
	}
	if c.Contact != nil {
		f.Contact = *c.Contact
	}
	if c.Date != nil {
		f.Date = *c.Date
	}
	if c.Time != nil {
		f.Time = *c.Time
	}
	if c.Guests != nil {
		f.Guests = *c.Guests
	}
	if c.SpecialRequirements != nil {
		f.SpecialRequirements = *c.SpecialRequirements
	}
	return f
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Status Status
	Date   string
}

// Statistics aggregates the whole ledger.
type Statistics struct {
	Total          int     `json:"total_bookings"`
	ConfirmedCount int     `json:"confirmed_bookings"`
	CancelledCount int     `json:"cancelled_bookings"`
	TotalGuests    int     `json:"total_guests"`
	TodayCount     int     `json:"today_bookings"`
	SuccessRate    float64 `json:"success_rate"`
}
