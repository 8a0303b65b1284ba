package conversation

import "github.com/wolfman30/hospitality-booking/internal/bookings"

// Slot names, in the order the guest is asked for them.
const (
	SlotName                = "name"
	SlotContact             = "contact"
	SlotDate                = "date"
	SlotTime                = "time"
	SlotGuests              = "guests"
	SlotSpecialRequirements = "special_requirements"
)

var requiredSlots = []string{SlotName, SlotContact, SlotDate, SlotTime, SlotGuests}

// Slots holds booking fields gathered so far. Empty strings and a nil Guests
// mean "not yet known".
type Slots struct {
	Name                string `json:"name,omitempty"`
	Contact             string `json:"contact,omitempty"`
	Date                string `json:"date,omitempty"`
	Time                string `json:"time,omitempty"`
	Guests              *int   `json:"guests,omitempty"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
}

// Merge returns s overlaid with every known value in update.
func (s Slots) Merge(update Slots) Slots {
	if update.Name != "" {
		s.Name = update.Name
	}
	if update.Contact != "" {
		s.Contact = update.Contact
	}
	if update.Date != "" {
		s.Date = update.Date
	}
	if update.Time != "" {
		s.Time = update.Time
	}
	if update.Guests != nil {
		g := *update.Guests
		s.Guests = &g
	}
	if update.SpecialRequirements != "" {
		s.SpecialRequirements = update.SpecialRequirements
	}
	return s
}

// Missing lists the required slots that are still unknown.
func (s Slots) Missing() []string {
	var out []string
	for _, name := range requiredSlots {
		if !s.has(name) {
			out = append(out, name)
		}
	}
	return out
}

// Empty reports whether nothing has been gathered.
func (s Slots) Empty() bool {
	return s.Name == "" && s.Contact == "" && s.Date == "" && s.Time == "" &&
		s.Guests == nil && s.SpecialRequirements == ""
}

// Fields converts complete slots into ledger input.
func (s Slots) Fields() bookings.Fields {
	f := bookings.Fields{
		Name:                s.Name,
		Contact:             s.Contact,
		Date:                s.Date,
		Time:                s.Time,
		SpecialRequirements: s.SpecialRequirements,
	}
	if s.Guests != nil {
		f.Guests = *s.Guests
	}
	return f
}

func (s Slots) has(name string) bool {
	switch name {
	case SlotName:
		return s.Name != ""
	case SlotContact:
		return s.Contact != ""
	case SlotDate:
		return s.Date != ""
	case SlotTime:
		return s.Time != ""
	case SlotGuests:
		return s.Guests != nil
	case SlotSpecialRequirements:
		return s.SpecialRequirements != ""
	}
	return false
}

func intPtr(v int) *int { return &v }
