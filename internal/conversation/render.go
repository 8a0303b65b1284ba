package conversation

import (
	"fmt"
	"strings"

	"github.com/wolfman30/hospitality-booking/internal/bookings"
)

const (
	msgGreeting     = "Hello! I can book a table, look up or cancel a reservation, or share booking statistics. How can I help?"
	msgUnknown      = "I'm not sure I understood. I can make a reservation, cancel one (just give me the BK number), search bookings or show statistics."
	msgRephrase     = "Sorry, that took me too long to understand. Could you rephrase your request?"
	msgApology      = "Sorry, something went wrong on our side. Please try again in a moment."
	msgNoCapacity   = "Sorry, we can't take new reservations right now. Please contact us directly."
	msgAskCancelID  = "Which reservation should I cancel? Please give me the booking ID, for example BK0001."
	msgAskSearch    = "What should I search for? A name, phone number, email or date works."
	maxSearchListed = 10
)

var slotQuestions = map[string]string{
	SlotName:    "May I have the name for the reservation?",
	SlotContact: "What phone number or email should we use to reach you?",
	SlotDate:    "What date would you like to book?",
	SlotTime:    "What time would you like?",
	SlotGuests:  "How many guests will be joining?",
}

func questionFor(slot string) string {
	if q, ok := slotQuestions[slot]; ok {
		return q
	}
	return "Could you tell me a bit more about your reservation?"
}

func renderConfirmation(b bookings.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your reservation is confirmed! Booking ID: %s. ", b.ID)
	fmt.Fprintf(&sb, "%s, party of %d on %s at %s.", b.Name, b.Guests, b.Date, b.Time)
	if b.SpecialRequirements != "" {
		fmt.Fprintf(&sb, " Noted: %s.", b.SpecialRequirements)
	}
	sb.WriteString(" We'll contact you at " + b.Contact + " if anything changes.")
	return sb.String()
}

func renderValidation(err *bookings.ValidationError) string {
	parts := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", strings.ReplaceAll(f.Field, "_", " "), f.Message))
	}
	return "I couldn't complete the booking because some details need another look: " +
		strings.Join(parts, ", ") + ". Could you correct them?"
}

func renderCancelled(b bookings.Booking) string {
	return fmt.Sprintf("Booking %s for %s on %s at %s has been cancelled.", b.ID, b.Name, b.Date, b.Time)
}

func renderSearch(query string, found []bookings.Booking) string {
	if len(found) == 0 {
		return fmt.Sprintf("I couldn't find any bookings matching %q.", query)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d booking(s) matching %q:", len(found), query)
	for i, b := range found {
		if i == maxSearchListed {
			fmt.Fprintf(&sb, "\n...and %d more.", len(found)-maxSearchListed)
			break
		}
		fmt.Fprintf(&sb, "\n- %s: %s, %d guests on %s at %s (%s)", b.ID, b.Name, b.Guests, b.Date, b.Time, b.Status)
	}
	return sb.String()
}

func renderStats(s bookings.Statistics) string {
	return fmt.Sprintf(
		"Booking statistics: %d total, %d confirmed, %d cancelled, %d guests expected, %d for today. Success rate: %.1f%%.",
		s.Total, s.ConfirmedCount, s.CancelledCount, s.TotalGuests, s.TodayCount, s.SuccessRate,
	)
}
