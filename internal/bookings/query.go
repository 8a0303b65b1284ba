package bookings

import (
	"context"
	"strings"
)

// Search returns bookings whose name, contact, date, time or special
// requirements contain query, ignoring case. A blank query matches nothing.
func (l *Ledger) Search(ctx context.Context, query string) []Booking {
	_, span := bookingsTracer.Start(ctx, "bookings.search")
	defer span.End()

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []Booking{}
	}
	return l.collect(func(b *Booking) bool {
		for _, field := range []string{b.Name, b.Contact, b.Date, b.Time, b.SpecialRequirements} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	})
}

// Stats aggregates the full ledger. Guests are counted for confirmed
// bookings only; today counts every status.
func (l *Ledger) Stats(ctx context.Context) Statistics {
	_, span := bookingsTracer.Start(ctx, "bookings.stats")
	defer span.End()

	today := l.locale.Today()

	l.mu.RLock()
	defer l.mu.RUnlock()

	var s Statistics
	for _, id := range l.order {
		b := l.bookings[id]
		s.Total++
		switch b.Status {
		case StatusConfirmed:
			s.ConfirmedCount++
			s.TotalGuests += b.Guests
		case StatusCancelled:
			s.CancelledCount++
		}
		if b.Date == today {
			s.TodayCount++
		}
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.ConfirmedCount) / float64(s.Total) * 100
	}
	return s
}
