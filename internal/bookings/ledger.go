package bookings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/hospitality-booking/internal/events"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

var bookingsTracer = otel.Tracer("hospitality.internal.bookings")

const defaultMaxGuests = 50

// Ledger is the authoritative in-memory store of bookings. It owns the
// identifier sequence and every state transition. Construct one per process
// (or per test) with NewLedger and share the handle.
type Ledger struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	order    []string

	ids       *IDGenerator
	locale    Locale
	validator *fieldValidator
	sink      events.Sink
	logger    *logging.Logger
	now       func() time.Time
	loc       *time.Location
	maxGuests int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLocation sets the business time zone.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithSink routes lifecycle events to sink.
func WithSink(sink events.Sink) Option {
	return func(l *Ledger) {
		if sink != nil {
			l.sink = sink
		}
	}
}

// WithLogger sets the ledger logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMaxGuests caps the party size; values <= 0 keep the default.
func WithMaxGuests(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.maxGuests = n
		}
	}
}

// WithIDGenerator replaces the identifier sequence.
func WithIDGenerator(g *IDGenerator) Option {
	return func(l *Ledger) {
		if g != nil {
			l.ids = g
		}
	}
}

// NewLedger returns an empty ledger.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		bookings:  make(map[string]*Booking),
		ids:       NewIDGenerator(0),
		sink:      events.Discard,
		logger:    logging.Default(),
		now:       time.Now,
		loc:       time.UTC,
		maxGuests: defaultMaxGuests,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.locale = NewLocale(l.loc, l.now)
	l.validator = newFieldValidator(l.locale, l.maxGuests)
	return l
}

// Locale exposes the date/time rules the ledger validates against.
func (l *Ledger) Locale() Locale {
	return l.locale
}

// Create validates fields and stores a new confirmed booking.
func (l *Ledger) Create(ctx context.Context, fields Fields) (Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()

	normalized, err := l.validator.normalize(fields)
	if err != nil {
		span.RecordError(err)
		return Booking{}, err
	}

	l.mu.Lock()
	id, err := l.ids.Next()
	if err != nil {
		l.mu.Unlock()
		span.RecordError(err)
		l.logger.Error("booking identifier space exhausted", "last_id", FormatID(l.ids.Last()))
		l.sink.Emit(ctx, events.Failure("create", err, events.SeverityCritical))
		return Booking{}, err
	}
	b := &Booking{
		ID:                  id,
		Name:                normalized.Name,
		Contact:             normalized.Contact,
		Date:                normalized.Date,
		Time:                normalized.Time,
		Guests:              normalized.Guests,
		SpecialRequirements: normalized.SpecialRequirements,
		Status:              StatusConfirmed,
		CreatedAt:           l.now().UTC(),
	}
	l.bookings[id] = b
	l.order = append(l.order, id)
	out := *b
	l.mu.Unlock()

	span.SetAttributes(attribute.String("hospitality.booking_id", id), attribute.Int("hospitality.guests", out.Guests))
	l.logger.Info("booking created", "booking_id", id, "date", out.Date, "time", out.Time, "guests", out.Guests)
	l.emit(ctx, events.TypeBookingCreated, "create", out)
	return out, nil
}

// Cancel moves a confirmed booking to cancelled. Cancelling twice fails with
// *AlreadyCancelledError and leaves the record untouched.
func (l *Ledger) Cancel(ctx context.Context, id string) (Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.cancel")
	defer span.End()
	id = NormalizeID(id)
	span.SetAttributes(attribute.String("hospitality.booking_id", id))

	l.mu.Lock()
	b, ok := l.bookings[id]
	if !ok {
		l.mu.Unlock()
		return Booking{}, traced(span, &NotFoundError{ID: id})
	}
	if b.Status == StatusCancelled {
		err := &AlreadyCancelledError{ID: id, CancelledAt: *b.CancelledAt}
		l.mu.Unlock()
		return Booking{}, traced(span, err)
	}
	now := l.now().UTC()
	b.Status = StatusCancelled
	b.CancelledAt = &now
	out := *b
	l.mu.Unlock()

	l.logger.Info("booking cancelled", "booking_id", id)
	l.emit(ctx, events.TypeBookingCancelled, "cancel", out)
	return out, nil
}

// Modify applies changes to a confirmed booking and stamps modified_at.
func (l *Ledger) Modify(ctx context.Context, id string, changes Changes) (Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.modify")
	defer span.End()
	id = NormalizeID(id)
	span.SetAttributes(attribute.String("hospitality.booking_id", id))

	l.mu.Lock()
	out, err := l.modifyLocked(id, changes)
	l.mu.Unlock()
	if err != nil {
		return Booking{}, traced(span, err)
	}
	if changes.Empty() {
		return out, nil
	}

	l.logger.Info("booking modified", "booking_id", id)
	l.emit(ctx, events.TypeBookingModified, "modify", out)
	return out, nil
}

func (l *Ledger) modifyLocked(id string, changes Changes) (Booking, error) {
	b, ok := l.bookings[id]
	if !ok {
		return Booking{}, &NotFoundError{ID: id}
	}
	if b.Status == StatusCancelled {
		return Booking{}, &AlreadyCancelledError{ID: id, CancelledAt: *b.CancelledAt}
	}
	if changes.Empty() {
		return *b, nil
	}

	normalized, err := l.validator.normalize(changes.apply(b.Fields()))
	if err != nil {
		return Booking{}, err
	}
	now := l.now().UTC()
	b.Name = normalized.Name
	b.Contact = normalized.Contact
	b.Date = normalized.Date
	b.Time = normalized.Time
	b.Guests = normalized.Guests
	b.SpecialRequirements = normalized.SpecialRequirements
	b.ModifiedAt = &now
	return *b, nil
}

// Get returns a copy of the booking with the given identifier.
func (l *Ledger) Get(ctx context.Context, id string) (Booking, error) {
	_, span := bookingsTracer.Start(ctx, "bookings.get")
	defer span.End()
	id = NormalizeID(id)

	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bookings[id]
	if !ok {
		return Booking{}, traced(span, &NotFoundError{ID: id})
	}
	return *b, nil
}

// List returns bookings matching filter in creation order.
func (l *Ledger) List(ctx context.Context, filter Filter) []Booking {
	_, span := bookingsTracer.Start(ctx, "bookings.list")
	defer span.End()

	date := strings.TrimSpace(filter.Date)
	if date != "" {
		if normalized, err := l.locale.ParseDate(date); err == nil {
			date = normalized
		}
	}

	return l.collect(func(b *Booking) bool {
		if filter.Status != "" && !strings.EqualFold(string(b.Status), string(filter.Status)) {
			return false
		}
		return date == "" || b.Date == date
	})
}

// Len returns the number of bookings ever created.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

func (l *Ledger) collect(match func(*Booking) bool) []Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Booking, 0, len(l.order))
	for _, id := range l.order {
		b := l.bookings[id]
		if match(b) {
			out = append(out, *b)
		}
	}
	return out
}

func (l *Ledger) emit(ctx context.Context, eventType events.Type, operation string, b Booking) {
	evt := events.New(eventType, operation)
	evt.BookingID = b.ID
	evt = evt.WithAttr("status", string(b.Status)).WithAttr("date", b.Date)
	l.sink.Emit(ctx, evt)
}

func traced(span trace.Span, err error) error {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		span.RecordError(err)
	}
	return err
}
