package conversation

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/hospitality-booking/internal/bookings"
	"github.com/wolfman30/hospitality-booking/internal/observability/metrics"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

// ReplyKind classifies a chat reply for transports and metrics.
type ReplyKind string

const (
	ReplyBooked           ReplyKind = "booked"
	ReplyQuestion         ReplyKind = "question"
	ReplyInvalid          ReplyKind = "invalid"
	ReplyCancelled        ReplyKind = "cancelled"
	ReplyAlreadyCancelled ReplyKind = "already_cancelled"
	ReplyNotFound         ReplyKind = "not_found"
	ReplySearch           ReplyKind = "search"
	ReplyStats            ReplyKind = "stats"
	ReplySmalltalk        ReplyKind = "smalltalk"
	ReplyUnknown          ReplyKind = "unknown"
	ReplyRephrase         ReplyKind = "rephrase"
	ReplyError            ReplyKind = "error"
)

// Failed reports whether the reply means the requested action did not happen.
func (k ReplyKind) Failed() bool {
	switch k {
	case ReplyError, ReplyAlreadyCancelled, ReplyNotFound:
		return true
	}
	return false
}

// Reply is what the guest sees after one turn. Booking is set when the turn
// created or cancelled a reservation, or named one that was already cancelled.
type Reply struct {
	SessionID string            `json:"session_id"`
	Text      string            `json:"response"`
	Booking   *bookings.Booking `json:"booking,omitempty"`
	Kind      ReplyKind         `json:"kind"`
}

// Orchestrator drives the multi-turn booking dialogue. Turns within one
// session are serialized; different sessions run in parallel.
type Orchestrator struct {
	ledger    *bookings.Ledger
	extractor SlotExtractor
	store     SessionStore
	locks     *sessionLocks
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

func WithSessionStore(store SessionStore) OrchestratorOption {
	return func(o *Orchestrator) {
		if store != nil {
			o.store = store
		}
	}
}

func WithOrchestratorMetrics(m *metrics.BookingMetrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithOrchestratorClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func NewOrchestrator(ledger *bookings.Ledger, extractor SlotExtractor, logger *logging.Logger, opts ...OrchestratorOption) *Orchestrator {
	if ledger == nil {
		panic("conversation: ledger cannot be nil")
	}
	if extractor == nil {
		panic("conversation: extractor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	memory := NewMemorySessionStore(defaultSessionTTL)
	o := &Orchestrator{
		ledger:    ledger,
		extractor: extractor,
		store:     memory,
		locks:     newSessionLocks(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.store == SessionStore(memory) {
		// Session expiry follows the orchestrator clock.
		memory.now = o.now
	}
	return o
}

// Handle processes one utterance. It never fails; every error becomes a
// reply the guest can act on. A blank sessionID starts a new session.
func (o *Orchestrator) Handle(ctx context.Context, sessionID, utterance string) Reply {
	ctx, span := conversationTracer.Start(ctx, "conversation.handle")
	defer span.End()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("hospitality.session_id", sessionID))

	unlock := o.locks.Lock(sessionID)
	defer unlock()

	state := o.load(ctx, sessionID)
	state.TurnCount++
	state.LastActivity = o.now().UTC()

	reply := o.safeRespond(ctx, &state, utterance)
	reply.SessionID = sessionID

	if err := o.store.Save(ctx, state); err != nil {
		o.logger.Warn("failed to persist session", "session_id", sessionID, "error", err)
	}
	o.metrics.ObserveTurn(string(reply.Kind))
	span.SetAttributes(attribute.String("hospitality.reply_kind", string(reply.Kind)))
	return reply
}

// State returns the stored state for sessionID.
func (o *Orchestrator) State(ctx context.Context, sessionID string) (State, bool, error) {
	return o.store.Load(ctx, strings.TrimSpace(sessionID))
}

// Reset discards the session, pending slots included.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	unlock := o.locks.Lock(sessionID)
	defer unlock()
	return o.store.Delete(ctx, sessionID)
}

func (o *Orchestrator) load(ctx context.Context, sessionID string) State {
	state, ok, err := o.store.Load(ctx, sessionID)
	if err != nil {
		o.logger.Warn("failed to load session, starting fresh", "session_id", sessionID, "error", err)
	}
	if err != nil || !ok {
		now := o.now().UTC()
		return State{SessionID: sessionID, CreatedAt: now, LastActivity: now}
	}
	return state
}

// safeRespond converts a panic during the turn into an apology reply.
func (o *Orchestrator) safeRespond(ctx context.Context, state *State, utterance string) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("chat turn panicked",
				"session_id", state.SessionID,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			reply = Reply{Text: msgApology, Kind: ReplyError}
		}
	}()
	return o.respond(ctx, state, utterance)
}

func (o *Orchestrator) respond(ctx context.Context, state *State, utterance string) Reply {
	if strings.TrimSpace(utterance) == "" {
		if missing := state.PendingSlots.Missing(); !state.PendingSlots.Empty() && len(missing) > 0 {
			return Reply{Text: questionFor(missing[0]), Kind: ReplyQuestion}
		}
		return Reply{Text: msgGreeting, Kind: ReplySmalltalk}
	}

	result, err := o.extractor.Extract(ctx, utterance, state.PendingSlots)
	if err != nil {
		if errors.Is(err, ErrExtractionTimeout) {
			return Reply{Text: msgRephrase, Kind: ReplyRephrase}
		}
		o.logger.Error("extraction failed", "session_id", state.SessionID, "error", err)
		return Reply{Text: msgApology, Kind: ReplyError}
	}

	switch result.Kind {
	case ResultComplete:
		return o.book(ctx, state, result.Fields)
	case ResultPartial:
		state.PendingSlots = state.PendingSlots.Merge(result.Fields)
		return Reply{Text: result.Question, Kind: ReplyQuestion}
	case ResultIntent:
		return o.intent(ctx, result)
	}
	o.logger.Error("unexpected extraction result", "session_id", state.SessionID, "kind", string(result.Kind))
	return Reply{Text: msgApology, Kind: ReplyError}
}

func (o *Orchestrator) book(ctx context.Context, state *State, slots Slots) Reply {
	b, err := o.ledger.Create(ctx, slots.Fields())
	if err != nil {
		var verr *bookings.ValidationError
		switch {
		case errors.As(err, &verr):
			return Reply{Text: renderValidation(verr), Kind: ReplyInvalid}
		case errors.Is(err, bookings.ErrExhausted):
			o.logger.Error("booking rejected, identifier space exhausted", "session_id", state.SessionID)
			return Reply{Text: msgNoCapacity, Kind: ReplyError}
		default:
			o.logger.Error("booking failed", "session_id", state.SessionID, "error", err)
			return Reply{Text: msgApology, Kind: ReplyError}
		}
	}

	state.PendingSlots = Slots{}
	o.logger.Info("chat booking confirmed", "session_id", state.SessionID, "booking_id", b.ID)
	return Reply{Text: renderConfirmation(b), Booking: &b, Kind: ReplyBooked}
}

func (o *Orchestrator) intent(ctx context.Context, result Result) Reply {
	switch result.Intent {
	case IntentCancel:
		return o.cancel(ctx, result.Payload.BookingID)
	case IntentSearch:
		query := result.Payload.Query
		if query == "" {
			return Reply{Text: msgAskSearch, Kind: ReplyQuestion}
		}
		return Reply{Text: renderSearch(query, o.ledger.Search(ctx, query)), Kind: ReplySearch}
	case IntentStats:
		return Reply{Text: renderStats(o.ledger.Stats(ctx)), Kind: ReplyStats}
	case IntentSmalltalk:
		text := result.Payload.Reply
		if text == "" {
			text = msgGreeting
		}
		return Reply{Text: text, Kind: ReplySmalltalk}
	default:
		return Reply{Text: msgUnknown, Kind: ReplyUnknown}
	}
}

func (o *Orchestrator) cancel(ctx context.Context, id string) Reply {
	if id == "" {
		return Reply{Text: msgAskCancelID, Kind: ReplyQuestion}
	}

	b, err := o.ledger.Cancel(ctx, id)
	if err != nil {
		var already *bookings.AlreadyCancelledError
		switch {
		case errors.As(err, &already):
			reply := Reply{Text: "Booking " + already.ID + " was already cancelled.", Kind: ReplyAlreadyCancelled}
			if existing, getErr := o.ledger.Get(ctx, already.ID); getErr == nil {
				reply.Booking = &existing
			}
			return reply
		case errors.Is(err, bookings.ErrNotFound):
			return Reply{Text: "I couldn't find a booking with ID " + id + ". Please check the number and try again.", Kind: ReplyNotFound}
		default:
			o.logger.Error("chat cancel failed", "booking_id", id, "error", err)
			return Reply{Text: msgApology, Kind: ReplyError}
		}
	}
	return Reply{Text: renderCancelled(b), Booking: &b, Kind: ReplyCancelled}
}
