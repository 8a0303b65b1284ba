package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/hospitality-booking/internal/bookings"
	"github.com/wolfman30/hospitality-booking/internal/events"
	"github.com/wolfman30/hospitality-booking/internal/observability/metrics"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

var conversationTracer = otel.Tracer("hospitality.internal.conversation")

const (
	defaultExtractionTimeout = 10 * time.Second
	defaultMaxTokens         = 512
	defaultMaxGuests         = 50
)

// SlotExtractor turns one utterance plus the pending slots into a Result.
type SlotExtractor interface {
	Extract(ctx context.Context, utterance string, pending Slots) (Result, error)
}

// Extractor asks an LLM for a structured reading of each utterance and
// validates every value it proposes before trusting it.
type Extractor struct {
	llm       LLMClient
	locale    bookings.Locale
	model     string
	timeout   time.Duration
	maxGuests int
	sink      events.Sink
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractionTimeout bounds each model call; values <= 0 keep 10s.
func WithExtractionTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithModel sets the model id sent on every request.
func WithModel(model string) ExtractorOption {
	return func(e *Extractor) {
		e.model = strings.TrimSpace(model)
	}
}

// WithPartySizeLimit caps the guests value accepted from the model.
func WithPartySizeLimit(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxGuests = n
		}
	}
}

func WithExtractorSink(sink events.Sink) ExtractorOption {
	return func(e *Extractor) {
		if sink != nil {
			e.sink = sink
		}
	}
}

func WithExtractorMetrics(m *metrics.BookingMetrics) ExtractorOption {
	return func(e *Extractor) {
		e.metrics = m
	}
}

func WithExtractorLogger(logger *logging.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor builds an extractor that validates dates and times with locale.
func NewExtractor(llm LLMClient, locale bookings.Locale, opts ...ExtractorOption) *Extractor {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	e := &Extractor{
		llm:       llm,
		locale:    locale,
		timeout:   defaultExtractionTimeout,
		maxGuests: defaultMaxGuests,
		sink:      events.Discard,
		logger:    logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// modelReply is the JSON object the model is instructed to return.
type modelReply struct {
	Intent    string      `json:"intent"`
	Fields    modelFields `json:"fields"`
	Ambiguous []string    `json:"ambiguous"`
	BookingID string      `json:"booking_id"`
	Query     string      `json:"query"`
	Reply     string      `json:"reply"`
	Question  string      `json:"question"`
}

type modelFields struct {
	Name                string `json:"name"`
	Contact             string `json:"contact"`
	Date                string `json:"date"`
	Time                string `json:"time"`
	Guests              any    `json:"guests"`
	SpecialRequirements string `json:"special_requirements"`
}

// Extract runs one bounded model call and classifies the answer.
func (e *Extractor) Extract(ctx context.Context, utterance string, pending Slots) (Result, error) {
	ctx, span := conversationTracer.Start(ctx, "conversation.extract")
	defer span.End()

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.llm.Complete(callCtx, LLMRequest{
		Model:       e.model,
		System:      []string{buildSystemPrompt(e.locale.Today(), pending)},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: utterance}},
		MaxTokens:   defaultMaxTokens,
		Temperature: 0,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			err = &ExtractionTimeoutError{Timeout: e.timeout}
			e.fail(ctx, "timeout", elapsed, err, events.SeverityWarning)
		} else {
			err = fmt.Errorf("conversation: model call failed: %w", err)
			e.fail(ctx, "error", elapsed, err, events.SeverityWarning)
		}
		span.RecordError(err)
		return Result{}, err
	}

	reply, err := decodeModelReply(resp.Text)
	if err != nil {
		e.fail(ctx, "malformed", elapsed, err, events.SeverityWarning)
		span.RecordError(err)
		return Result{}, err
	}

	result := e.classify(reply, pending)
	e.metrics.ObserveExtraction(string(result.Kind), elapsed)
	span.SetAttributes(attribute.String("hospitality.extraction_kind", string(result.Kind)))
	return result, nil
}

func (e *Extractor) fail(ctx context.Context, status string, elapsed float64, err error, severity events.Severity) {
	e.metrics.ObserveExtraction(status, elapsed)
	e.logger.Warn("slot extraction failed", "status", status, "error", err)
	evt := events.New(events.TypeExtractionFailed, "extract").WithAttr("status", status)
	evt.Severity = severity
	evt.Error = err.Error()
	e.sink.Emit(ctx, evt)
}

func (e *Extractor) classify(reply modelReply, pending Slots) Result {
	intent := strings.ToLower(strings.TrimSpace(reply.Intent))
	if intent != "" && intent != intentBook {
		kind, ok := parseIntent(intent)
		if !ok {
			kind = IntentUnknown
		}
		return Result{
			Kind:   ResultIntent,
			Intent: kind,
			Payload: IntentPayload{
				BookingID: bookings.NormalizeID(reply.BookingID),
				Query:     strings.TrimSpace(reply.Query),
				Reply:     strings.TrimSpace(reply.Reply),
			},
		}
	}

	fresh, ambiguous := e.validFields(reply.Fields)
	for _, name := range reply.Ambiguous {
		ambiguous = appendUnique(ambiguous, strings.ToLower(strings.TrimSpace(name)))
	}

	merged := pending.Merge(fresh)
	blocked := orderedSlots(append(blockingAmbiguous(ambiguous), merged.Missing()...))
	if len(blocked) == 0 {
		return Result{Kind: ResultComplete, Fields: merged, Ambiguous: ambiguous}
	}

	question := strings.TrimSpace(reply.Question)
	if question == "" {
		question = questionFor(blocked[0])
	}
	return Result{Kind: ResultPartial, Fields: fresh, Question: question, Ambiguous: ambiguous}
}

// validFields keeps the model values that pass individual validation. The
// names of rejected values are returned as ambiguous.
func (e *Extractor) validFields(f modelFields) (Slots, []string) {
	var s Slots
	var rejected []string

	s.Name = strings.TrimSpace(f.Name)
	s.Contact = strings.TrimSpace(f.Contact)
	s.SpecialRequirements = strings.TrimSpace(f.SpecialRequirements)

	if raw := strings.TrimSpace(f.Date); raw != "" {
		if date, err := e.locale.ParseDate(raw); err == nil {
			s.Date = date
		} else {
			rejected = append(rejected, SlotDate)
		}
	}
	if raw := strings.TrimSpace(f.Time); raw != "" {
		if t, err := e.locale.ParseTime(raw); err == nil {
			s.Time = t
		} else {
			rejected = append(rejected, SlotTime)
		}
	}
	if f.Guests != nil {
		n, ok := guestCount(f.Guests)
		if ok && n >= 1 && n <= e.maxGuests {
			s.Guests = intPtr(n)
		} else if !isBlank(f.Guests) {
			rejected = append(rejected, SlotGuests)
		}
	}
	return s, rejected
}

func guestCount(v any) (int, bool) {
	switch g := v.(type) {
	case float64:
		if g != float64(int(g)) {
			return 0, false
		}
		return int(g), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(g))
		return n, err == nil
	}
	return 0, false
}

func isBlank(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// decodeModelReply strips code fences and surrounding prose, then decodes the
// outermost JSON object.
func decodeModelReply(text string) (modelReply, error) {
	raw := strings.TrimSpace(text)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return modelReply{}, &MalformedExtractionError{Raw: text, Err: errors.New("no JSON object in model output")}
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
		return modelReply{}, &MalformedExtractionError{Raw: text, Err: err}
	}
	return reply, nil
}

// blockingAmbiguous drops names that aren't required slots.
func blockingAmbiguous(names []string) []string {
	var out []string
	for _, name := range names {
		for _, required := range requiredSlots {
			if name == required {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func orderedSlots(names []string) []string {
	var out []string
	for _, required := range requiredSlots {
		for _, name := range names {
			if name == required {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
