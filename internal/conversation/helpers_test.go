package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wolfman30/hospitality-booking/internal/bookings"
	"github.com/wolfman30/hospitality-booking/internal/events"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// scriptedLLM replays canned model answers in order and records requests.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	requests  []LLMRequest
}

func newScriptedLLM(responses ...string) *scriptedLLM {
	return &scriptedLLM{responses: responses}
}

func (s *scriptedLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return LLMResponse{}, err
		}
	}
	if len(s.responses) == 0 {
		return LLMResponse{}, errors.New("scripted llm: no responses left")
	}
	text := s.responses[0]
	s.responses = s.responses[1:]
	return LLMResponse{Text: text}, nil
}

func (s *scriptedLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *scriptedLLM) lastRequest() LLMRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

// blockingLLM waits for the context to end.
type blockingLLM struct{}

func (blockingLLM) Complete(ctx context.Context, _ LLMRequest) (LLMResponse, error) {
	<-ctx.Done()
	return LLMResponse{}, ctx.Err()
}

type fixture struct {
	ledger   *bookings.Ledger
	llm      *scriptedLLM
	recorder *events.Recorder
	orch     *Orchestrator
}

func newFixture(t *testing.T, responses ...string) *fixture {
	t.Helper()
	rec := events.NewRecorder()
	ledger := bookings.NewLedger(bookings.WithClock(testClock), bookings.WithSink(rec))
	llm := newScriptedLLM(responses...)
	extractor := NewExtractor(llm, ledger.Locale(), WithExtractorSink(rec))
	orch := NewOrchestrator(ledger, extractor, nil, WithOrchestratorClock(testClock))
	return &fixture{ledger: ledger, llm: llm, recorder: rec, orch: orch}
}
