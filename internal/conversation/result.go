package conversation

import "strings"

// ResultKind tells the orchestrator which branch an extraction took.
type ResultKind string

const (
	ResultComplete ResultKind = "complete"
	ResultPartial  ResultKind = "partial"
	ResultIntent   ResultKind = "intent"
)

// IntentKind is a non-booking request recognised in an utterance.
type IntentKind string

const (
	IntentCancel    IntentKind = "cancel"
	IntentSearch    IntentKind = "search"
	IntentStats     IntentKind = "stats"
	IntentSmalltalk IntentKind = "smalltalk"
	IntentUnknown   IntentKind = "unknown"
)

// intentBook is the model's label for slot filling; it never surfaces as an
// IntentKind.
const intentBook = "book"

func parseIntent(raw string) (IntentKind, bool) {
	switch IntentKind(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentCancel:
		return IntentCancel, true
	case IntentSearch:
		return IntentSearch, true
	case IntentStats:
		return IntentStats, true
	case IntentSmalltalk:
		return IntentSmalltalk, true
	case IntentUnknown:
		return IntentUnknown, true
	}
	return "", false
}

// IntentPayload carries whatever the intent needs.
type IntentPayload struct {
	BookingID string `json:"booking_id,omitempty"`
	Query     string `json:"query,omitempty"`
	Reply     string `json:"reply,omitempty"`
}

// Result is the outcome of one Extract call.
//
// Complete: Fields holds the merged, validated slots.
// Partial: Fields holds only the newly extracted valid values and Question
// asks for the next one.
// Intent: Intent and Payload describe the request.
type Result struct {
	Kind      ResultKind
	Fields    Slots
	Question  string
	Ambiguous []string
	Intent    IntentKind
	Payload   IntentPayload
}
