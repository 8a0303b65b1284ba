package bookings

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

const maxBodyBytes = 16 << 10

// Handler serves the structured booking API on top of a Ledger.
type Handler struct {
	ledger *Ledger
	logger *logging.Logger
}

// NewHandler creates a bookings handler.
func NewHandler(ledger *Ledger, logger *logging.Logger) *Handler {
	if ledger == nil {
		panic("bookings: ledger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{ledger: ledger, logger: logger}
}

// ListResponse wraps a set of bookings.
type ListResponse struct {
	Bookings   []Booking `json:"bookings"`
	TotalCount int       `json:"total_count"`
}

// SearchRequest is the body of POST /bookings/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is the body of every failed booking call.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

// Create handles POST /bookings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Fields
	if !decodeBody(w, r, &req) {
		return
	}

	b, err := h.ledger.Create(r.Context(), req)
	if err != nil {
		h.writeLedgerError(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// List handles GET /bookings?status=&date=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter Filter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, ok := ParseStatus(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown status " + raw})
			return
		}
		filter.Status = status
	}
	filter.Date = r.URL.Query().Get("date")

	list := h.ledger.List(r.Context(), filter)
	writeJSON(w, http.StatusOK, ListResponse{Bookings: list, TotalCount: len(list)})
}

// Get handles GET /bookings/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeLedgerError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Modify handles PATCH /bookings/{id}.
func (h *Handler) Modify(w http.ResponseWriter, r *http.Request) {
	var changes Changes
	if !decodeBody(w, r, &changes) {
		return
	}

	b, err := h.ledger.Modify(r.Context(), chi.URLParam(r, "id"), changes)
	if err != nil {
		h.writeLedgerError(w, "modify", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Cancel handles DELETE /bookings/{id}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	b, err := h.ledger.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeLedgerError(w, "cancel", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Search handles POST /bookings/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	list := h.ledger.Search(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, ListResponse{Bookings: list, TotalCount: len(list)})
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Stats(r.Context()))
}

func (h *Handler) writeLedgerError(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrValidation.Error(), Fields: verr.Fields})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAlreadyCancelled):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrExhausted):
		writeJSON(w, http.StatusInsufficientStorage, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("booking operation failed", "operation", op, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// decodeBody reads a size-capped JSON body into dst and writes the error
// response itself when decoding fails. A value of the wrong JSON type is
// reported as a field error.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
	case errors.As(err, &typeErr) && typeErr.Field != "":
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: ErrValidation.Error(),
			Fields: []FieldError{{
				Field:   typeErr.Field,
				Reason:  ReasonInvalidFormat,
				Message: fmt.Sprintf("%s must be a %s, got %s", typeErr.Field, jsonKind(typeErr), typeErr.Value),
			}},
		})
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	return false
}

func jsonKind(e *json.UnmarshalTypeError) string {
	if e.Type == nil {
		return "value"
	}
	switch e.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		return e.Type.Kind().String()
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
