package conversation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/hospitality-booking/internal/bookings"
	"github.com/wolfman30/hospitality-booking/pkg/logging"
)

// maxChatBodyBytes matches the websocket frame limit.
const maxChatBodyBytes = maxChatFrameBytes

// Handler exposes the orchestrator over HTTP.
type Handler struct {
	orchestrator *Orchestrator
	logger       *logging.Logger
}

func NewHandler(orchestrator *Orchestrator, logger *logging.Logger) *Handler {
	if orchestrator == nil {
		panic("conversation: orchestrator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{orchestrator: orchestrator, logger: logger}
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// ChatResponse is returned for every accepted chat turn.
type ChatResponse struct {
	Response  string            `json:"response"`
	SessionID string            `json:"session_id"`
	Success   bool              `json:"success"`
	Kind      ReplyKind         `json:"kind"`
	Booking   *bookings.Booking `json:"booking,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	reply := h.orchestrator.Handle(r.Context(), req.SessionID, req.Message)
	h.logger.Info("chat turn handled",
		"session_id", reply.SessionID,
		"user_id", req.UserID,
		"kind", string(reply.Kind),
		"message_length", len(req.Message),
	)
	writeJSON(w, http.StatusOK, toChatResponse(reply))
}

// GetSession handles GET /chat/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	state, ok, err := h.orchestrator.State(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load session"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ResetSession handles DELETE /chat/sessions/{sessionID}.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.orchestrator.Reset(r.Context(), sessionID); err != nil {
		h.logger.Error("failed to reset session", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to reset session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toChatResponse(reply Reply) ChatResponse {
	return ChatResponse{
		Response:  reply.Text,
		SessionID: reply.SessionID,
		Success:   !reply.Kind.Failed(),
		Kind:      reply.Kind,
		Booking:   reply.Booking,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
