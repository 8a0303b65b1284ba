package conversation

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	maxChatFrameBytes = 16 << 10
	wsIdleTimeout     = 5 * time.Minute
	wsWriteTimeout    = 10 * time.Second
)

type wsChatMessage struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type wsChatFrame struct {
	SessionID string    `json:"session_id"`
	Response  string    `json:"response,omitempty"`
	Kind      ReplyKind `json:"kind,omitempty"`
	Booking   any       `json:"booking,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ChatWS handles GET /chat/ws. Each inbound frame is one chat turn; the
// session id of the first reply is reused when later frames omit it.
func (h *Handler) ChatWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: sameOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("chat websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxChatFrameBytes)

	write := func(frame wsChatFrame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(frame)
	}

	var sessionID string
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

		var msg wsChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				h.logger.Debug("chat websocket closed", "session_id", sessionID, "error", err)
			}
			return
		}
		if id := strings.TrimSpace(msg.SessionID); id != "" {
			sessionID = id
		}
		if strings.TrimSpace(msg.Message) == "" {
			if err := write(wsChatFrame{SessionID: sessionID, Error: "message is required"}); err != nil {
				return
			}
			continue
		}

		reply := h.orchestrator.Handle(r.Context(), sessionID, msg.Message)
		sessionID = reply.SessionID

		frame := wsChatFrame{SessionID: reply.SessionID, Response: reply.Text, Kind: reply.Kind}
		if reply.Booking != nil {
			frame.Booking = reply.Booking
		}
		if err := write(frame); err != nil {
			h.logger.Warn("chat websocket write failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
