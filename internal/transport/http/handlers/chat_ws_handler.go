package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	authsvc "github.com/The-Hieusss/jobless-demo/internal/services/auth"
	chatsvc "github.com/The-Hieusss/jobless-demo/internal/services/chat"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

// ChatWSHandler streams live channel messages over a websocket. Sends
// still go through the REST endpoint; the socket is a one-way stream
// that clients pair with a history fetch to reconcile missed messages.
type ChatWSHandler struct {
	service  *chatsvc.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewChatWSHandler(service *chatsvc.Service, logger *zap.Logger) *ChatWSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ChatWSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *ChatWSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	matchID := strings.TrimSpace(chi.URLParam(r, "matchID"))
	if matchID == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "match id is required")
		return
	}

	stream, cancel, err := h.service.Subscribe(r.Context(), matchID, identity.ParticipantID)
	if err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrMatchNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "match does not exist")
		case errors.Is(err, chatsvc.ErrNotAParticipant):
			writeForbidden(w, "NOT_A_PARTICIPANT", "only match participants may subscribe")
		case errors.Is(err, chatsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid subscribe request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to subscribe")
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		h.logger.Warn("websocket upgrade failed",
			zap.String("match_id", matchID),
			zap.Error(err),
		)
		return
	}

	go h.writePump(conn, matchID, stream, cancel)
	go h.readPump(conn, cancel)
}

// writePump forwards stream messages to the socket and keeps the
// connection alive with pings. It exits when the stream closes, which
// includes the slow-subscriber drop, so a lagging client is forced to
// reconnect and reload history.
func (h *ChatWSHandler) writePump(conn *websocket.Conn, matchID string, stream <-chan model.Message, cancel func()) {
	ticker := time.NewTicker(wsPingEvery)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-stream:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"))
				return
			}
			if err := conn.WriteJSON(mapMessage(msg)); err != nil {
				h.logger.Debug("websocket write failed",
					zap.String("match_id", matchID),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and watches for disconnects. Sending
// happens over REST, so inbound payloads carry nothing actionable.
func (h *ChatWSHandler) readPump(conn *websocket.Conn, cancel func()) {
	defer func() {
		cancel()
		_ = conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
