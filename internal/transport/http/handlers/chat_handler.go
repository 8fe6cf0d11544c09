package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	authsvc "github.com/The-Hieusss/jobless-demo/internal/services/auth"
	chatsvc "github.com/The-Hieusss/jobless-demo/internal/services/chat"
	"github.com/The-Hieusss/jobless-demo/internal/transport/http/dto"
	httperrors "github.com/The-Hieusss/jobless-demo/internal/transport/http/errors"
)

type ChatHandler struct {
	service *chatsvc.Service
}

func NewChatHandler(service *chatsvc.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
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

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.service.Send(r.Context(), matchID, identity.ParticipantID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrEmptyContent):
			writeBadRequest(w, "EMPTY_CONTENT", "message content must not be empty")
		case errors.Is(err, chatsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
		case errors.Is(err, chatsvc.ErrMatchNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "match does not exist")
		case errors.Is(err, chatsvc.ErrNotAParticipant):
			writeForbidden(w, "NOT_A_PARTICIPANT", "only match participants may use the channel")
		case errors.Is(err, chatsvc.ErrTooFast):
			writeTooFast(w, "too many messages, slow down", result.RetryAfterSec)
		case errors.Is(err, chatsvc.ErrTempUnavailable):
			writeTempUnavailable(w)
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to send message")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SendMessageResponse{
		OK:      true,
		Message: mapMessage(result.Message),
	})
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
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

	items, err := h.service.History(r.Context(), matchID, identity.ParticipantID)
	if err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid history request")
		case errors.Is(err, chatsvc.ErrMatchNotFound):
			writeNotFound(w, "MATCH_NOT_FOUND", "match does not exist")
		case errors.Is(err, chatsvc.ErrNotAParticipant):
			writeForbidden(w, "NOT_A_PARTICIPANT", "only match participants may read the channel")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load history")
		}
		return
	}

	responseItems := make([]dto.MessageResponse, 0, len(items))
	for _, msg := range items {
		responseItems = append(responseItems, mapMessage(msg))
	}

	httperrors.Write(w, http.StatusOK, dto.HistoryResponse{Items: responseItems})
}

func mapMessage(msg model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        msg.ID,
		MatchID:   msg.MatchID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
