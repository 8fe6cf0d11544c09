package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/The-Hieusss/jobless-demo/internal/services/auth"
	matchessvc "github.com/The-Hieusss/jobless-demo/internal/services/matches"
	"github.com/The-Hieusss/jobless-demo/internal/transport/http/dto"
	httperrors "github.com/The-Hieusss/jobless-demo/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), identity.ParticipantID, parseIntOrDefault(r.URL.Query().Get("limit"), 100))
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		}
		return
	}

	responseItems := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.MatchItemResponse{
			ID:               item.MatchID,
			MatchedAt:        item.MatchedAt,
			PartnerID:        item.PartnerID,
			PartnerName:      item.PartnerName,
			PartnerCategory:  item.PartnerCategory,
			PartnerAvatarURL: item.PartnerAvatarURL,
			LastMessage:      item.LastMessage,
			LastMessageAt:    item.LastMessageAt,
			LastActivityAt:   item.LastActivityAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: responseItems})
}
