package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/The-Hieusss/jobless-demo/internal/domain/model"
	authsvc "github.com/The-Hieusss/jobless-demo/internal/services/auth"
	profilessvc "github.com/The-Hieusss/jobless-demo/internal/services/profiles"
	"github.com/The-Hieusss/jobless-demo/internal/transport/http/dto"
	httperrors "github.com/The-Hieusss/jobless-demo/internal/transport/http/errors"
)

type ProfilesHandler struct {
	service *profilessvc.Service
}

func NewProfilesHandler(service *profilessvc.Service) *ProfilesHandler {
	return &ProfilesHandler{service: service}
}

func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	participantID := strings.TrimSpace(chi.URLParam(r, "participantID"))
	if participantID == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "participant id is required")
		return
	}

	profile, err := h.service.Get(r.Context(), participantID)
	if err != nil {
		switch {
		case errors.Is(err, profilessvc.ErrNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile does not exist")
		case errors.Is(err, profilessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid profile request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load profile")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, mapProfile(profile))
}

func (h *ProfilesHandler) Deck(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	items, err := h.service.Deck(r.Context(), identity.ParticipantID, parseIntOrDefault(r.URL.Query().Get("limit"), 20))
	if err != nil {
		switch {
		case errors.Is(err, profilessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid deck request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load deck")
		}
		return
	}

	responseItems := make([]dto.ProfileResponse, 0, len(items))
	for _, profile := range items {
		responseItems = append(responseItems, mapProfile(profile))
	}

	httperrors.Write(w, http.StatusOK, dto.DeckResponse{Items: responseItems})
}

func mapProfile(profile model.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:            profile.ID,
		Name:          profile.Name,
		Category:      string(profile.Category),
		Bio:           profile.Bio,
		ProfilePicURL: profile.ProfilePicURL,
	}
}
