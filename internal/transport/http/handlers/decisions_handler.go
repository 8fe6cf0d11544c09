package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/The-Hieusss/jobless-demo/internal/domain/enums"
	authsvc "github.com/The-Hieusss/jobless-demo/internal/services/auth"
	decisionssvc "github.com/The-Hieusss/jobless-demo/internal/services/decisions"
	"github.com/The-Hieusss/jobless-demo/internal/transport/http/dto"
	httperrors "github.com/The-Hieusss/jobless-demo/internal/transport/http/errors"
)

type DecisionsHandler struct {
	service *decisionssvc.Service
}

func NewDecisionsHandler(service *decisionssvc.Service) *DecisionsHandler {
	return &DecisionsHandler{service: service}
}

func (h *DecisionsHandler) Record(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DECISION_SERVICE_UNAVAILABLE", "decision service is unavailable")
		return
	}

	var req dto.DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if strings.TrimSpace(req.TargetID) == "" || strings.TrimSpace(req.Direction) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "target_id and direction are required")
		return
	}

	direction, ok := enums.ParseDirection(req.Direction)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "direction must be like or pass")
		return
	}

	result, err := h.service.Record(r.Context(), identity.ParticipantID, req.TargetID, direction)
	if err != nil {
		switch {
		case errors.Is(err, decisionssvc.ErrSelfDecision):
			writeBadRequest(w, "VALIDATION_ERROR", "cannot decide on yourself")
		case errors.Is(err, decisionssvc.ErrValidation), errors.Is(err, decisionssvc.ErrUnsupportedDirection):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid decision request")
		case errors.Is(err, decisionssvc.ErrUnknownParticipant):
			writeNotFound(w, "PARTICIPANT_NOT_FOUND", "target participant does not exist")
		case errors.Is(err, decisionssvc.ErrTooFast):
			writeTooFast(w, "too many decisions, slow down", result.RetryAfterSec)
		case errors.Is(err, decisionssvc.ErrTempUnavailable):
			writeTempUnavailable(w)
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to record decision")
		}
		return
	}

	response := dto.DecisionResponse{
		OK:           true,
		DecisionID:   result.Decision.ID,
		Direction:    string(result.Decision.Direction),
		DecidedAt:    result.Decision.CreatedAt,
		MatchCreated: result.MatchCreated,
	}
	if result.MatchCreated {
		response.Match = &dto.MatchCreatedResponse{
			ID:          result.Match.ID,
			SeekerID:    result.Match.SeekerID,
			RecruiterID: result.Match.RecruiterID,
			CreatedAt:   result.Match.CreatedAt,
		}
	}

	httperrors.Write(w, http.StatusOK, response)
}
