package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	httperrors "github.com/The-Hieusss/jobless-demo/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeTempUnavailable(w http.ResponseWriter) {
	httperrors.Write(w, http.StatusServiceUnavailable, httperrors.RateLimitError{
		Code:          "TEMP_UNAVAILABLE",
		Message:       "service temporarily unavailable, try again later",
		RetryAfterSec: 10,
	})
}

func writeTooFast(w http.ResponseWriter, message string, retryAfterSec int64) {
	httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
		Code:          "TOO_FAST",
		Message:       message,
		RetryAfterSec: retryAfterSec,
	})
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
