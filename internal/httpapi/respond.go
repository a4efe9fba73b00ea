package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tugasku/internal/model"
	"tugasku/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps domain errors to HTTP statuses. Anything unexpected
// becomes an opaque 500 after being logged.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var validation *model.ValidationError
	var notFound *model.NotFoundError
	var conflict *model.ConflictError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody(validation.Error()))
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody(notFound.Error()))
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorBody(conflict.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody(err.Error()))
	default:
		s.log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
	}
}
