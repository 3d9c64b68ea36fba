package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/shareme/internal/common"
	"github.com/dmitrijs2005/shareme/internal/logging"
)

const msgInternal = "Internal Server Error"

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// statusFor maps a service error to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorMissingFile):
		return http.StatusBadRequest, "File not found"
	case errors.Is(err, common.ErrorMissingFields):
		return http.StatusBadRequest, "id, emailFrom and emailTo are required"
	case errors.Is(err, common.ErrorInvalidRequest):
		return http.StatusBadRequest, "Invalid request body"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, common.ErrorStorage):
		return http.StatusBadRequest, "Storage error"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeServiceError writes the mapped error response. Server-side failures
// are logged with their full cause, which never reaches the client.
func writeServiceError(ctx context.Context, w http.ResponseWriter, l logging.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError || errors.Is(err, common.ErrorStorage) {
		l.Error(ctx, "request failed", "status", status, "error", err)
	}
	writeError(w, status, msg)
}
