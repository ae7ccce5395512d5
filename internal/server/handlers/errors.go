// Error writing helpers for raw (non-wrapped) handlers.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"callbook/internal/server/dto"
)

// WriteError writes an error as the standard JSON error response, mapping
// dto.ErrorWithStatus when possible and falling back to 500.
func WriteError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	code := dto.ErrorCodeInternal
	details := map[string]any{}

	var ews dto.ErrorWithStatus
	if errors.As(err, &ews) {
		statusCode = ews.StatusCode()
		code = ews.Code()
		if d := ews.Details(); d != nil {
			details = d
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := dto.ErrorResponse{
		Error:   dto.ErrorDetails{Code: code, Message: err.Error()},
		Details: details,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "err", err)
	}
}
