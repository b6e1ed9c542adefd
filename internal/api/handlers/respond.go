package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/notably-ai/notably/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the pipeline's error kinds onto HTTP statuses and returns
// a single failure indicator with a human-readable message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var validation *core.ValidationError
	var extraction *core.ExtractionError
	var generation *core.GenerationError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &extraction):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &generation):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}
