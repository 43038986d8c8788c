package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/word-dungeon/internal/game"
	"github.com/jwebster45206/word-dungeon/internal/report"
	"github.com/jwebster45206/word-dungeon/internal/services"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`

	// Session is the rolled-back session after a failed generation.
	Session *state.GameState `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, ErrorResponse{Error: message})
}

// statusFor maps processor errors to HTTP status codes.
func statusFor(err error) int {
	var verr *story.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, state.ErrInvalidTransition),
		errors.Is(err, state.ErrGenerationInFlight),
		errors.Is(err, state.ErrStaleTicket),
		errors.Is(err, game.ErrSessionBusy),
		errors.Is(err, report.ErrNotFinished):
		return http.StatusConflict
	case errors.Is(err, services.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeProcessorError writes err with its mapped status. Internal errors
// are logged and hidden from the client.
func writeProcessorError(w http.ResponseWriter, logger *slog.Logger, err error, gs *state.GameState) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *story.ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Error = verr.Message
		resp.Field = verr.Field
	case status == http.StatusBadGateway:
		resp.Error = "content generation failed"
		resp.Session = gs
	case status == http.StatusInternalServerError:
		logger.Error("Request failed", "error", err)
		resp.Error = "internal server error"
	}
	writeJSON(w, logger, status, resp)
}
