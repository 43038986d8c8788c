package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/word-dungeon/internal/report"
	"github.com/jwebster45206/word-dungeon/pkg/boss"
	"github.com/jwebster45206/word-dungeon/pkg/chat"
	"github.com/jwebster45206/word-dungeon/pkg/state"
	"github.com/jwebster45206/word-dungeon/pkg/story"
)

// Processor is the session engine behind the handler.
type Processor interface {
	Create(ctx context.Context) (*state.GameState, error)
	Get(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Start(ctx context.Context, id uuid.UUID, in story.UserInput) (*state.GameState, error)
	Continue(ctx context.Context, id uuid.UUID, action string) (*state.GameState, error)
	Boss(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	Answer(ctx context.Context, id uuid.UUID, option int) (*state.GameState, boss.Outcome, error)
	Restart(ctx context.Context, id uuid.UUID) (*state.GameState, error)
}

// SessionResponse is a session plus what clients would otherwise derive.
type SessionResponse struct {
	*state.GameState
	Segments []story.Segment `json:"segments,omitempty"`
	Result   *boss.Result    `json:"result,omitempty"`
}

func newSessionResponse(gs *state.GameState) SessionResponse {
	resp := SessionResponse{GameState: gs}
	if gs.Content != nil && gs.Phase == state.PhaseStory {
		resp.Segments = story.Segments(gs.Content.Story)
	}
	if gs.Phase == state.PhaseResult {
		result := gs.Result()
		resp.Result = &result
	}
	return resp
}

type AnswerResponse struct {
	Outcome boss.Outcome    `json:"outcome"`
	Session SessionResponse `json:"session"`
}

type SessionHandler struct {
	processor Processor
	renderer  *report.Renderer
	logger    *slog.Logger
}

func NewSessionHandler(processor Processor, renderer *report.Renderer, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		processor: processor,
		renderer:  renderer,
		logger:    logger,
	}
}

// ServeHTTP handles HTTP requests for sessions
// Routes:
// POST /v1/sessions                  - Create new session
// GET /v1/sessions/{id}              - Read session by ID
// DELETE /v1/sessions/{id}           - Delete session by ID
// POST /v1/sessions/{id}/start       - Submit input, generate chapter one
// POST /v1/sessions/{id}/continue    - Generate the next chapter
// POST /v1/sessions/{id}/boss        - Start the boss battle
// POST /v1/sessions/{id}/answer      - Answer the current question
// POST /v1/sessions/{id}/restart     - Back to the input screen
// GET /v1/sessions/{id}/report       - PDF certificate
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	case action == "report" && r.Method == http.MethodGet:
		h.handleReport(w, r, id)
	case r.Method == http.MethodPost && action == "start":
		h.handleStart(w, r, id)
	case r.Method == http.MethodPost && action == "continue":
		h.handleContinue(w, r, id)
	case r.Method == http.MethodPost && action == "boss":
		h.respond(w, id, "boss")(h.processor.Boss(r.Context(), id))
	case r.Method == http.MethodPost && action == "answer":
		h.handleAnswer(w, r, id)
	case r.Method == http.MethodPost && action == "restart":
		h.respond(w, id, "restart")(h.processor.Restart(r.Context(), id))
	case action == "" || isAction(action):
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func isAction(s string) bool {
	switch s {
	case "start", "continue", "boss", "answer", "restart", "report":
		return true
	}
	return false
}

// respond writes the outcome of a processor call.
func (h *SessionHandler) respond(w http.ResponseWriter, id uuid.UUID, event string) func(*state.GameState, error) {
	return func(gs *state.GameState, err error) {
		if err != nil {
			h.logger.Debug("Session event rejected", "session_id", id.String(), "event", event, "error", err)
			writeProcessorError(w, h.logger, err, gs)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, newSessionResponse(gs))
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	gs, err := h.processor.Create(r.Context())
	if err != nil {
		writeProcessorError(w, h.logger, err, nil)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+gs.ID.String())
	writeJSON(w, h.logger, http.StatusCreated, newSessionResponse(gs))
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.respond(w, id, "read")(h.processor.Get(r.Context(), id))
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.processor.Delete(r.Context(), id); err != nil {
		writeProcessorError(w, h.logger, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleStart(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in story.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	h.respond(w, id, "start")(h.processor.Start(r.Context(), id, in))
}

func (h *SessionHandler) handleContinue(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req chat.ContinueRequest
	// An empty body continues with the default action
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, id, "continue")(h.processor.Continue(r.Context(), id, req.Action))
}

func (h *SessionHandler) handleAnswer(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req chat.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	gs, out, err := h.processor.Answer(r.Context(), id, *req.Option)
	if err != nil {
		writeProcessorError(w, h.logger, err, gs)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, AnswerResponse{Outcome: out, Session: newSessionResponse(gs)})
}

func (h *SessionHandler) handleReport(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.processor.Get(r.Context(), id)
	if err != nil {
		writeProcessorError(w, h.logger, err, nil)
		return
	}
	cert, err := report.FromGameState(gs)
	if err != nil {
		writeProcessorError(w, h.logger, err, nil)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, cert); err != nil {
		writeProcessorError(w, h.logger, err, nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="word-dungeon-%s.pdf"`, id.String()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("Failed to write report", "session_id", id.String(), "error", err)
	}
}
