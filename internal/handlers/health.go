package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jwebster45206/word-dungeon/pkg/storage"
)

type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Service    string                 `json:"service"`
	Components map[string]interface{} `json:"components"`
}

type HealthHandler struct {
	storage  storage.Storage
	provider string
	logger   *slog.Logger

	mu       sync.RWMutex
	modelErr error
}

func NewHealthHandler(storage storage.Storage, provider string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage:  storage,
		provider: provider,
		logger:   logger,
	}
}

// SetModelError records the outcome of model initialization. A nil error
// marks the model ready.
func (h *HealthHandler) SetModelError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modelErr = err
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]interface{})
	overallStatus := "healthy"

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	h.mu.RLock()
	modelErr := h.modelErr
	h.mu.RUnlock()
	if modelErr != nil {
		components["llm"] = map[string]interface{}{"provider": h.provider, "status": "unhealthy", "error": modelErr.Error()}
		overallStatus = "degraded"
	} else {
		components["llm"] = map[string]interface{}{"provider": h.provider, "status": "healthy"}
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "word-dungeon",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, statusCode, response)
}
