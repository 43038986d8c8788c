package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/word-dungeon/pkg/story"
)

type GenreInfo struct {
	Code  story.Genre `json:"code"`
	Label string      `json:"label"`
}

type PresetsResponse struct {
	Genres   []GenreInfo `json:"genres"`
	Words    [][]string  `json:"words"`
	MaxWords int         `json:"max_words"`
}

// PresetsHandler serves what the input screen offers: genres and the
// recommended word sets.
type PresetsHandler struct {
	logger *slog.Logger
}

func NewPresetsHandler(logger *slog.Logger) *PresetsHandler {
	return &PresetsHandler{logger: logger}
}

func (h *PresetsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	resp := PresetsResponse{
		Genres:   make([]GenreInfo, 0, len(story.Genres)),
		Words:    story.PresetWords,
		MaxWords: story.MaxWords,
	}
	for _, g := range story.Genres {
		resp.Genres = append(resp.Genres, GenreInfo{Code: g, Label: g.Label()})
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}
