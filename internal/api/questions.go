package api

import (
	"net/http"

	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
)

// ─── GET /api/questions ───────────────────────────────────────────────────────

type questionsResponse struct {
	Questions []catalog.Question `json:"questions"`
	Steps     []catalog.Step     `json:"steps"`
}

// handleListQuestions serves the catalogue and its step grouping so a client
// can render the questionnaire without hard-coding it.
func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	respond(w, http.StatusOK, questionsResponse{
		Questions: s.cat.Questions(),
		Steps:     s.cat.Steps(),
	})
}
