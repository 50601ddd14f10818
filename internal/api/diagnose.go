package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
	"github.com/nyashahama/dx-scoping-backend/internal/metrics"
	"github.com/nyashahama/dx-scoping-backend/internal/scoring"
)

type answersRequest struct {
	Answers answer.Set `json:"answers"`
}

// ─── POST /api/validate ───────────────────────────────────────────────────────

type validateResponse struct {
	OK     bool               `json:"ok"`
	Errors []string           `json:"errors"`
	Steps  []answer.StepState `json:"steps"`
}

// handleValidate checks an answer set and reports which questionnaire steps
// are complete. An invalid set is a normal 200 response.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !decode(w, r, &req) {
		return
	}
	set := s.prepare(req.Answers)

	v := answer.Validate(s.cat, set)
	if !v.OK {
		metrics.ValidationFailures.Inc()
	}

	respond(w, http.StatusOK, validateResponse{
		OK:     v.OK,
		Errors: v.Errors,
		Steps:  answer.StepStatus(s.cat, set),
	})
}

// ─── POST /api/diagnose ───────────────────────────────────────────────────────
//
// Scores an answer set. Validation is advisory here: the three scorers run on
// whatever was supplied and the validation outcome is reported alongside.

type typeScoreResponse struct {
	Type    scoring.TypeName `json:"type"`
	Score   int              `json:"score"`
	Reasons []string         `json:"reasons"`
}

type diagnoseResponse struct {
	DiagnosisID string              `json:"diagnosis_id"`
	Valid       bool                `json:"valid"`
	Errors      []string            `json:"errors"`
	Types       []typeScoreResponse `json:"types"`
	TopTypes    []scoring.TypeName  `json:"top_types"`
	Difficulty  scoring.Result      `json:"difficulty"`
	Risk        scoring.Result      `json:"risk"`
}

// handleDiagnose runs validation and all three scorers. The diagnosis id is
// a fresh UUID for client-side correlation; nothing is stored.
func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if !decode(w, r, &req) {
		return
	}
	set := s.prepare(req.Answers)

	v := answer.Validate(s.cat, set)
	if !v.OK {
		metrics.ValidationFailures.Inc()
	}

	ts := s.scorer.Types(set)
	types := make([]typeScoreResponse, 0, len(ts.Scores))
	for _, t := range scoring.Types() {
		types = append(types, typeScoreResponse{Type: t, Score: ts.Scores[t], Reasons: ts.Reasons[t]})
	}
	top := ts.Top(3)
	metrics.Diagnoses.WithLabelValues(string(top[0])).Inc()

	id := uuid.NewString()
	s.logger.Debug("diagnosis computed",
		"diagnosis_id", id,
		"valid", v.OK,
		"top_type", top[0],
		logField(r),
	)

	w.Header().Set("X-Diagnosis-ID", id)
	respond(w, http.StatusOK, diagnoseResponse{
		DiagnosisID: id,
		Valid:       v.OK,
		Errors:      v.Errors,
		Types:       types,
		TopTypes:    top,
		Difficulty:  s.scorer.Difficulty(set),
		Risk:        s.scorer.Risk(set),
	})
}
