package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
	"github.com/nyashahama/dx-scoping-backend/internal/cache"
	"github.com/nyashahama/dx-scoping-backend/internal/document"
	"github.com/nyashahama/dx-scoping-backend/internal/metrics"
)

// ─── POST /api/documents/{kind} ───────────────────────────────────────────────

type documentRequest struct {
	Answers answer.Set `json:"answers"`
	// PrimaryType overrides the top-ranked type in the SOW and job post.
	PrimaryType string `json:"primary_type,omitempty"`
	// Date pins the creation date (YYYY-MM-DD). Empty means today in the
	// configured zone.
	Date string `json:"date,omitempty"`
}

// handleGenerateDocument renders one Markdown document as an attachment.
//
// An invalid answer set still returns 200 with the input-error document, the
// same artefact a user would download. Only request-shape problems are 4xx:
// an unknown kind is 404, an unknown primary type or bad date is 400.
//
// Rendering is deterministic for (kind, answers, primary, date), so the
// result is cached under a digest of those four values.
func (s *Server) handleGenerateDocument(w http.ResponseWriter, r *http.Request) {
	kind, err := document.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondErr(w, http.StatusNotFound, err.Error())
		return
	}

	var req documentRequest
	if !decode(w, r, &req) {
		return
	}

	primary, err := document.ParseType(req.PrimaryType)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	now, err := s.documentDate(req.Date)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	set := s.prepare(req.Answers)
	opts := document.Options{Primary: primary, Now: now}

	canonical, err := json.Marshal(set)
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("encode answers: %w", err))
		return
	}
	key := cache.Key(string(kind), string(canonical), string(primary), now.Format(time.DateOnly))

	body, err := s.cache.Get(r.Context(), key)
	switch {
	case err == nil:
		metrics.DocumentCacheLookups.WithLabelValues("hit").Inc()
		w.Header().Set("X-Cache", "HIT")
		respondMarkdown(w, kind.Filename(), body)
		return
	case errors.Is(err, cache.ErrMiss):
		metrics.DocumentCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.DocumentCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("document cache get failed", "error", err, logField(r))
	}

	v, err, shared := s.renders.Do(key, func() (any, error) {
		body, err := s.gen.Generate(kind, set, opts)
		if err != nil {
			return "", err
		}

		outcome := "ok"
		if !answer.Validate(s.cat, set).OK {
			outcome = "input_error"
		}
		metrics.DocumentsGenerated.WithLabelValues(string(kind), outcome).Inc()

		// The first caller's context is shared by every waiter, so the write
		// gets its own deadline.
		setCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.cache.Set(setCtx, key, body, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("document cache set failed", "error", err, logField(r))
		}
		return body, nil
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("generate %s: %w", kind, err))
		return
	}
	if shared {
		s.logger.Debug("document render shared", "kind", kind, logField(r))
	}

	w.Header().Set("X-Cache", "MISS")
	respondMarkdown(w, kind.Filename(), v.(string))
}

// documentDate parses a YYYY-MM-DD override in the configured zone, or
// returns the current time there.
func (s *Server) documentDate(raw string) (time.Time, error) {
	if raw == "" {
		return s.now().In(s.cfg.DateLocation), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, s.cfg.DateLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", raw)
	}
	return t, nil
}
