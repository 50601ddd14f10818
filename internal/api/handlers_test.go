package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
	"github.com/nyashahama/dx-scoping-backend/internal/api"
	"github.com/nyashahama/dx-scoping-backend/internal/cache"
	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
	"github.com/nyashahama/dx-scoping-backend/internal/scoring"
)

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func newTestServer(t *testing.T, c cache.Cache, cfgOverrides ...func(*api.Config)) http.Handler {
	t.Helper()

	cfg := api.Config{
		Env:              "development",
		ClampMultiSelect: true,
		CacheTTL:         time.Minute,
		DateLocation:     time.UTC,
	}
	for _, fn := range cfgOverrides {
		fn(&cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewServer(catalog.Default(), scoring.Default(), c, cfg, logger)
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(dst), "raw: %s", rr.Body.String())
}

func complete() answer.Set {
	s := answer.Set{}
	for _, q := range catalog.Default().Questions() {
		if q.Multi {
			s[q.ID] = answer.Multi("A")
		} else {
			s[q.ID] = answer.Single("A")
		}
	}
	return s
}

func scenario() answer.Set {
	s := complete()
	s["Q4"] = answer.Single("E")
	s["Q9"] = answer.Single("C")
	s["Q10"] = answer.Single("B")
	s["Q11"] = answer.Single("C")
	s["Q12"] = answer.Single("B")
	s["Q13"] = answer.Multi("D")
	s["Q15"] = answer.Single("D")
	s["Q17"] = answer.Single("C")
	s["Q20"] = answer.Single("B")
	return s
}

// ─── GET /healthz, /metrics ───────────────────────────────────────────────────

func TestHealthz(t *testing.T) {
	rr := doRequest(t, newTestServer(t, nil), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetrics(t *testing.T) {
	rr := doRequest(t, newTestServer(t, nil), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dx_validation_failures_total")
}

func TestCORS_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/diagnose", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	newTestServer(t, nil).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

// ─── GET /api/questions ───────────────────────────────────────────────────────

func TestListQuestions(t *testing.T) {
	rr := doRequest(t, newTestServer(t, nil), http.MethodGet, "/api/questions", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Questions []catalog.Question `json:"questions"`
		Steps     []catalog.Step     `json:"steps"`
	}
	decodeJSON(t, rr, &resp)

	require.Len(t, resp.Questions, 25)
	assert.Len(t, resp.Steps, 6)
	assert.Equal(t, "Q3", resp.Questions[2].ID)
	assert.True(t, resp.Questions[2].Multi)
	assert.Equal(t, 2, resp.Questions[2].MaxSelections)
}

// ─── POST /api/validate ───────────────────────────────────────────────────────

func TestValidate_Complete(t *testing.T) {
	rr := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/validate",
		map[string]any{"answers": complete()})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		OK     bool               `json:"ok"`
		Errors []string           `json:"errors"`
		Steps  []answer.StepState `json:"steps"`
	}
	decodeJSON(t, rr, &resp)

	assert.True(t, resp.OK)
	assert.Empty(t, resp.Errors)
	require.Len(t, resp.Steps, 6)
	for _, st := range resp.Steps {
		assert.True(t, st.Complete, st.Title)
	}
}

func TestValidate_MissingAnswer(t *testing.T) {
	s := complete()
	delete(s, "Q25")
	s["Q4"] = answer.Multi("A")

	rr := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/validate", map[string]any{"answers": s})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		OK     bool               `json:"ok"`
		Errors []string           `json:"errors"`
		Steps  []answer.StepState `json:"steps"`
	}
	decodeJSON(t, rr, &resp)

	assert.False(t, resp.OK)
	assert.Equal(t, []string{"Q4 は単一選択で渡してください", "未回答: Q25"}, resp.Errors)
	assert.False(t, resp.Steps[5].Complete)
	assert.True(t, resp.Steps[1].Complete, "cardinality does not block a step")
}

func TestValidate_BadJSON(t *testing.T) {
	h := newTestServer(t, nil)
	for name, body := range map[string]string{
		"malformed":     `{bad json`,
		"unknown field": `{"answers": {}, "extra": 1}`,
		"numeric value": `{"answers": {"Q1": 3}}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
}

// ─── POST /api/diagnose ───────────────────────────────────────────────────────

type diagnoseResp struct {
	DiagnosisID string   `json:"diagnosis_id"`
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Types       []struct {
		Type    string   `json:"type"`
		Score   int      `json:"score"`
		Reasons []string `json:"reasons"`
	} `json:"types"`
	TopTypes   []string       `json:"top_types"`
	Difficulty scoring.Result `json:"difficulty"`
	Risk       scoring.Result `json:"risk"`
}

func TestDiagnose_Scenario(t *testing.T) {
	rr := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/diagnose",
		map[string]any{"answers": scenario()})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp diagnoseResp
	decodeJSON(t, rr, &resp)

	_, err := uuid.Parse(resp.DiagnosisID)
	assert.NoError(t, err)
	assert.Equal(t, resp.DiagnosisID, rr.Header().Get("X-Diagnosis-ID"))

	assert.True(t, resp.Valid)
	assert.Equal(t, []string{"システム連携", "データ整備", "可視化・KPI"}, resp.TopTypes)

	require.Len(t, resp.Types, 8)
	assert.Equal(t, "データ整備", resp.Types[0].Type)
	assert.Equal(t, 4, resp.Types[0].Score)
	assert.Equal(t, "予測・最適化", resp.Types[7].Type)
	assert.Empty(t, resp.Types[7].Reasons)

	assert.Equal(t, 12, resp.Difficulty.Score)
	assert.Equal(t, scoring.DifficultyMedium, resp.Difficulty.Level)
	assert.Equal(t, 10, resp.Risk.Score)
	assert.Equal(t, scoring.RiskLow, resp.Risk.Level)
}

func TestDiagnose_InvalidInputStillScores(t *testing.T) {
	rr := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/diagnose",
		map[string]any{"answers": map[string]any{"Q3": []string{"D"}}})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp diagnoseResp
	decodeJSON(t, rr, &resp)

	assert.False(t, resp.Valid)
	assert.Len(t, resp.Errors, 24)
	assert.Equal(t, "社内ナレッジ検索", resp.TopTypes[0])
}

func TestDiagnose_ClampMultiSelect(t *testing.T) {
	s := complete()
	s["Q3"] = answer.Multi("A", "B", "D") // D is the third pick

	topFor := func(clamp bool) string {
		h := newTestServer(t, nil, func(c *api.Config) { c.ClampMultiSelect = clamp })
		rr := doRequest(t, h, http.MethodPost, "/api/diagnose", map[string]any{"answers": s})
		require.Equal(t, http.StatusOK, rr.Code)
		var resp diagnoseResp
		decodeJSON(t, rr, &resp)
		return resp.TopTypes[0]
	}

	assert.Equal(t, "ワークフロー電子化", topFor(true))
	assert.Equal(t, "社内ナレッジ検索", topFor(false))
}

// ─── POST /api/documents/{kind} ───────────────────────────────────────────────

func TestGenerateDocument_OnePager(t *testing.T) {
	rr := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/documents/onepager",
		map[string]any{"answers": scenario(), "date": "2024-05-01"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, "text/markdown; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="onepager.md"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(body, "# 1枚サマリー（案件化診断）\n- 作成日: 2024-05-01\n"))
	assert.Contains(t, body, "1. **システム連携** — ")
}

func TestGenerateDocument_PrimaryOverride(t *testing.T) {
	rr := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/documents/job_post",
		map[string]any{"answers": scenario(), "primary_type": "予測・最適化", "date": "2024-05-01"})
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, `attachment; filename="job_post.md"`, rr.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "# 募集票（マッチング用）: 予測・最適化\n"))
}

func TestGenerateDocument_InvalidAnswersYieldErrorDocument(t *testing.T) {
	s := scenario()
	delete(s, "Q25")

	rr := doRequest(t, newTestServer(t, nil), http.MethodPost, "/api/documents/sow",
		map[string]any{"answers": s})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# 入力エラー\n\n- 未回答: Q25", rr.Body.String())
}

func TestGenerateDocument_RequestErrors(t *testing.T) {
	h := newTestServer(t, nil)
	tests := []struct {
		name string
		path string
		body map[string]any
		want int
	}{
		{"unknown kind", "/api/documents/pdf", map[string]any{"answers": scenario()}, http.StatusNotFound},
		{"unknown primary", "/api/documents/sow", map[string]any{"answers": scenario(), "primary_type": "宇宙"}, http.StatusBadRequest},
		{"bad date", "/api/documents/sow", map[string]any{"answers": scenario(), "date": "01/05/2024"}, http.StatusBadRequest},
		{"unknown field", "/api/documents/sow", map[string]any{"answers": scenario(), "format": "pdf"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestGenerateDocument_CachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := newTestServer(t, cache.NewRedis(client))
	body := map[string]any{"answers": scenario(), "date": "2024-05-01"}

	first := doRequest(t, h, http.MethodPost, "/api/documents/sow", body)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Len(t, mr.Keys(), 1)

	second := doRequest(t, h, http.MethodPost, "/api/documents/sow", body)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	// A different kind is a different key.
	third := doRequest(t, h, http.MethodPost, "/api/documents/onepager", body)
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
}

func TestGenerateDocument_CacheDownStillRenders(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	h := newTestServer(t, cache.NewRedis(client))
	rr := doRequest(t, h, http.MethodPost, "/api/documents/onepager",
		map[string]any{"answers": scenario(), "date": "2024-05-01"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "# 1枚サマリー"))
}

func TestGenerateDocument_ConcurrentIdenticalRequests(t *testing.T) {
	h := newTestServer(t, nil)
	body := map[string]any{"answers": scenario(), "date": "2024-05-01"}

	const n = 8
	bodies := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := doRequest(t, h, http.MethodPost, "/api/documents/sow", body)
			if rr.Code == http.StatusOK {
				bodies[i] = rr.Body.String()
			}
		}()
	}
	wg.Wait()

	for i := range n {
		assert.NotEmpty(t, bodies[i])
		assert.Equal(t, bodies[0], bodies[i])
	}
}
