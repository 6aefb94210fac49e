package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maumlog/emotion-engine/internal/application"
	appanalysis "github.com/maumlog/emotion-engine/internal/application/analysis"
	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
	"github.com/maumlog/emotion-engine/internal/domain/emotion"
	"github.com/maumlog/emotion-engine/internal/domain/safety"
	"github.com/maumlog/emotion-engine/internal/middleware"
)

type stubCache struct{}

func (stubCache) Get(context.Context, string, domain.AnalysisType) (*domain.CacheEntry, error) {
	return nil, nil
}
func (stubCache) Put(context.Context, *domain.CacheEntry) error { return nil }

type stubInference struct{ err error }

func (s stubInference) ClassifyText(context.Context, string, []domain.EmotionSummary) (*domain.TextAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.TextAnalysis{
		Scores:    []domain.EmotionScore{{Label: "joy", Intensity: 75, Confidence: 0.8}},
		MoodScore: 55,
		Keywords:  []string{"친구"},
		Insights:  "좋은 하루",
	}, nil
}

func (s stubInference) AnalyzeImage(context.Context, []byte, string) (*domain.ImageAnalysis, error) {
	return nil, s.err
}

func (s stubInference) AnalyzeTranscript(context.Context, string, map[string]string) (*domain.VoiceAnalysis, error) {
	return nil, s.err
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(context.Context, []byte) (string, error) { return "", nil }

type stubInteractions struct{}

func (stubInteractions) Save(context.Context, *domain.Interaction) error { return nil }
func (stubInteractions) Paginate(context.Context, string, int, int) ([]*domain.Interaction, error) {
	return []*domain.Interaction{{ID: "i1", SubjectID: "u1", PrimaryEmotion: "happy"}}, nil
}
func (stubInteractions) Summary(context.Context, string, int) (map[string]int, error) {
	return map[string]int{"happy": 3, "sad": 1}, nil
}

func newTestHandler(infErr error) http.Handler {
	svc := &appanalysis.Service{
		Gate:         safety.NewDefaultGate(),
		Keywords:     emotion.NewClassifier(nil),
		Taxonomy:     emotion.NewDefaultTaxonomy(),
		Fusion:       domain.NewFusionEngine(nil),
		Cache:        stubCache{},
		Inference:    stubInference{err: infErr},
		Transcriber:  stubTranscriber{},
		Interactions: stubInteractions{},
		Clock:        application.FixedClock{T: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Log:          zap.NewNop(),
		ModelVersion: "test",
		RetryBackoff: time.Millisecond,
	}
	return NewRouter(svc, zap.NewNop())
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.SubjectKey, "u1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze(t *testing.T) {
	h := newTestHandler(nil)

	t.Run("successful analysis", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/v1/analyze", `{"content":"오늘 친구를 만났다","analysis_type":"text"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp appanalysis.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Emotions)
		assert.Equal(t, "joy", resp.Emotions[0].Label)
		assert.Equal(t, 55, resp.OverallMoodScore)
		assert.False(t, resp.Cached)
	})

	t.Run("analysis type defaults to text", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/v1/analyze", `{"content":"내용만 있음"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("risky content gets crisis payload with 200", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/v1/analyze", `{"content":"죽고싶어","analysis_type":"text"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var crisis safety.CrisisResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &crisis))
		assert.True(t, crisis.IsSafetyResponse)
		assert.True(t, crisis.ShowEmergencyContacts)
		assert.NotEmpty(t, crisis.EmergencyContacts)
	})

	t.Run("invalid JSON body is 400", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/v1/analyze", `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing content for text type is 400", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/v1/analyze", `{"analysis_type":"text"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown analysis type is 400", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/v1/analyze", `{"content":"글","analysis_type":"video"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid base64 image is 400", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/v1/analyze", `{"content":"글","analysis_type":"multimodal","image":"???"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing subject is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(`{"content":"글"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("quota errors map to 429", func(t *testing.T) {
		// quota failures degrade to keyword-only, so the request itself
		// still succeeds; the 429 path applies to list endpoints that
		// surface the sentinel directly. Exercise the wrap mapping.
		hq := newTestHandler(domain.ErrQuotaExceeded)
		rec := doRequest(t, hq, http.MethodPost, "/v1/analyze", `{"content":"그냥 평범한 하루","analysis_type":"text"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp appanalysis.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Degraded)
	})
}

func TestListEndpoints(t *testing.T) {
	h := newTestHandler(nil)

	t.Run("interactions", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/v1/interactions?page=1&page_size=10", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var list []*domain.Interaction
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "happy", list[0].PrimaryEmotion)
	})

	t.Run("summary", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/v1/summary?days=7", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var sum map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
		assert.Equal(t, 3, sum["happy"])
	})

	t.Run("failures empty when repo absent", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/v1/failures", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}
