package httpserver

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appanalysis "github.com/maumlog/emotion-engine/internal/application/analysis"
	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
	"github.com/maumlog/emotion-engine/internal/middleware"
)

type Router struct {
	svc *appanalysis.Service
	log *zap.Logger
}

func NewRouter(svc *appanalysis.Service, log *zap.Logger) http.Handler {
	r := &Router{svc: svc, log: log}
	mux := chi.NewRouter()

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/interactions", r.wrap(r.handleInteractions))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Get("/failures", r.wrap(r.handleFailures))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var vErr *domain.ValidationError
			if errors.As(err, &vErr) {
				http.Error(w, vErr.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, domain.ErrQuotaExceeded) {
				http.Error(w, "inference quota exceeded", http.StatusTooManyRequests)
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			r.log.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

type analyzeBody struct {
	Content         string                  `json:"content"`
	Image           string                  `json:"image"` // base64
	Audio           string                  `json:"audio"` // base64
	AudioMetadata   map[string]string       `json:"audio_metadata"`
	AnalysisType    string                  `json:"analysis_type"`
	PreviousContext []domain.EmotionSummary `json:"previous_context"`
}

// POST /v1/analyze
// Subject comes from the API key, never from the body. A safety trip is a
// 200 with the crisis payload, not an error.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	subject := middleware.GetSubjectFromContext(req.Context())
	if err := middleware.ValidateSubjectID(subject); err != nil {
		return &domain.ValidationError{Field: "subjectId", Reason: err.Error()}
	}

	var body analyzeBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	if body.AnalysisType == "" {
		body.AnalysisType = string(domain.TypeText)
	}
	if err := middleware.ValidateAnalysisType(body.AnalysisType); err != nil {
		return &domain.ValidationError{Field: "analysisType", Reason: err.Error()}
	}
	if err := middleware.ValidateContentLength(body.Content); err != nil {
		return &domain.ValidationError{Field: "content", Reason: err.Error()}
	}

	image, err := decodeMedia(body.Image, "image")
	if err != nil {
		return err
	}
	audio, err := decodeMedia(body.Audio, "audio")
	if err != nil {
		return err
	}

	ar := &domain.AnalysisRequest{
		SubjectID:       subject,
		Type:            domain.AnalysisType(body.AnalysisType),
		Content:         middleware.SanitizeString(body.Content),
		Image:           image,
		Audio:           audio,
		AudioMetadata:   body.AudioMetadata,
		PreviousContext: body.PreviousContext,
	}

	result, err := r.svc.Analyze(req.Context(), ar)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Safety != nil {
		middleware.IncrementSafetyTrips()
		return json.NewEncoder(w).Encode(result.Safety)
	}
	middleware.IncrementAnalyses()
	if result.Analysis.Cached {
		middleware.IncrementCached()
	}
	if result.Analysis.Degraded {
		middleware.IncrementDegraded()
	}
	return json.NewEncoder(w).Encode(result.Analysis)
}

// GET /v1/interactions?page=&page_size=
func (r *Router) handleInteractions(w http.ResponseWriter, req *http.Request) error {
	subject := middleware.GetSubjectFromContext(req.Context())
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	size = middleware.ValidateLimit(size)

	list, err := r.svc.ListInteractions(req.Context(), subject, page, size)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	subject := middleware.GetSubjectFromContext(req.Context())
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	days = middleware.ValidateDays(days)

	summary, err := r.svc.Summary(req.Context(), subject, days)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// GET /v1/failures?limit=20
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	subject := middleware.GetSubjectFromContext(req.Context())
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.svc.ListFailures(req.Context(), subject, limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Failure{}
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

func decodeMedia(encoded, field string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Reason: "invalid base64"}
	}
	if err := middleware.ValidateMediaSize(data, field); err != nil {
		return nil, &domain.ValidationError{Field: field, Reason: err.Error()}
	}
	return data, nil
}
