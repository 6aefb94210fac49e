// Package analysis wires the safety gate, the classifiers, the cache and
// the fusion engine into the request pipeline.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/maumlog/emotion-engine/internal/application"
	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
	"github.com/maumlog/emotion-engine/internal/domain/emotion"
	"github.com/maumlog/emotion-engine/internal/domain/safety"
)

const (
	defaultCacheTTL     = 24 * time.Hour
	defaultRetryBackoff = 500 * time.Millisecond

	// keyword-only fallback confidence is reduced: the scorer is
	// corroborating evidence, not a substitute classifier
	degradedConfidenceFactor = 0.5

	priorContextLimit = 5
)

// Service implements the classification use-cases.
// Stateless per request; safe for concurrent use.
type Service struct {
	Gate         *safety.Gate
	Keywords     *emotion.Classifier
	Taxonomy     *emotion.Taxonomy
	Fusion       *domain.FusionEngine
	Cache        domain.Cache
	Inference    domain.InferenceClient
	Transcriber  domain.Transcriber
	Media        domain.MediaStore // optional
	Interactions domain.InteractionRepository
	Failures     domain.FailureRepository // optional
	Clock        application.Clock
	Log          *zap.Logger

	ModelVersion string
	CacheTTL     time.Duration
	RetryBackoff time.Duration
}

// Response is the user-visible classification result.
type Response struct {
	Emotions           []domain.FusedScore `json:"emotions"`
	OverallMoodScore   int                 `json:"overallMoodScore"`
	Keywords           []string            `json:"keywords"`
	Insights           string              `json:"insights"`
	Consistency        float64             `json:"consistency"`
	ConflictingSignals []string            `json:"conflictingSignals,omitempty"`
	DominantModality   string              `json:"dominantModality,omitempty"`
	Transcript         string              `json:"transcript,omitempty"`
	Degraded           bool                `json:"degraded,omitempty"`
	Cached             bool                `json:"cached"`
	ProcessingTimeMs   int64               `json:"processingTimeMs"`
}

// Result is either a normal classification or the crisis payload.
type Result struct {
	Safety   *safety.CrisisResponse `json:"safety,omitempty"`
	Analysis *Response              `json:"analysis,omitempty"`
}

// Analyze runs the pipeline: safety gate → cache lookup → concurrent
// per-modality analysis → fusion → cache write.
func (s *Service) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*Result, error) {
	start := s.Clock.Now()

	if err := validate(req); err != nil {
		return nil, err
	}

	// mandatory first gate; never cached, never skipped
	if req.HasText() {
		verdict := s.Gate.Assess(safety.ExtractCheckable(req.Content))
		if verdict.Dangerous {
			s.Log.Warn("safety gate tripped",
				zap.String("subject", req.SubjectID),
				zap.String("pattern", verdict.MatchedPattern))
			s.record(ctx, &domain.Interaction{
				ID:              domain.InteractionID(uuid.New().String()),
				SubjectID:       req.SubjectID,
				AnalysisType:    req.Type,
				SafetyTripped:   true,
				MatchedCategory: verdict.MatchedPattern,
				ProcessingMS:    s.Clock.Now().Sub(start).Milliseconds(),
				CreatedAt:       start,
			})
			return &Result{Safety: safety.NewCrisisResponse()}, nil
		}
	}

	fingerprint := domain.Fingerprint(req)

	// cheap short-circuit before any fan-out; a failed read is a miss
	if resp := s.cacheLookup(ctx, fingerprint, req.Type); resp != nil {
		resp.Cached = true
		resp.ProcessingTimeMs = s.Clock.Now().Sub(start).Milliseconds()
		s.record(ctx, s.interaction(req, resp, start, ""))
		return &Result{Analysis: resp}, nil
	}

	// the request stays untouched; prior context travels as a local
	prior := req.PreviousContext
	if len(prior) == 0 {
		prior = s.priorContext(ctx, req.SubjectID)
	}

	interactionID := uuid.New().String()
	resp, mediaURL := s.classify(ctx, req, interactionID, prior)
	resp.ProcessingTimeMs = s.Clock.Now().Sub(start).Milliseconds()

	if !resp.Degraded {
		s.cacheStore(ctx, fingerprint, req, resp)
	}

	it := s.interaction(req, resp, start, mediaURL)
	it.ID = domain.InteractionID(interactionID)
	s.record(ctx, it)

	return &Result{Analysis: resp}, nil
}

// classify fans out the modality analyzers concurrently and joins on all of
// them; a failed modality yields nil rather than blocking the others.
func (s *Service) classify(ctx context.Context, req *domain.AnalysisRequest, interactionID string, prior []domain.EmotionSummary) (*Response, string) {
	modalities := req.Modalities()

	var (
		results  = make([]*domain.ModalityResult, len(modalities))
		text     *textOutcome
		voice    *voiceOutcome
		image    *imageOutcome
		mediaURL string
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range modalities {
		i, m := i, m
		switch m {
		case domain.ModalityText:
			g.Go(func() error {
				text = s.analyzeText(gctx, req, interactionID, prior)
				results[i] = text.result
				return nil
			})
		case domain.ModalityImage:
			g.Go(func() error {
				image = s.analyzeImage(gctx, req, interactionID)
				results[i] = image.result
				return nil
			})
		case domain.ModalityVoice:
			g.Go(func() error {
				voice = s.analyzeVoice(gctx, req, interactionID)
				results[i] = voice.result
				return nil
			})
		}
	}
	_ = g.Wait() // analyzers never return errors, they degrade

	if image != nil && image.mediaURL != "" {
		mediaURL = image.mediaURL
	} else if voice != nil && voice.mediaURL != "" {
		mediaURL = voice.mediaURL
	}

	produced := make([]*domain.ModalityResult, 0, len(results))
	for _, r := range results {
		if r != nil && len(r.Scores) > 0 {
			produced = append(produced, r)
		}
	}

	resp := s.compose(produced, text, voice)
	return resp, mediaURL
}

// compose builds the response: neutral default on total failure, lone result
// passed through unchanged, fusion for two or more modalities.
func (s *Service) compose(produced []*domain.ModalityResult, text *textOutcome, voice *voiceOutcome) *Response {
	resp := &Response{Keywords: []string{}, Consistency: 1.0}

	switch len(produced) {
	case 0:
		// classification never hard-fails when content was present
		resp.Emotions = []domain.FusedScore{{
			EmotionScore: domain.EmotionScore{Label: emotion.NeutralLabel, Intensity: 0, Confidence: 0},
		}}
		resp.Degraded = true
	case 1:
		lone := produced[0]
		resp.Emotions = make([]domain.FusedScore, 0, len(lone.Scores))
		for _, sc := range lone.Scores {
			resp.Emotions = append(resp.Emotions, domain.FusedScore{
				EmotionScore: sc,
				Sources:      []domain.Modality{lone.Modality},
			})
		}
		resp.DominantModality = string(lone.Modality)
	default:
		fr := s.Fusion.Fuse(produced)
		resp.Emotions = fr.FinalScores
		resp.Consistency = fr.Consistency
		resp.ConflictingSignals = fr.ConflictingSignals
		resp.DominantModality = string(fr.DominantModality)
	}

	if text != nil {
		resp.Degraded = resp.Degraded || text.degraded
		if text.model != nil {
			resp.OverallMoodScore = text.model.MoodScore
			resp.Keywords = text.model.Keywords
			resp.Insights = text.model.Insights
		}
	}
	if resp.Insights == "" {
		for _, r := range produced {
			if r.RawInsights != "" {
				resp.Insights = r.RawInsights
				break
			}
		}
	}
	if voice != nil {
		resp.Transcript = voice.transcript
	}

	// deterministic mood fallback when the model result is absent
	if (text == nil || text.model == nil) && len(resp.Emotions) > 0 {
		top := resp.Emotions[0]
		coarse := s.Taxonomy.ToCoarse(top.Label)
		resp.OverallMoodScore = emotion.MoodScore(coarse, top.Confidence)
	}

	return resp
}

func (s *Service) cacheLookup(ctx context.Context, fingerprint string, typ domain.AnalysisType) *Response {
	entry, err := s.Cache.Get(ctx, fingerprint, typ)
	if err != nil {
		s.Log.Warn("cache read failed, treating as miss", zap.Error(err))
		return nil
	}
	if entry == nil {
		return nil
	}
	var resp Response
	if err := json.Unmarshal(entry.OutputData, &resp); err != nil {
		s.Log.Warn("cache entry undecodable, treating as miss", zap.Error(err))
		return nil
	}
	return &resp
}

// cacheStore upserts the result; write failures are logged and swallowed.
// Wall-clock fields are zeroed so identical inputs stay byte-identical.
func (s *Service) cacheStore(ctx context.Context, fingerprint string, req *domain.AnalysisRequest, resp *Response) {
	stored := *resp
	stored.Cached = false
	stored.ProcessingTimeMs = 0
	out, err := json.Marshal(&stored)
	if err != nil {
		s.Log.Warn("cache encode failed", zap.Error(err))
		return
	}

	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	now := s.Clock.Now()
	var conf float64
	if len(resp.Emotions) > 0 {
		conf = resp.Emotions[0].Confidence
	}
	entry := &domain.CacheEntry{
		Fingerprint:  fingerprint,
		AnalysisType: req.Type,
		InputData:    req.Content,
		OutputData:   out,
		ModelVersion: s.ModelVersion,
		Confidence:   conf,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	if err := s.Cache.Put(ctx, entry); err != nil {
		s.Log.Warn("cache write failed", zap.Error(err))
	}
}

func (s *Service) priorContext(ctx context.Context, subject string) []domain.EmotionSummary {
	recent, err := s.Interactions.Paginate(ctx, subject, 1, priorContextLimit)
	if err != nil {
		return nil
	}
	out := make([]domain.EmotionSummary, 0, len(recent))
	for _, it := range recent {
		if it.SafetyTripped || it.PrimaryEmotion == "" {
			continue
		}
		out = append(out, domain.EmotionSummary{Label: it.PrimaryEmotion, MoodScore: it.MoodScore})
	}
	return out
}

func (s *Service) interaction(req *domain.AnalysisRequest, resp *Response, start time.Time, mediaURL string) *domain.Interaction {
	it := &domain.Interaction{
		ID:           domain.InteractionID(uuid.New().String()),
		SubjectID:    req.SubjectID,
		AnalysisType: req.Type,
		MoodScore:    resp.OverallMoodScore,
		Cached:       resp.Cached,
		Degraded:     resp.Degraded,
		MediaURL:     mediaURL,
		ProcessingMS: resp.ProcessingTimeMs,
		CreatedAt:    start,
	}
	if len(resp.Emotions) > 0 {
		it.PrimaryEmotion = s.Taxonomy.ToCoarse(resp.Emotions[0].Label)
	}
	return it
}

// record persists the audit row; the audit trail is non-fatal.
func (s *Service) record(ctx context.Context, it *domain.Interaction) {
	if err := s.Interactions.Save(ctx, it); err != nil {
		s.Log.Warn("interaction save failed", zap.Error(err))
	}
}

func (s *Service) recordFailure(ctx context.Context, subject, interactionID, phase string, err error) {
	s.Log.Warn("modality degraded",
		zap.String("phase", phase),
		zap.String("subject", subject),
		zap.Error(err))
	if s.Failures == nil {
		return
	}
	f := &domain.Failure{
		SubjectID:     subject,
		InteractionID: interactionID,
		Phase:         phase,
		Message:       err.Error(),
		CreatedAt:     s.Clock.Now(),
	}
	if serr := s.Failures.Save(ctx, f); serr != nil {
		s.Log.Warn("failure save failed", zap.Error(serr))
	}
}

// Interactions lists the audit records for a subject.
func (s *Service) ListInteractions(ctx context.Context, subject string, page, pageSize int) ([]*domain.Interaction, error) {
	return s.Interactions.Paginate(ctx, subject, page, pageSize)
}

// Summary aggregates recent interactions per coarse label.
func (s *Service) Summary(ctx context.Context, subject string, sinceDays int) (map[string]int, error) {
	return s.Interactions.Summary(ctx, subject, sinceDays)
}

// ListFailures lists degraded-phase records for a subject.
func (s *Service) ListFailures(ctx context.Context, subject string, limit int) ([]*domain.Failure, error) {
	if s.Failures == nil {
		return nil, nil
	}
	return s.Failures.ListBySubject(ctx, subject, limit)
}

func validate(req *domain.AnalysisRequest) error {
	if req.SubjectID == "" {
		return &domain.ValidationError{Field: "subjectId", Reason: "required"}
	}
	switch req.Type {
	case domain.TypeText, domain.TypeImage, domain.TypeVoice, domain.TypeMultimodal:
	default:
		return &domain.ValidationError{Field: "analysisType", Reason: "must be text, image, voice or multimodal"}
	}
	if len(req.Modalities()) == 0 {
		return &domain.ValidationError{Field: "content", Reason: "no content for requested analysis type"}
	}
	return nil
}

// withRetry runs fn and retries exactly once with backoff on transient
// inference errors. Malformed responses are never retried.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	var infErr *domain.InferenceError
	if !errors.As(err, &infErr) {
		return err
	}
	backoff := s.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	select {
	case <-ctx.Done():
		return err
	case <-time.After(backoff):
	}
	return fn()
}
