package analysis

import (
	"context"
	"fmt"
	"math"

	domain "github.com/maumlog/emotion-engine/internal/domain/analysis"
)

const keywordAgreementThreshold = 0.5

type textOutcome struct {
	result   *domain.ModalityResult
	model    *domain.TextAnalysis // nil when degraded to keyword-only
	degraded bool
}

type imageOutcome struct {
	result   *domain.ModalityResult
	mediaURL string
}

type voiceOutcome struct {
	result     *domain.ModalityResult
	transcript string
	mediaURL   string
}

// analyzeText combines the keyword scorer with the remote classifier.
// The model's label always wins on disagreement; keyword scoring only
// corroborates. On inference failure the keyword result carries the
// modality alone, flagged as degraded.
func (s *Service) analyzeText(ctx context.Context, req *domain.AnalysisRequest, interactionID string, prior []domain.EmotionSummary) *textOutcome {
	kw := s.Keywords.Score(req.Content)

	var model *domain.TextAnalysis
	err := s.withRetry(ctx, func() error {
		var cerr error
		model, cerr = s.Inference.ClassifyText(ctx, req.Content, prior)
		return cerr
	})
	if err != nil {
		s.recordFailure(ctx, req.SubjectID, interactionID, "inference", err)
		return &textOutcome{result: s.keywordOnlyResult(kw.Label, kw.Confidence), degraded: true}
	}
	if len(model.Scores) == 0 {
		// breached port contract; degrade rather than trust it
		s.recordFailure(ctx, req.SubjectID, interactionID, "inference",
			&domain.MalformedResponseError{Reason: "no emotion scores"})
		return &textOutcome{result: s.keywordOnlyResult(kw.Label, kw.Confidence), degraded: true}
	}

	scores := make([]domain.EmotionScore, len(model.Scores))
	copy(scores, model.Scores)

	// corroboration boost: confident keyword agreement on the coarse label
	// adds +0.1 to the model's top confidence, capped at 1.0
	top := topIndex(scores)
	if kw.Confidence > keywordAgreementThreshold &&
		s.Taxonomy.ToCoarse(kw.Label) == s.Taxonomy.ToCoarse(scores[top].Label) {
		scores[top].Confidence = math.Min(scores[top].Confidence+0.1, 1.0)
	}

	return &textOutcome{
		result: &domain.ModalityResult{
			Modality:    domain.ModalityText,
			Scores:      scores,
			RawInsights: model.Insights,
		},
		model: model,
	}
}

func (s *Service) keywordOnlyResult(label string, confidence float64) *domain.ModalityResult {
	conf := confidence * degradedConfidenceFactor
	return &domain.ModalityResult{
		Modality: domain.ModalityText,
		Scores: []domain.EmotionScore{{
			Label:      label,
			Intensity:  int(math.Round(confidence * 100)),
			Confidence: conf,
		}},
	}
}

// analyzeImage stores the attachment and runs the vision classifier.
// Any failure degrades to a nil result rather than aborting the request.
func (s *Service) analyzeImage(ctx context.Context, req *domain.AnalysisRequest, interactionID string) *imageOutcome {
	out := &imageOutcome{}
	out.mediaURL = s.storeMedia(ctx, req, interactionID, "image.jpg", req.Image, "image/jpeg")

	var ia *domain.ImageAnalysis
	err := s.withRetry(ctx, func() error {
		var cerr error
		ia, cerr = s.Inference.AnalyzeImage(ctx, req.Image, req.Content)
		return cerr
	})
	if err != nil {
		s.recordFailure(ctx, req.SubjectID, interactionID, "vision", err)
		return out
	}

	insights := ia.Insights
	if ia.Composition != "" {
		insights = fmt.Sprintf("%s (구도: %s)", insights, ia.Composition)
	}
	out.result = &domain.ModalityResult{
		Modality:    domain.ModalityImage,
		Scores:      ia.Scores,
		RawInsights: insights,
	}
	return out
}

// analyzeVoice transcribes the audio, then scores the transcript. Either
// step failing degrades the modality to nil.
func (s *Service) analyzeVoice(ctx context.Context, req *domain.AnalysisRequest, interactionID string) *voiceOutcome {
	out := &voiceOutcome{}
	out.mediaURL = s.storeMedia(ctx, req, interactionID, "audio.webm", req.Audio, "audio/webm")

	var transcript string
	err := s.withRetry(ctx, func() error {
		var terr error
		transcript, terr = s.Transcriber.Transcribe(ctx, req.Audio)
		return terr
	})
	if err != nil {
		s.recordFailure(ctx, req.SubjectID, interactionID, "transcribe", err)
		return out
	}
	out.transcript = transcript

	var va *domain.VoiceAnalysis
	err = s.withRetry(ctx, func() error {
		var cerr error
		va, cerr = s.Inference.AnalyzeTranscript(ctx, transcript, req.AudioMetadata)
		return cerr
	})
	if err != nil {
		s.recordFailure(ctx, req.SubjectID, interactionID, "inference", err)
		return out
	}

	insights := va.Insights
	if va.Tone != "" || va.Pace != "" {
		insights = fmt.Sprintf("%s (톤: %s, 속도: %s)", insights, va.Tone, va.Pace)
	}
	out.result = &domain.ModalityResult{
		Modality:    domain.ModalityVoice,
		Scores:      va.Scores,
		RawInsights: insights,
	}
	return out
}

// storeMedia uploads the attachment; upload failures never fail analysis.
func (s *Service) storeMedia(ctx context.Context, req *domain.AnalysisRequest, interactionID, name string, data []byte, contentType string) string {
	if s.Media == nil || len(data) == 0 {
		return ""
	}
	key := fmt.Sprintf("%s/%s/%s", req.SubjectID, interactionID, name)
	url, err := s.Media.Upload(ctx, key, data, contentType)
	if err != nil {
		s.recordFailure(ctx, req.SubjectID, interactionID, "media", err)
		return ""
	}
	return url
}

func topIndex(scores []domain.EmotionScore) int {
	best := 0
	for i, sc := range scores {
		if sc.Confidence > scores[best].Confidence {
			best = i
		}
	}
	return best
}
