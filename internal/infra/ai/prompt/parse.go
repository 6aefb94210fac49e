package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maumlog/emotion-engine/internal/domain/analysis"
)

// AllowedSet builds the label enum used to validate model output.
func AllowedSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

func malformed(reason, raw string) error {
	return &analysis.MalformedResponseError{Reason: reason, Raw: raw}
}

// validateScores enforces the shared score schema: non-empty, enum labels,
// intensity 0-100, confidence 0.0-1.0. Never coerces; any violation is a
// MalformedResponseError. Scores beyond the per-analysis cap are dropped.
func validateScores(field string, scores []analysis.EmotionScore, allowed map[string]bool, raw string) ([]analysis.EmotionScore, error) {
	if len(scores) == 0 {
		return nil, malformed(field+" missing or empty", raw)
	}
	for _, s := range scores {
		label := strings.TrimSpace(s.Label)
		if label == "" || !allowed[label] {
			return nil, malformed(fmt.Sprintf("%s label %q outside vocabulary", field, s.Label), raw)
		}
		if s.Intensity < 0 || s.Intensity > 100 {
			return nil, malformed(fmt.Sprintf("%s intensity %d out of range", field, s.Intensity), raw)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return nil, malformed(fmt.Sprintf("%s confidence %v out of range", field, s.Confidence), raw)
		}
	}
	if len(scores) > analysis.MaxEmotionsPerAnalysis {
		scores = scores[:analysis.MaxEmotionsPerAnalysis]
	}
	return scores, nil
}

// ParseTextAnalysis validates the text-classifier reply.
func ParseTextAnalysis(raw string, allowed map[string]bool) (*analysis.TextAnalysis, error) {
	var out analysis.TextAnalysis
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, malformed("invalid JSON: "+err.Error(), raw)
	}
	scores, err := validateScores("emotions", out.Scores, allowed, raw)
	if err != nil {
		return nil, err
	}
	out.Scores = scores
	if out.MoodScore < -100 || out.MoodScore > 100 {
		return nil, malformed(fmt.Sprintf("overall_mood_score %d out of range", out.MoodScore), raw)
	}
	return &out, nil
}

// ParseImageAnalysis validates the vision reply.
func ParseImageAnalysis(raw string, allowed map[string]bool) (*analysis.ImageAnalysis, error) {
	var out analysis.ImageAnalysis
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, malformed("invalid JSON: "+err.Error(), raw)
	}
	scores, err := validateScores("visual_emotions", out.Scores, allowed, raw)
	if err != nil {
		return nil, err
	}
	out.Scores = scores
	if out.TextAlignment < 0 || out.TextAlignment > 1 {
		return nil, malformed(fmt.Sprintf("text_image_alignment %v out of range", out.TextAlignment), raw)
	}
	return &out, nil
}

// ParseVoiceAnalysis validates the transcript-classifier reply.
func ParseVoiceAnalysis(raw string, allowed map[string]bool) (*analysis.VoiceAnalysis, error) {
	var out analysis.VoiceAnalysis
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, malformed("invalid JSON: "+err.Error(), raw)
	}
	scores, err := validateScores("voice_emotions", out.Scores, allowed, raw)
	if err != nil {
		return nil, err
	}
	out.Scores = scores
	return &out, nil
}
