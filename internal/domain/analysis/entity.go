package analysis

import (
	"time"
)

// InteractionID identifier type
type InteractionID string

// Modality enum
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityVoice Modality = "voice"
)

// AnalysisType enum: what the caller asked for
type AnalysisType string

const (
	TypeText       AnalysisType = "text"
	TypeImage      AnalysisType = "image"
	TypeVoice      AnalysisType = "voice"
	TypeMultimodal AnalysisType = "multimodal"
)

// MaxEmotionsPerAnalysis caps how many emotion scores one analysis may carry.
const MaxEmotionsPerAnalysis = 3

// EmotionScore value object
type EmotionScore struct {
	Label      string  `json:"label"`
	Intensity  int     `json:"intensity"`  // 0..100
	Confidence float64 `json:"confidence"` // 0.0..1.0
}

// FusedScore is an EmotionScore tagged with the modalities that contributed it.
type FusedScore struct {
	EmotionScore
	Sources []Modality `json:"sources"`
}

// ModalityResult is produced by exactly one analyzer and read-only afterward.
type ModalityResult struct {
	Modality    Modality       `json:"modality"`
	Scores      []EmotionScore `json:"scores"`
	RawInsights string         `json:"raw_insights,omitempty"`
}

// Top returns the highest-confidence score, or false when empty.
func (m *ModalityResult) Top() (EmotionScore, bool) {
	if m == nil || len(m.Scores) == 0 {
		return EmotionScore{}, false
	}
	best := m.Scores[0]
	for _, s := range m.Scores[1:] {
		if s.Confidence > best.Confidence {
			best = s
		}
	}
	return best, true
}

// FusionResult menggabungkan hasil per-modality jadi satu verdict.
// Derived value; never mutated after construction.
type FusionResult struct {
	FinalScores        []FusedScore `json:"final_scores"`
	Consistency        float64      `json:"consistency"` // 0.0..1.0
	ConflictingSignals []string     `json:"conflicting_signals"`
	DominantModality   Modality     `json:"dominant_modality"`
}

// EmotionSummary is a compact prior-analysis datapoint used for
// personalization context in prompts.
type EmotionSummary struct {
	Label     string `json:"label"`
	MoodScore int    `json:"mood_score"`
}

// AnalysisRequest is immutable once created and discarded after the response.
type AnalysisRequest struct {
	SubjectID       string
	Type            AnalysisType
	Content         string
	Image           []byte
	Audio           []byte
	AudioMetadata   map[string]string
	PreviousContext []EmotionSummary
}

// HasText reports whether text content is present.
func (r *AnalysisRequest) HasText() bool { return r.Content != "" }

// Modalities returns the modalities this request can actually exercise,
// intersected with what the analysis type asks for.
func (r *AnalysisRequest) Modalities() []Modality {
	var out []Modality
	wantAll := r.Type == TypeMultimodal
	if r.HasText() && (wantAll || r.Type == TypeText) {
		out = append(out, ModalityText)
	}
	if len(r.Image) > 0 && (wantAll || r.Type == TypeImage) {
		out = append(out, ModalityImage)
	}
	if len(r.Audio) > 0 && (wantAll || r.Type == TypeVoice) {
		out = append(out, ModalityVoice)
	}
	return out
}

// TextAnalysis is the parsed, schema-validated output of the text classifier.
type TextAnalysis struct {
	Scores    []EmotionScore `json:"emotions"`
	MoodScore int            `json:"overall_mood_score"` // -100..100
	Keywords  []string       `json:"keywords"`
	Insights  string         `json:"insights"`
	Advice    string         `json:"advice,omitempty"`
}

// ImageAnalysis is the parsed output of the vision classifier.
type ImageAnalysis struct {
	Scores         []EmotionScore `json:"visual_emotions"`
	DominantColors []string       `json:"dominant_colors"`
	Composition    string         `json:"composition"`
	TextAlignment  float64        `json:"text_image_alignment"` // 0.0..1.0
	Insights       string         `json:"insights"`
}

// VoiceAnalysis is the parsed output of the transcript classifier.
type VoiceAnalysis struct {
	Scores     []EmotionScore `json:"voice_emotions"`
	Tone       string         `json:"estimated_tone"`
	Pace       string         `json:"speech_pace"`
	Transcript string         `json:"transcript"`
	Insights   string         `json:"insights"`
}

// CacheEntry is one persisted classification output, keyed by
// (fingerprint, analysis type). One live row per pair; the write path
// enforces this via upsert, not insert.
type CacheEntry struct {
	Fingerprint  string       `json:"content_hash"`
	AnalysisType AnalysisType `json:"analysis_type"`
	InputData    string       `json:"input_data,omitempty"`
	OutputData   []byte       `json:"output_data"`
	ModelVersion string       `json:"model_used"`
	Confidence   float64      `json:"confidence_score"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// Interaction is the audit record of one pipeline run. Safety-tripped
// interactions never carry the submitted content, only the pattern category.
type Interaction struct {
	ID              InteractionID `json:"id"`
	SubjectID       string        `json:"subject_id"`
	AnalysisType    AnalysisType  `json:"analysis_type"`
	PrimaryEmotion  string        `json:"primary_emotion,omitempty"` // coarse label
	MoodScore       int           `json:"mood_score"`
	Cached          bool          `json:"cached"`
	Degraded        bool          `json:"degraded"`
	SafetyTripped   bool          `json:"safety_tripped"`
	MatchedCategory string        `json:"matched_category,omitempty"`
	MediaURL        string        `json:"media_url,omitempty"`
	ProcessingMS    int64         `json:"processing_ms"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Failure is a persisted record of a degraded pipeline phase.
type Failure struct {
	ID            int64     `json:"id"`
	SubjectID     string    `json:"subject_id"`
	InteractionID string    `json:"interaction_id"`
	Phase         string    `json:"phase"` // inference | transcribe | vision | media | cache
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}
