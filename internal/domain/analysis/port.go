package analysis

import (
	"context"
)

// Cache port. Get returns (nil, nil) on miss or lazy-expired entry; the
// caller decides whether errors are fatal (they are not: cache failure
// degrades to re-inference).
type Cache interface {
	Get(ctx context.Context, fingerprint string, typ AnalysisType) (*CacheEntry, error)
	Put(ctx context.Context, entry *CacheEntry) error
}

// InteractionRepository port (interface untuk persistence)
type InteractionRepository interface {
	Save(ctx context.Context, it *Interaction) error
	Paginate(ctx context.Context, subjectID string, page, pageSize int) ([]*Interaction, error)
	Summary(ctx context.Context, subjectID string, sinceDays int) (map[string]int, error)
}

// FailureRepository port
type FailureRepository interface {
	Save(ctx context.Context, f *Failure) error
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]*Failure, error)
}

// InferenceClient abstracts the remote model. Implementations must return
// *MalformedResponseError for schema violations and *InferenceError for
// transport-level failures so the retry policy can tell them apart.
type InferenceClient interface {
	ClassifyText(ctx context.Context, text string, prior []EmotionSummary) (*TextAnalysis, error)
	AnalyzeImage(ctx context.Context, image []byte, textContext string) (*ImageAnalysis, error)
	AnalyzeTranscript(ctx context.Context, transcript string, meta map[string]string) (*VoiceAnalysis, error)
}

// Transcriber turns raw audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// MediaStore port (penyimpanan attachment image/audio)
type MediaStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
