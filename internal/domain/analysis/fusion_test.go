package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(m Modality, scores ...EmotionScore) *ModalityResult {
	return &ModalityResult{Modality: m, Scores: scores}
}

func TestFuse(t *testing.T) {
	engine := NewFusionEngine(nil)

	t.Run("empty input yields empty result", func(t *testing.T) {
		fr := engine.Fuse(nil)
		assert.Empty(t, fr.FinalScores)
		assert.NotNil(t, fr.ConflictingSignals)
		assert.Empty(t, fr.ConflictingSignals)
	})

	t.Run("agreeing modalities give full consistency", func(t *testing.T) {
		fr := engine.Fuse([]*ModalityResult{
			result(ModalityText, EmotionScore{Label: "joy", Intensity: 80, Confidence: 0.9}),
			result(ModalityImage, EmotionScore{Label: "joy", Intensity: 70, Confidence: 0.8}),
		})
		require.NotEmpty(t, fr.FinalScores)
		assert.Equal(t, "joy", fr.FinalScores[0].Label)
		assert.Equal(t, 1.0, fr.Consistency)
		assert.Empty(t, fr.ConflictingSignals)
		assert.ElementsMatch(t, []Modality{ModalityText, ModalityImage}, fr.FinalScores[0].Sources)
	})

	t.Run("disagreement lowers consistency and lists the conflict", func(t *testing.T) {
		fr := engine.Fuse([]*ModalityResult{
			result(ModalityText, EmotionScore{Label: "joy", Intensity: 90, Confidence: 0.9}),
			result(ModalityVoice, EmotionScore{Label: "sadness", Intensity: 50, Confidence: 0.6}),
		})
		assert.Equal(t, 0.5, fr.Consistency)
		require.Len(t, fr.ConflictingSignals, 1)
		assert.Equal(t, "text:joy vs voice:sadness", fr.ConflictingSignals[0])
	})

	t.Run("weights renormalize over present modalities", func(t *testing.T) {
		// text alone: its 0.4 weight must not dilute intensity
		fr := engine.Fuse([]*ModalityResult{
			result(ModalityText, EmotionScore{Label: "anger", Intensity: 60, Confidence: 0.7}),
		})
		require.Len(t, fr.FinalScores, 1)
		assert.Equal(t, 60, fr.FinalScores[0].Intensity)
		assert.InDelta(t, 0.7, fr.FinalScores[0].Confidence, 1e-9)
		assert.Equal(t, ModalityText, fr.DominantModality)
	})

	t.Run("weighted intensity averages across modalities", func(t *testing.T) {
		// text 0.4 and image 0.3 renormalize to 4/7 and 3/7
		fr := engine.Fuse([]*ModalityResult{
			result(ModalityText, EmotionScore{Label: "joy", Intensity: 70, Confidence: 0.9}),
			result(ModalityImage, EmotionScore{Label: "joy", Intensity: 0, Confidence: 0.5}),
		})
		require.NotEmpty(t, fr.FinalScores)
		// (4/7*70 + 3/7*0) / 1 = 40
		assert.Equal(t, 40, fr.FinalScores[0].Intensity)
	})

	t.Run("final scores capped at three", func(t *testing.T) {
		fr := engine.Fuse([]*ModalityResult{
			result(ModalityText,
				EmotionScore{Label: "joy", Intensity: 90, Confidence: 0.9},
				EmotionScore{Label: "hope", Intensity: 60, Confidence: 0.7},
				EmotionScore{Label: "calm", Intensity: 40, Confidence: 0.5}),
			result(ModalityVoice,
				EmotionScore{Label: "sadness", Intensity: 30, Confidence: 0.4},
				EmotionScore{Label: "fear", Intensity: 20, Confidence: 0.3}),
		})
		assert.LessOrEqual(t, len(fr.FinalScores), MaxEmotionsPerAnalysis)
	})

	t.Run("tie prefers the label more modalities agree on", func(t *testing.T) {
		// joy appears in two modalities, anger in one, engineered so the
		// weighted sums are identical
		custom := NewFusionEngine(map[Modality]float64{
			ModalityText:  0.5,
			ModalityVoice: 0.5,
		})
		fr := custom.Fuse([]*ModalityResult{
			result(ModalityText,
				EmotionScore{Label: "joy", Intensity: 40, Confidence: 0.5},
				EmotionScore{Label: "anger", Intensity: 80, Confidence: 0.9}),
			result(ModalityVoice,
				EmotionScore{Label: "joy", Intensity: 40, Confidence: 0.5}),
		})
		require.NotEmpty(t, fr.FinalScores)
		// joy: 0.5*40 + 0.5*40 = 40, anger: 0.5*80 = 40
		assert.Equal(t, "joy", fr.FinalScores[0].Label)
	})

	t.Run("dominant modality is the most confident agreeing one", func(t *testing.T) {
		fr := engine.Fuse([]*ModalityResult{
			result(ModalityText, EmotionScore{Label: "joy", Intensity: 80, Confidence: 0.7}),
			result(ModalityImage, EmotionScore{Label: "joy", Intensity: 80, Confidence: 0.95}),
		})
		assert.Equal(t, ModalityImage, fr.DominantModality)
	})

	t.Run("nil and empty results skipped", func(t *testing.T) {
		fr := engine.Fuse([]*ModalityResult{
			nil,
			result(ModalityImage),
			result(ModalityText, EmotionScore{Label: "calm", Intensity: 30, Confidence: 0.6}),
		})
		require.Len(t, fr.FinalScores, 1)
		assert.Equal(t, "calm", fr.FinalScores[0].Label)
		assert.Equal(t, 1.0, fr.Consistency)
	})
}

func TestFingerprint(t *testing.T) {
	base := &AnalysisRequest{SubjectID: "u1", Type: TypeText, Content: "오늘의 일기"}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Fingerprint(base), Fingerprint(base))
	})

	t.Run("subject changes the key", func(t *testing.T) {
		other := *base
		other.SubjectID = "u2"
		assert.NotEqual(t, Fingerprint(base), Fingerprint(&other))
	})

	t.Run("content changes the key", func(t *testing.T) {
		other := *base
		other.Content = "다른 일기"
		assert.NotEqual(t, Fingerprint(base), Fingerprint(&other))
	})

	t.Run("media bytes change the key", func(t *testing.T) {
		other := *base
		other.Image = []byte{1, 2, 3}
		assert.NotEqual(t, Fingerprint(base), Fingerprint(&other))
	})

	t.Run("bytes cannot shift across field boundaries", func(t *testing.T) {
		// same concatenated bytes, different field split; a collision here
		// would serve one subject another subject's cached analysis
		a := &AnalysisRequest{SubjectID: "a", Content: "foz"}
		b := &AnalysisRequest{SubjectID: "za", Content: "fo"}
		assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

		c := &AnalysisRequest{SubjectID: "u1", Content: "ab", Image: []byte("c")}
		d := &AnalysisRequest{SubjectID: "u1", Content: "a", Image: []byte("bc")}
		assert.NotEqual(t, Fingerprint(c), Fingerprint(d))
	})

	t.Run("empty fields still keyed distinctly", func(t *testing.T) {
		a := &AnalysisRequest{SubjectID: "u1", Content: ""}
		b := &AnalysisRequest{SubjectID: "", Content: "u1"}
		assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
	})
}

func TestRequestModalities(t *testing.T) {
	t.Run("multimodal uses whatever is present", func(t *testing.T) {
		req := &AnalysisRequest{Type: TypeMultimodal, Content: "글", Image: []byte{1}}
		assert.Equal(t, []Modality{ModalityText, ModalityImage}, req.Modalities())
	})

	t.Run("single type ignores other content", func(t *testing.T) {
		req := &AnalysisRequest{Type: TypeText, Content: "글", Image: []byte{1}}
		assert.Equal(t, []Modality{ModalityText}, req.Modalities())
	})

	t.Run("no matching content yields none", func(t *testing.T) {
		req := &AnalysisRequest{Type: TypeVoice, Content: "글"}
		assert.Empty(t, req.Modalities())
	})
}
