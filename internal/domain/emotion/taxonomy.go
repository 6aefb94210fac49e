// Package emotion holds the label taxonomy and the deterministic keyword
// scorer. Everything here is pure and never calls external services.
package emotion

// Coarse labels. Every fine label maps to exactly one of these.
const (
	CoarseHappy   = "happy"
	CoarseSad     = "sad"
	CoarseAngry   = "angry"
	CoarseAnxious = "anxious"
	CoarseNeutral = "neutral"
)

// Taxonomy maps fine-grained labels onto the coarse set. The mapping is
// total: unknown labels fall back to neutral.
type Taxonomy struct {
	fineToCoarse map[string]string
}

// NewTaxonomy copies the given mapping.
func NewTaxonomy(fineToCoarse map[string]string) *Taxonomy {
	m := make(map[string]string, len(fineToCoarse))
	for k, v := range fineToCoarse {
		m[k] = v
	}
	return &Taxonomy{fineToCoarse: m}
}

// NewDefaultTaxonomy builds the built-in 24-label mapping plus aliases the
// keyword scorer emits.
func NewDefaultTaxonomy() *Taxonomy {
	return NewTaxonomy(map[string]string{
		"joy":         CoarseHappy,
		"contentment": CoarseHappy,
		"gratitude":   CoarseHappy,
		"love":        CoarseHappy,
		"excitement":  CoarseHappy,
		"pride":       CoarseHappy,
		"hope":        CoarseHappy,
		"relief":      CoarseHappy,

		"sadness":        CoarseSad,
		"grief":          CoarseSad,
		"loneliness":     CoarseSad,
		"disappointment": CoarseSad,

		"anger":       CoarseAngry,
		"frustration": CoarseAngry,

		"anxiety": CoarseAnxious,
		"fear":    CoarseAnxious,
		"guilt":   CoarseAnxious,
		"shame":   CoarseAnxious,

		"calm":          CoarseNeutral,
		"contemplative": CoarseNeutral,
		"curious":       CoarseNeutral,
		"nostalgic":     CoarseNeutral,
		"confused":      CoarseNeutral,
		"indifferent":   CoarseNeutral,

		// Aliases from the keyword scorer vocabulary.
		"happy":    CoarseHappy,
		"sad":      CoarseSad,
		"angry":    CoarseAngry,
		"anxious":  CoarseAnxious,
		"neutral":  CoarseNeutral,
		"excited":  CoarseHappy,
		"peaceful": CoarseNeutral,
	})
}

// ToCoarse maps a fine label to its coarse bucket, neutral when unknown.
func (t *Taxonomy) ToCoarse(fine string) string {
	if c, ok := t.fineToCoarse[fine]; ok {
		return c
	}
	return CoarseNeutral
}

// CoarseSet returns the five coarse labels.
func (t *Taxonomy) CoarseSet() []string {
	return []string{CoarseHappy, CoarseSad, CoarseAngry, CoarseAnxious, CoarseNeutral}
}

// FineLabels returns the canonical fine label list in taxonomy order.
func (t *Taxonomy) FineLabels() []string {
	return []string{
		"joy", "contentment", "gratitude", "love", "excitement", "pride",
		"hope", "relief", "sadness", "grief", "anger", "frustration",
		"anxiety", "fear", "guilt", "shame", "loneliness", "disappointment",
		"calm", "contemplative", "curious", "nostalgic", "confused", "indifferent",
	}
}

// IsFine reports whether the label exists in the mapping.
func (t *Taxonomy) IsFine(label string) bool {
	_, ok := t.fineToCoarse[label]
	return ok
}

// moodAnchors place each coarse label on the -100..100 mood axis.
var moodAnchors = map[string]int{
	CoarseHappy:   80,
	CoarseNeutral: 0,
	CoarseAnxious: -40,
	CoarseSad:     -40,
	CoarseAngry:   -80,
}

// MoodScore derives a deterministic mood score from a coarse label scaled
// by confidence. Used when the model did not supply one.
func MoodScore(coarse string, confidence float64) int {
	return int(float64(moodAnchors[coarse]) * confidence)
}
