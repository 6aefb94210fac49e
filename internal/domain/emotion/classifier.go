package emotion

import (
	"strings"
)

// KeywordResult is the deterministic scorer's output.
type KeywordResult struct {
	Label      string         `json:"label"`
	Confidence float64        `json:"confidence"`
	Breakdown  map[string]int `json:"breakdown,omitempty"`
}

// Classifier counts keyword hits per label. Same text, same result, always;
// it never calls out and is the offline fallback for the remote model.
type Classifier struct {
	vocab Vocabulary
}

// NewClassifier builds a classifier; nil vocabulary means the default table.
func NewClassifier(vocab Vocabulary) *Classifier {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Classifier{vocab: vocab}
}

// Score tallies keyword occurrences and picks the highest-count label.
// Ties resolve in vocabulary declaration order; no hit at all means neutral
// with zero confidence. Confidence saturates at three hits.
func (c *Classifier) Score(text string) KeywordResult {
	lower := strings.ToLower(text)
	breakdown := map[string]int{}
	winner := NeutralLabel
	best := 0
	for _, entry := range c.vocab {
		count := 0
		for _, kw := range entry.Keywords {
			count += strings.Count(lower, kw)
		}
		if count > 0 {
			breakdown[entry.Label] = count
		}
		if count > best {
			best = count
			winner = entry.Label
		}
	}
	conf := float64(best) / 3.0
	if conf > 1.0 {
		conf = 1.0
	}
	return KeywordResult{Label: winner, Confidence: conf, Breakdown: breakdown}
}
