package analysis

import (
	"fmt"
	"math"
	"sort"
)

// fusionOrder is the canonical modality order; ties and iteration follow it
// so fusion output is deterministic across runs.
var fusionOrder = []Modality{ModalityText, ModalityImage, ModalityVoice}

// DefaultModalityWeights returns the standard fusion weights.
func DefaultModalityWeights() map[Modality]float64 {
	return map[Modality]float64{
		ModalityText:  0.4,
		ModalityImage: 0.3,
		ModalityVoice: 0.3,
	}
}

// FusionEngine combines per-modality results into a single verdict using
// weighted aggregation. Weights are renormalized over the modalities that
// actually produced scores, so a missing modality never dilutes the rest.
type FusionEngine struct {
	weights map[Modality]float64
}

// NewFusionEngine builds an engine; nil weights means defaults.
func NewFusionEngine(weights map[Modality]float64) *FusionEngine {
	if weights == nil {
		weights = DefaultModalityWeights()
	}
	return &FusionEngine{weights: weights}
}

type labelAgg struct {
	label       string
	weightedSum float64
	weight      float64
	confSum     float64
	sources     []Modality
	firstSeen   int
}

// Fuse merges the available modality results. Nil or empty results are
// skipped; an entirely empty input yields an empty FusionResult.
func (f *FusionEngine) Fuse(results []*ModalityResult) FusionResult {
	present := f.orderedResults(results)
	if len(present) == 0 {
		return FusionResult{ConflictingSignals: []string{}}
	}

	totalW := 0.0
	for _, r := range present {
		totalW += f.weights[r.Modality]
	}
	if totalW == 0 {
		totalW = 1
	}

	aggs := map[string]*labelAgg{}
	order := 0
	for _, r := range present {
		w := f.weights[r.Modality] / totalW
		for _, s := range r.Scores {
			a, ok := aggs[s.Label]
			if !ok {
				a = &labelAgg{label: s.Label, firstSeen: order}
				aggs[s.Label] = a
				order++
			}
			a.weightedSum += w * float64(s.Intensity)
			a.confSum += w * s.Confidence
			a.weight += w
			a.sources = append(a.sources, r.Modality)
		}
	}

	ranked := make([]*labelAgg, 0, len(aggs))
	for _, a := range aggs {
		ranked = append(ranked, a)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].weightedSum != ranked[j].weightedSum {
			return ranked[i].weightedSum > ranked[j].weightedSum
		}
		// Tie: prefer the label more modalities agree on.
		if len(ranked[i].sources) != len(ranked[j].sources) {
			return len(ranked[i].sources) > len(ranked[j].sources)
		}
		return ranked[i].firstSeen < ranked[j].firstSeen
	})
	if len(ranked) > MaxEmotionsPerAnalysis {
		ranked = ranked[:MaxEmotionsPerAnalysis]
	}

	final := make([]FusedScore, 0, len(ranked))
	for _, a := range ranked {
		final = append(final, FusedScore{
			EmotionScore: EmotionScore{
				Label:      a.label,
				Intensity:  int(math.Round(a.weightedSum / a.weight)),
				Confidence: a.confSum / a.weight,
			},
			Sources: a.sources,
		})
	}

	topLabel := final[0].Label
	agree := 0
	for _, r := range present {
		if top, ok := r.Top(); ok && top.Label == topLabel {
			agree++
		}
	}

	conflicts := []string{}
	for i := 0; i < len(present); i++ {
		ta, okA := present[i].Top()
		if !okA {
			continue
		}
		for j := i + 1; j < len(present); j++ {
			tb, okB := present[j].Top()
			if !okB || ta.Label == tb.Label {
				continue
			}
			conflicts = append(conflicts, fmt.Sprintf("%s:%s vs %s:%s",
				present[i].Modality, ta.Label, present[j].Modality, tb.Label))
		}
	}

	var dominant Modality
	best := -1.0
	for _, r := range present {
		top, ok := r.Top()
		if !ok || top.Label != topLabel {
			continue
		}
		if top.Confidence > best {
			best = top.Confidence
			dominant = r.Modality
		}
	}
	if dominant == "" {
		for _, r := range present {
			if top, ok := r.Top(); ok && top.Confidence > best {
				best = top.Confidence
				dominant = r.Modality
			}
		}
	}

	return FusionResult{
		FinalScores:        final,
		Consistency:        float64(agree) / float64(len(present)),
		ConflictingSignals: conflicts,
		DominantModality:   dominant,
	}
}

func (f *FusionEngine) orderedResults(results []*ModalityResult) []*ModalityResult {
	out := make([]*ModalityResult, 0, len(results))
	for _, m := range fusionOrder {
		for _, r := range results {
			if r != nil && r.Modality == m && len(r.Scores) > 0 {
				out = append(out, r)
			}
		}
	}
	return out
}
