// Package safety implements the mandatory self-harm risk gate that runs
// before any classification or caching.
package safety

import (
	"strings"
)

const (
	directWeight   = 10
	indirectWeight = 5
	riskThreshold  = 5
)

// Verdict is the gate's decision for one piece of text.
type Verdict struct {
	Dangerous      bool   `json:"dangerous"`
	MatchedPattern string `json:"matched_pattern,omitempty"`
	RiskScore      int    `json:"risk_score"`
}

// Gate matches normalized text against direct and indirect risk phrase
// lists. First match wins; direct phrases are checked before indirect.
type Gate struct {
	direct   []string
	indirect []string
}

// NewGate builds a gate from custom phrase lists. Phrases are normalized
// once at construction.
func NewGate(direct, indirect []string) *Gate {
	return &Gate{
		direct:   normalizeAll(direct),
		indirect: normalizeAll(indirect),
	}
}

// NewDefaultGate builds a gate with the built-in Korean phrase lists.
func NewDefaultGate() *Gate {
	return NewGate(DirectRiskPhrases(), IndirectRiskPhrases())
}

// DirectRiskPhrases are explicit self-harm expressions, including common
// misspellings and spacing variants.
func DirectRiskPhrases() []string {
	return []string{
		"죽고 싶어", "죽고싶어", "죽고시펑", "죽고시퍼",
		"자살", "자해",
		"죽을래", "죽을거야", "자살할래", "자살하고싶어",
		"죽자", "살기 싫어", "살기싫어",
		"죽어버리고", "죽고십어", "죽고싶다",
		"죽어버려", "죽었으면", "사라지고싶어",
	}
}

// IndirectRiskPhrases are expressions that signal risk without naming it.
func IndirectRiskPhrases() []string {
	return []string{
		"죽을정도로", "죽을만큼",
		"더 이상 못 살겠어", "더이상 못살겠어",
		"세상이 무너져", "모든 걸 포기",
		"희망이 없어", "견딜 수 없어",
		"너무 힘들어서 죽", "고통스러워서 죽", "괴로워서 죽",
		"뛰어내리", "목을 매", "약을 많이",
		"살 이유가 없어", "의미가 없어", "모든 게 끝",
		"끝내버릴게", "그냥 죽", "진짜 죽", "정말 죽",
		"죽는게 나아", "죽는게 낫겠",
	}
}

// Assess checks text against the phrase lists. Matching short-circuits on
// the first hit, direct list first.
func (g *Gate) Assess(text string) Verdict {
	norm := normalize(text)
	if norm == "" {
		return Verdict{}
	}
	for _, p := range g.direct {
		if strings.Contains(norm, p) {
			return Verdict{Dangerous: true, MatchedPattern: p, RiskScore: directWeight}
		}
	}
	for _, p := range g.indirect {
		if strings.Contains(norm, p) {
			return Verdict{Dangerous: true, MatchedPattern: p, RiskScore: indirectWeight}
		}
	}
	return Verdict{}
}

const diaryMarker = "사용자의 일기 내용은 다음과 같습니다"

// ExtractCheckable pulls the quoted diary body out of a wrapped prompt so
// surrounding instruction text does not trip the gate. Messages without the
// marker are checked whole.
func ExtractCheckable(message string) string {
	if !strings.Contains(message, diaryMarker) {
		return message
	}
	start := strings.Index(message, `"`)
	if start < 0 {
		return message
	}
	rest := message[start+1:]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return message
	}
	return rest[:end]
}

// normalize lowercases and strips every kind of whitespace, so spacing
// tricks like "죽 고 싶 어" cannot slip past Contains.
func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ' ', '　':
			return -1
		}
		return r
	}, s)
}

func normalizeAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, normalize(p))
	}
	return out
}
