// Package prompt builds the structured prompts sent to the model and
// parses its replies against a strict schema.
package prompt

import (
	"fmt"
	"strings"

	"github.com/maumlog/emotion-engine/internal/domain/analysis"
)

// TextSystemPrompt instructs the model to return strictly-shaped JSON for a
// diary entry. Labels are enum-constrained to the supplied vocabulary.
func TextSystemPrompt(labels []string) string {
	return fmt.Sprintf(`당신은 전문적인 감정 분석 심리학자입니다. 일기 내용을 분석하여 다음을 제공하세요:

1. 주요 감정 (최대 3개): %s 중에서 선택
2. 감정 강도 (0-100): 각 감정의 세기
3. 전체 기분 점수 (-100 ~ +100): 부정(-) ~ 긍정(+)
4. 핵심 키워드 (3-5개): 감정을 나타내는 중요 단어들
5. AI 인사이트: 감정 상태에 대한 전문가 분석 (50자 이내)
6. 맞춤 조언: 현재 감정에 도움되는 구체적 조언

Requirements:
- Output must be a single JSON object. No markdown, no commentary, no code fences.
- emotions[].label must be one of the listed labels, lowercase.
- intensity is an integer 0-100; confidence is a number 0.0-1.0.

Schema (example with empty values):
{
  "emotions": [
    {"label": "<string>", "intensity": 0, "confidence": 0.0}
  ],
  "overall_mood_score": 0,
  "keywords": ["<string>"],
  "insights": "<string>",
  "advice": "<string>"
}`, strings.Join(labels, ", "))
}

// TextUserPrompt wraps the diary content plus an optional recent-emotion
// context line for personalization.
func TextUserPrompt(content string, prior []analysis.EmotionSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "다음 일기를 분석해주세요:\n\n%q", content)
	if len(prior) > 0 {
		parts := make([]string, 0, len(prior))
		for _, p := range prior {
			parts = append(parts, fmt.Sprintf("%s(%d)", p.Label, p.MoodScore))
		}
		fmt.Fprintf(&b, "\n\n최근 감정 패턴: %s", strings.Join(parts, ", "))
	}
	return b.String()
}
