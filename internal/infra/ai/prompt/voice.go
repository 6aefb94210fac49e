package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// VoiceSystemPrompt scores a speech transcript's emotional content plus
// speech-characteristic estimates.
func VoiceSystemPrompt(labels []string) string {
	return fmt.Sprintf(`당신은 음성을 통해 감정을 분석하는 전문가입니다. 변환된 텍스트와 음성 메타데이터를 바탕으로 다음을 분석해주세요:

1. 텍스트 기반 감정 분석 (%s 중에서 최대 3개)
2. 음성 특성 추정 (톤, 속도)
3. 감정 강도 (0-100)

Requirements:
- Output must be a single JSON object. No markdown, no code fences.
- voice_emotions[].label must be one of the listed labels, lowercase.
- speech_pace is one of: 빠름, 보통, 느림.

Schema (example with empty values):
{
  "voice_emotions": [
    {"label": "<string>", "intensity": 0, "confidence": 0.0}
  ],
  "estimated_tone": "<string>",
  "speech_pace": "<string>",
  "insights": "<string>"
}`, strings.Join(labels, ", "))
}

// VoiceUserPrompt wraps the transcript and any capture metadata.
func VoiceUserPrompt(transcript string, meta map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "변환된 텍스트: %q", transcript)
	if len(meta) > 0 {
		if raw, err := json.Marshal(meta); err == nil {
			fmt.Fprintf(&b, "\n\n음성 메타데이터: %s", raw)
		}
	}
	b.WriteString("\n\n위 정보를 바탕으로 감정 분석을 해주세요.")
	return b.String()
}
