package prompt

import (
	"fmt"
	"strings"
)

// VisionSystemPrompt instructs the vision model to score depicted emotion
// plus composition metadata and text/image alignment.
func VisionSystemPrompt(labels []string) string {
	return fmt.Sprintf(`당신은 이미지를 통해 감정을 분석하는 전문가입니다. 다음을 분석해주세요:

1. 주요 감정 요소 (색상, 구도, 객체 등)
2. 추정되는 감정 상태 (%s 중에서 최대 3개)
3. 감정 강도 (0-100)
4. 이미지-텍스트 일치도 (0.0-1.0)

Requirements:
- Output must be a single JSON object. No markdown, no code fences.
- visual_emotions[].label must be one of the listed labels, lowercase.

Schema (example with empty values):
{
  "visual_emotions": [
    {"label": "<string>", "intensity": 0, "confidence": 0.0}
  ],
  "dominant_colors": ["<string>"],
  "composition": "<string>",
  "text_image_alignment": 0.0,
  "insights": "<string>"
}`, strings.Join(labels, ", "))
}

// VisionUserPrompt pairs the image with optional diary text context.
func VisionUserPrompt(textContext string) string {
	if textContext == "" {
		return "다음 이미지의 감정을 분석해주세요."
	}
	return fmt.Sprintf("일기 내용: %q\n\n위 일기와 함께 첨부된 이미지를 분석해주세요.", textContext)
}
