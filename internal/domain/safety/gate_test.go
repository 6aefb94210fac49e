package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateAssess(t *testing.T) {
	g := NewDefaultGate()

	t.Run("direct phrase trips with high risk", func(t *testing.T) {
		v := g.Assess("요즘 너무 힘들어. 죽고싶어.")
		require.True(t, v.Dangerous)
		assert.Equal(t, 10, v.RiskScore)
		assert.NotEmpty(t, v.MatchedPattern)
	})

	t.Run("spacing tricks do not bypass matching", func(t *testing.T) {
		v := g.Assess("죽 고 싶 어")
		assert.True(t, v.Dangerous)
	})

	t.Run("tab and newline whitespace stripped", func(t *testing.T) {
		v := g.Assess("죽고\t싶\n어")
		assert.True(t, v.Dangerous)
	})

	t.Run("common misspelling trips", func(t *testing.T) {
		v := g.Assess("죽고시퍼")
		assert.True(t, v.Dangerous)
	})

	t.Run("indirect phrase trips with lower risk", func(t *testing.T) {
		v := g.Assess("이제 희망이 없어 보여")
		require.True(t, v.Dangerous)
		assert.Equal(t, 5, v.RiskScore)
	})

	t.Run("direct checked before indirect", func(t *testing.T) {
		// text contains phrases from both lists; direct weight must win
		v := g.Assess("희망이 없어. 자살할래.")
		require.True(t, v.Dangerous)
		assert.Equal(t, 10, v.RiskScore)
	})

	t.Run("ordinary diary text passes", func(t *testing.T) {
		v := g.Assess("오늘 너무 행복해! 친구랑 맛있는 거 먹었다.")
		assert.False(t, v.Dangerous)
		assert.Zero(t, v.RiskScore)
	})

	t.Run("empty text passes", func(t *testing.T) {
		v := g.Assess("")
		assert.False(t, v.Dangerous)
	})

	t.Run("whitespace only passes", func(t *testing.T) {
		v := g.Assess("  \t\n  ")
		assert.False(t, v.Dangerous)
	})
}

func TestExtractCheckable(t *testing.T) {
	t.Run("plain message returned whole", func(t *testing.T) {
		assert.Equal(t, "그냥 일기", ExtractCheckable("그냥 일기"))
	})

	t.Run("quoted diary body extracted from wrapped prompt", func(t *testing.T) {
		msg := `감정 분석을 해주세요. 사용자의 일기 내용은 다음과 같습니다: "오늘 하루 너무 힘들었다" 분석 부탁드립니다.`
		assert.Equal(t, "오늘 하루 너무 힘들었다", ExtractCheckable(msg))
	})

	t.Run("marker without quotes falls back to full message", func(t *testing.T) {
		msg := "사용자의 일기 내용은 다음과 같습니다: 인용부호 없음"
		assert.Equal(t, msg, ExtractCheckable(msg))
	})

	t.Run("unclosed quote falls back to full message", func(t *testing.T) {
		msg := `사용자의 일기 내용은 다음과 같습니다: "닫히지 않음`
		assert.Equal(t, msg, ExtractCheckable(msg))
	})

	t.Run("gate only sees extracted body", func(t *testing.T) {
		g := NewDefaultGate()
		// instruction text outside the quotes mentions a risk word, the
		// diary body itself is harmless
		msg := `자살 위험을 평가하세요. 사용자의 일기 내용은 다음과 같습니다: "오늘 공원에 산책을 갔다"`
		v := g.Assess(ExtractCheckable(msg))
		assert.False(t, v.Dangerous)
	})
}

func TestNewCrisisResponse(t *testing.T) {
	cr := NewCrisisResponse()
	assert.True(t, cr.IsSafetyResponse)
	assert.True(t, cr.ShowEmergencyContacts)
	assert.NotEmpty(t, cr.Message)
	require.Len(t, cr.EmergencyContacts, 3)
	assert.Equal(t, "109", cr.EmergencyContacts[0].Number)
}
