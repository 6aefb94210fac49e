package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifierScore(t *testing.T) {
	c := NewClassifier(nil)

	t.Run("empty text is neutral with zero confidence", func(t *testing.T) {
		r := c.Score("")
		assert.Equal(t, NeutralLabel, r.Label)
		assert.Zero(t, r.Confidence)
	})

	t.Run("no keyword hit is neutral with zero confidence", func(t *testing.T) {
		r := c.Score("xyz abc 123")
		assert.Equal(t, NeutralLabel, r.Label)
		assert.Zero(t, r.Confidence)
		assert.Empty(t, r.Breakdown)
	})

	t.Run("single hit picks the label", func(t *testing.T) {
		r := c.Score("오늘 정말 행복한 하루였다")
		assert.Equal(t, "happy", r.Label)
		assert.InDelta(t, 1.0/3.0, r.Confidence, 1e-9)
	})

	t.Run("highest count wins", func(t *testing.T) {
		r := c.Score("짜증나고 화나고 열받는다. 조금 슬프기도 하다.")
		assert.Equal(t, "angry", r.Label)
		require.NotNil(t, r.Breakdown)
		assert.Equal(t, 3, r.Breakdown["angry"])
		assert.Equal(t, 1, r.Breakdown["sad"])
	})

	t.Run("confidence saturates at three hits", func(t *testing.T) {
		r := c.Score("기쁘고 행복하고 즐겁고 신나고 만족스럽다")
		assert.Equal(t, "happy", r.Label)
		assert.Equal(t, 1.0, r.Confidence)
	})

	t.Run("tie resolves in vocabulary order", func(t *testing.T) {
		// 슬프 (sad) and 화나 (angry) once each; sad is declared first
		r := c.Score("슬프다가 화나다가")
		assert.Equal(t, "sad", r.Label)
	})

	t.Run("same text always same result", func(t *testing.T) {
		text := "불안하고 걱정되는 밤"
		first := c.Score(text)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, c.Score(text))
		}
	})
}
