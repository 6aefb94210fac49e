package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomyToCoarse(t *testing.T) {
	tax := NewDefaultTaxonomy()

	t.Run("every fine label maps into the coarse set", func(t *testing.T) {
		coarse := map[string]bool{}
		for _, c := range tax.CoarseSet() {
			coarse[c] = true
		}
		for _, fine := range tax.FineLabels() {
			assert.True(t, coarse[tax.ToCoarse(fine)], "fine label %q", fine)
		}
	})

	t.Run("unknown label falls back to neutral", func(t *testing.T) {
		assert.Equal(t, CoarseNeutral, tax.ToCoarse("euphoric"))
		assert.Equal(t, CoarseNeutral, tax.ToCoarse(""))
	})

	t.Run("coarse set has exactly five labels", func(t *testing.T) {
		assert.Len(t, tax.CoarseSet(), 5)
	})

	t.Run("scorer aliases map sensibly", func(t *testing.T) {
		assert.Equal(t, CoarseHappy, tax.ToCoarse("excited"))
		assert.Equal(t, CoarseNeutral, tax.ToCoarse("peaceful"))
		assert.Equal(t, CoarseAnxious, tax.ToCoarse("fear"))
		assert.Equal(t, CoarseSad, tax.ToCoarse("loneliness"))
	})

	t.Run("fine label list covers twenty four labels", func(t *testing.T) {
		labels := tax.FineLabels()
		assert.Len(t, labels, 24)
		for _, l := range labels {
			assert.True(t, tax.IsFine(l))
		}
	})
}

func TestMoodScore(t *testing.T) {
	t.Run("scaled by confidence", func(t *testing.T) {
		assert.Equal(t, 80, MoodScore(CoarseHappy, 1.0))
		assert.Equal(t, 40, MoodScore(CoarseHappy, 0.5))
		assert.Equal(t, -80, MoodScore(CoarseAngry, 1.0))
		assert.Equal(t, -20, MoodScore(CoarseSad, 0.5))
	})

	t.Run("neutral is always zero", func(t *testing.T) {
		assert.Zero(t, MoodScore(CoarseNeutral, 1.0))
	})

	t.Run("zero confidence yields zero", func(t *testing.T) {
		assert.Zero(t, MoodScore(CoarseAngry, 0))
	})
}
