package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maumlog/emotion-engine/internal/domain/analysis"
)

var allowed = AllowedSet([]string{"joy", "sadness", "anger", "calm", "hope"})

func TestParseTextAnalysis(t *testing.T) {
	t.Run("valid payload parses", func(t *testing.T) {
		raw := `{"emotions":[{"label":"joy","intensity":80,"confidence":0.9}],"overall_mood_score":60,"keywords":["산책"],"insights":"긍정적인 하루"}`
		out, err := ParseTextAnalysis(raw, allowed)
		require.NoError(t, err)
		assert.Equal(t, "joy", out.Scores[0].Label)
		assert.Equal(t, 60, out.MoodScore)
		assert.Equal(t, []string{"산책"}, out.Keywords)
	})

	t.Run("invalid JSON is malformed", func(t *testing.T) {
		_, err := ParseTextAnalysis("not json at all", allowed)
		var mErr *analysis.MalformedResponseError
		require.ErrorAs(t, err, &mErr)
	})

	t.Run("empty emotions is malformed", func(t *testing.T) {
		_, err := ParseTextAnalysis(`{"emotions":[],"overall_mood_score":0}`, allowed)
		var mErr *analysis.MalformedResponseError
		require.ErrorAs(t, err, &mErr)
	})

	t.Run("out of vocabulary label is malformed", func(t *testing.T) {
		raw := `{"emotions":[{"label":"ecstatic","intensity":80,"confidence":0.9}],"overall_mood_score":0}`
		_, err := ParseTextAnalysis(raw, allowed)
		var mErr *analysis.MalformedResponseError
		require.ErrorAs(t, err, &mErr)
		assert.Contains(t, mErr.Reason, "ecstatic")
	})

	t.Run("intensity out of range is malformed", func(t *testing.T) {
		raw := `{"emotions":[{"label":"joy","intensity":150,"confidence":0.9}],"overall_mood_score":0}`
		_, err := ParseTextAnalysis(raw, allowed)
		var mErr *analysis.MalformedResponseError
		require.ErrorAs(t, err, &mErr)
	})

	t.Run("confidence out of range is malformed", func(t *testing.T) {
		raw := `{"emotions":[{"label":"joy","intensity":50,"confidence":1.5}],"overall_mood_score":0}`
		_, err := ParseTextAnalysis(raw, allowed)
		var mErr *analysis.MalformedResponseError
		require.ErrorAs(t, err, &mErr)
	})

	t.Run("mood score out of range is malformed", func(t *testing.T) {
		raw := `{"emotions":[{"label":"joy","intensity":50,"confidence":0.5}],"overall_mood_score":150}`
		_, err := ParseTextAnalysis(raw, allowed)
		var mErr *analysis.MalformedResponseError
		require.ErrorAs(t, err, &mErr)
	})

	t.Run("extra scores trimmed to cap", func(t *testing.T) {
		raw := `{"emotions":[
			{"label":"joy","intensity":80,"confidence":0.9},
			{"label":"hope","intensity":60,"confidence":0.7},
			{"label":"calm","intensity":40,"confidence":0.5},
			{"label":"sadness","intensity":20,"confidence":0.3}
		],"overall_mood_score":40}`
		out, err := ParseTextAnalysis(raw, allowed)
		require.NoError(t, err)
		assert.Len(t, out.Scores, analysis.MaxEmotionsPerAnalysis)
	})
}

func TestParseImageAnalysis(t *testing.T) {
	t.Run("valid payload parses", func(t *testing.T) {
		raw := `{"visual_emotions":[{"label":"calm","intensity":40,"confidence":0.7}],"dominant_colors":["blue"],"composition":"wide shot","text_image_alignment":0.8,"insights":"차분한 풍경"}`
		out, err := ParseImageAnalysis(raw, allowed)
		require.NoError(t, err)
		assert.Equal(t, "calm", out.Scores[0].Label)
		assert.Equal(t, 0.8, out.TextAlignment)
	})

	t.Run("alignment out of range is malformed", func(t *testing.T) {
		raw := `{"visual_emotions":[{"label":"calm","intensity":40,"confidence":0.7}],"text_image_alignment":1.2}`
		_, err := ParseImageAnalysis(raw, allowed)
		var mErr *analysis.MalformedResponseError
		require.ErrorAs(t, err, &mErr)
	})
}

func TestParseVoiceAnalysis(t *testing.T) {
	t.Run("valid payload parses", func(t *testing.T) {
		raw := `{"voice_emotions":[{"label":"sadness","intensity":60,"confidence":0.8}],"estimated_tone":"낮음","speech_pace":"느림","insights":"지친 목소리"}`
		out, err := ParseVoiceAnalysis(raw, allowed)
		require.NoError(t, err)
		assert.Equal(t, "sadness", out.Scores[0].Label)
		assert.Equal(t, "낮음", out.Tone)
	})

	t.Run("missing scores is malformed", func(t *testing.T) {
		_, err := ParseVoiceAnalysis(`{"estimated_tone":"낮음"}`, allowed)
		var mErr *analysis.MalformedResponseError
		require.ErrorAs(t, err, &mErr)
	})
}
