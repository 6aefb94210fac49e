package emotion

// VocabularyEntry pairs one label with its Korean keyword stems.
type VocabularyEntry struct {
	Label    string
	Keywords []string
}

// Vocabulary is an ordered keyword table. Declaration order doubles as the
// tie-break order when two labels score equally.
type Vocabulary []VocabularyEntry

// NeutralLabel is the scorer's fallback when nothing matches.
const NeutralLabel = "neutral"

// DefaultVocabulary returns the built-in Korean keyword table.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		{Label: "happy", Keywords: []string{"기쁘", "행복", "좋", "웃", "즐거", "신나", "만족", "뿌듯"}},
		{Label: "sad", Keywords: []string{"슬프", "우울", "아쉽", "실망", "허탈", "외로", "눈물"}},
		{Label: "angry", Keywords: []string{"화나", "짜증", "분노", "열받", "빡치", "성질", "억울"}},
		{Label: "anxious", Keywords: []string{"불안", "걱정", "무서", "두려", "초조", "긴장", "스트레스"}},
		{Label: "neutral", Keywords: []string{"평범", "보통", "그냥", "무난", "평온", "조용"}},
		{Label: "excited", Keywords: []string{"신나", "흥미", "재미", "멋지", "와우", "대박", "최고"}},
		{Label: "peaceful", Keywords: []string{"차분", "평온", "고요", "조용", "편안", "안정", "여유"}},
		{Label: "confused", Keywords: []string{"헷갈", "혼란", "복잡", "모르겠", "갈등", "애매", "의문"}},
	}
}
