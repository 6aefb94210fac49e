package safety

// EmergencyContact is one hotline shown in the crisis response.
type EmergencyContact struct {
	Name        string `json:"name"`
	Number      string `json:"number"`
	Description string `json:"description"`
}

// CrisisResponse is returned instead of an analysis when the gate trips.
// It is a successful response, not an error: the caller must render it.
type CrisisResponse struct {
	IsSafetyResponse      bool               `json:"isSafetyResponse"`
	Message               string             `json:"message"`
	ShowEmergencyContacts bool               `json:"showEmergencyContacts"`
	EmergencyContacts     []EmergencyContact `json:"emergencyContacts"`
}

const crisisMessage = "🆘 **도움을 받으세요**\n\n" +
	"소중한 당신의 마음이 많이 힘드시군요. 혼자 견디지 마시고 전문가의 도움을 받아보세요.\n\n" +
	"📞 **자살예방상담전화**\n" +
	"• **전화번호**: 109 (24시간 무료 상담)\n" +
	"• **언어**: 한국어, 영어\n" +
	"• **운영 시간**: 24시간 연중무휴\n\n" +
	"🌐 **온라인 상담**\n" +
	"• 생명의전화: https://www.lifeline.or.kr\n" +
	"• 청소년 전화: 1388\n\n" +
	"💙 **당신은 혼자가 아닙니다**\n" +
	"지금 이 순간이 힘들더라도, 반드시 좋아질 날이 올 것입니다. 전문 상담사와 이야기해보세요."

// NewCrisisResponse builds the fixed crisis payload with Korean hotlines.
func NewCrisisResponse() *CrisisResponse {
	return &CrisisResponse{
		IsSafetyResponse:      true,
		Message:               crisisMessage,
		ShowEmergencyContacts: true,
		EmergencyContacts: []EmergencyContact{
			{Name: "자살예방상담전화", Number: "109", Description: "24시간 무료 상담"},
			{Name: "정신건강위기상담전화", Number: "1577-0199", Description: "정신건강 전문상담"},
			{Name: "청소년 전화", Number: "1388", Description: "청소년 전문상담"},
		},
	}
}
