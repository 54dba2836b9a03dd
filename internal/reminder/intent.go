package reminder

import "strings"

// Keywords that mark a scheduling request. Checked in order; any match
// routes the request to the reminder path instead of retrieval.
var intentKeywords = []string{
	"예약해줘", "예약 해줘",
	"예약해 줘", "예약 해 줘",
	"일정 추가", "일정 잡아줘", "일정 잡아 줘",
	"일정 등록", "일정 넣어줘",
	"알림 설정", "알림 맞춰줘",
	"리마인드", "리마인더",
	"캘린더에", "캘린더 등록",
}

// IsSchedulingRequest reports whether the sentence expresses a scheduling
// intent. Pure keyword membership, no model call.
func IsSchedulingRequest(text string) bool {
	text = strings.TrimSpace(text)
	for _, kw := range intentKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
