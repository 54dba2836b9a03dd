package reminder

import (
	"fmt"
	"time"
)

var weekdayNames = []string{"월", "화", "수", "목", "금", "토", "일"}

// FormatConfirmation renders the Korean confirmation sentence shown to the
// user after the calendar event was created, e.g.
// 일요일(30일) 10시에 "에어컨 청소" 일정이 등록되었습니다.
func FormatConfirmation(start time.Time, title string) string {
	w := weekdayNames[(int(start.Weekday())+6)%7]

	timeStr := fmt.Sprintf("%d시", start.Hour())
	if start.Minute() != 0 {
		timeStr = fmt.Sprintf("%d시 %d분", start.Hour(), start.Minute())
	}

	return fmt.Sprintf("%s요일(%d일) %s에 %q 일정이 등록되었습니다.", w, start.Day(), timeStr, title)
}
