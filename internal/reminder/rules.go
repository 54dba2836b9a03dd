package reminder

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Reminder is the structured result of parsing a Korean scheduling sentence.
// Events are fixed at 60 minutes.
type Reminder struct {
	Title string
	Start time.Time
	End   time.Time
}

// ErrNoSignal is returned when the text carries neither a date token nor a
// time expression. Date-only or time-only sentences still parse, with the
// missing half defaulted (today / 09:00).
var ErrNoSignal = errors.New("no date or time expression recognized")

const defaultTitle = "리마인더"

var weekdayTokens = []string{"월", "화", "수", "목", "금", "토", "일"}

var (
	dayOfMonthRe = regexp.MustCompile(`(\d{1,2})일`)
	timeRe       = regexp.MustCompile(`(오전|오후)?\s*(\d{1,2})시(?:\s*(\d{1,2})분)?`)

	relativeDayRe = regexp.MustCompile(`이번주|이번 주|오늘|내일|모레`)
	clockRe       = regexp.MustCompile(`(오전|오후)\s*\d{1,2}시(\s*\d{1,2}분)?`)
	weekdayRe     = regexp.MustCompile(`[월화수목금토일]요일`)

	scheduleVerbRes = []*regexp.Regexp{
		regexp.MustCompile(`일정\s*(추가|등록|잡아줘|잡아 줘)?`),
		regexp.MustCompile(`예약해줘|예약 해줘|예약해 줘|예약 해 줘`),
		regexp.MustCompile(`알림\s*(설정|맞춰줘|맞춰 줘)?`),
		regexp.MustCompile(`해줘`),
	}
)

// Extract parses a scheduling sentence relative to now. Resolution order
// for the date, first match wins: 오늘/내일, weekday with an explicit 이번주
// qualifier (next occurrence within 0-6 days), bare day-of-month within the
// current month, then today. Time defaults to 09:00 when absent.
func Extract(text string, now time.Time) (*Reminder, error) {
	date, dateFound := resolveDate(text, now)
	hour, minute, timeFound := resolveTime(text)

	if !dateFound && !timeFound {
		return nil, ErrNoSignal
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, now.Location())
	return &Reminder{
		Title: extractTitle(text),
		Start: start,
		End:   start.Add(time.Hour),
	}, nil
}

func resolveDate(text string, now time.Time) (time.Time, bool) {
	if strings.Contains(text, "오늘") {
		return now, true
	}
	if strings.Contains(text, "내일") {
		return now.AddDate(0, 0, 1), true
	}

	if strings.Contains(text, "이번주") || strings.Contains(text, "이번 주") {
		for target, ch := range weekdayTokens {
			if !strings.Contains(text, ch+"요일") {
				continue
			}
			today := (int(now.Weekday()) + 6) % 7 // Monday = 0
			delta := ((target - today) % 7 + 7) % 7
			return now.AddDate(0, 0, delta), true
		}
	}

	if m := dayOfMonthRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		candidate := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
		// Reject overflow like "31일" in a 30-day month.
		if candidate.Month() == now.Month() && day >= 1 {
			return candidate, true
		}
	}

	return now, false
}

func resolveTime(text string) (hour, minute int, found bool) {
	m := timeRe.FindStringSubmatch(text)
	if m == nil {
		return 9, 0, false
	}

	ampm := m[1]
	hour, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		minute, _ = strconv.Atoi(m[3])
	}

	if ampm == "오후" && hour < 12 {
		hour += 12
	}
	if ampm == "오전" && hour == 12 {
		hour = 0
	}
	return hour, minute, true
}

// extractTitle strips recognized date/time tokens and scheduling-verb
// phrases, then trims particles and punctuation. Whatever survives is the
// event title; an empty remainder falls back to the fixed placeholder.
func extractTitle(text string) string {
	t := relativeDayRe.ReplaceAllString(text, "")
	t = weekdayRe.ReplaceAllString(t, "")
	t = dayOfMonthRe.ReplaceAllString(t, "")
	t = clockRe.ReplaceAllString(t, "")

	for _, re := range scheduleVerbRes {
		t = re.ReplaceAllString(t, "")
	}

	t = strings.NewReplacer("에 ", " ", "를 ", " ", "을 ", " ").Replace(t)
	t = strings.TrimSpace(t)
	t = strings.TrimRight(t, " ,.!?\"'에을를")
	t = strings.Join(strings.Fields(t), " ")

	if t == "" {
		return defaultTitle
	}
	return t
}
