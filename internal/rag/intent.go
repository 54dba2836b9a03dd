package rag

import "strings"

// Domain terms that mark a manual question: usage phrases, maintenance
// vocabulary, error/warning vocabulary, appliance names, manual terms.
// Checked in order; first membership wins.
var manualKeywords = []string{
	"사용법", "사용 방법", "어떻게 하나", "어떻게 하냐",
	"필터", "청소", "세척", "설정", "버튼", "리셋", "reset",
	"에러", "오류", "점검", "경고등",
	"공기청정기", "청소기", "전자레인지", "세탁기", "에어컨",
	"설명서", "매뉴얼",
}

// ClassifyIntent is a pure, deterministic keyword classifier: manual when
// any domain term appears, chat otherwise.
func ClassifyIntent(query string) Intent {
	q := strings.TrimSpace(query)
	for _, kw := range manualKeywords {
		if strings.Contains(q, kw) {
			return IntentManual
		}
	}
	return IntentChat
}

// ClassifyImageIntent categorizes an image-bearing request by the same
// term list. The result shapes answer framing only.
func ClassifyImageIntent(query string) ImageIntent {
	if strings.TrimSpace(query) == "" {
		return ImageOther
	}
	if ClassifyIntent(query) == IntentManual {
		return ImageManual
	}
	return ImageOther
}
