package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntentManual(t *testing.T) {
	for _, q := range []string{
		"필터 청소 좀 어떻게 해?",
		"에어컨 예약 버튼이 안 눌려요",
		"세탁기 에러 코드 E3가 떠요",
		"공기청정기 설명서 어디서 봐?",
	} {
		assert.Equal(t, IntentManual, ClassifyIntent(q), q)
	}
}

func TestClassifyIntentChat(t *testing.T) {
	for _, q := range []string{
		"오늘 날씨 어때",
		"점심 메뉴 추천해줘",
		"",
	} {
		assert.Equal(t, IntentChat, ClassifyIntent(q), q)
	}
}

func TestClassifyImageIntent(t *testing.T) {
	assert.Equal(t, ImageManual, ClassifyImageIntent("이 버튼 사용법 알려줘"))
	assert.Equal(t, ImageOther, ClassifyImageIntent("이게 뭐야?"))
	assert.Equal(t, ImageOther, ClassifyImageIntent(""))
}
