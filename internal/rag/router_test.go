package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manual-rag/internal/calendar"
	"manual-rag/internal/llmservice"
)

type fakeRetriever struct {
	hits []Hit
	err  error

	lastQuery string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, _ int) ([]Hit, error) {
	f.lastQuery = query
	return f.hits, f.err
}

type fakeGenerator struct {
	text       string
	err        error
	caption    string
	captionErr error

	imageCalls int
	textCalls  int
}

func (f *fakeGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	f.textCalls++
	return f.text, f.err
}

func (f *fakeGenerator) GenerateWithImages(_ context.Context, _ string, _ []llmservice.Image) (string, error) {
	f.imageCalls++
	return f.text, f.err
}

func (f *fakeGenerator) Caption(_ context.Context, _ llmservice.Image) (string, error) {
	return f.caption, f.captionErr
}

type fakeCalendar struct {
	event *calendar.Event
	err   error

	createdTitle string
	createdStart time.Time
}

func (f *fakeCalendar) CreateEvent(_ context.Context, title string, start, _ time.Time) (*calendar.Event, error) {
	f.createdTitle = title
	f.createdStart = start
	return f.event, f.err
}

func (f *fakeCalendar) ListUpcoming(_ context.Context, _ int) ([]calendar.Event, error) {
	return nil, nil
}

func manualHits() []Hit {
	return []Hit{
		{ChunkID: 1, Score: 0.91, Text: "필터를 분리한 뒤 물로 세척합니다.", ManualID: 7, Page: 12},
		{ChunkID: 2, Score: 0.84, Text: "필터는 2주마다 청소하세요.", ManualID: 7, Page: 13},
	}
}

func newTestRouter(r retriever, gen *fakeGenerator, cal calendar.Client) *Router {
	router := NewRouter(r, NewSynthesizer(gen), Assembler{}, cal)
	router.now = func() time.Time {
		return time.Date(2025, 6, 11, 14, 30, 0, 0, time.UTC)
	}
	return router
}

func TestRouteHitsOverrideChatHeuristic(t *testing.T) {
	// "오늘 날씨" style queries classify as chat, but retrieval evidence wins.
	gen := &fakeGenerator{text: "필터 세척 안내입니다."}
	router := newTestRouter(&fakeRetriever{hits: manualHits()}, gen, nil)

	out := router.Route(context.Background(), "그거 물로 닦아도 돼?", 5)
	answer, ok := out.(*ManualAnswer)
	require.True(t, ok)
	assert.Equal(t, SourceRAG, answer.Source)
	assert.Equal(t, "필터 세척 안내입니다.", answer.Text)
	assert.Len(t, answer.Pages, 2)
	assert.NotEmpty(t, answer.Proactive)
}

func TestRouteZeroHitsChatFallsBackToLLM(t *testing.T) {
	gen := &fakeGenerator{text: "안녕하세요!"}
	router := newTestRouter(&fakeRetriever{}, gen, nil)

	out := router.Route(context.Background(), "오늘 날씨 어때", 5)
	answer, ok := out.(*ChatAnswer)
	require.True(t, ok)
	assert.Equal(t, "안녕하세요!", answer.Text)
}

func TestRouteZeroHitsManualReturnsNoInfo(t *testing.T) {
	gen := &fakeGenerator{text: "이 텍스트는 쓰이면 안 됩니다."}
	router := newTestRouter(&fakeRetriever{}, gen, nil)

	out := router.Route(context.Background(), "필터 청소 어떻게 해?", 5)
	answer, ok := out.(*ManualAnswer)
	require.True(t, ok)
	assert.Equal(t, SourceNoHit, answer.Source)
	assert.Equal(t, msgNoManualInfo, answer.Text)
	assert.Zero(t, gen.textCalls)
}

func TestRouteSearchErrorDegrades(t *testing.T) {
	gen := &fakeGenerator{}
	router := newTestRouter(&fakeRetriever{err: errors.New("index unavailable")}, gen, nil)

	out := router.Route(context.Background(), "필터 청소 어떻게 해?", 5)
	answer, ok := out.(*ManualAnswer)
	require.True(t, ok)
	assert.Equal(t, SourceSearchError, answer.Source)
	assert.Equal(t, msgNoManualInfoDB, answer.Text)
	assert.NotEmpty(t, answer.Err)
}

func TestRouteSynthesisErrorKeepsPages(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model overloaded")}
	router := newTestRouter(&fakeRetriever{hits: manualHits()}, gen, nil)

	out := router.Route(context.Background(), "필터 청소 어떻게 해?", 5)
	answer, ok := out.(*ManualAnswer)
	require.True(t, ok)
	assert.Equal(t, SourceLLMError, answer.Source)
	assert.Equal(t, msgGenerationError, answer.Text)
	assert.Len(t, answer.Pages, 2)
}

func TestAskExplicitIntentOverridesKeywords(t *testing.T) {
	gen := &fakeGenerator{text: "매뉴얼 답변"}
	router := newTestRouter(&fakeRetriever{hits: manualHits()}, gen, nil)

	// The sentence reads like a scheduling request, but the caller pinned rag.
	out, err := router.Ask(context.Background(), "내일 필터 청소 일정 추가해줘", 5, "rag")
	require.NoError(t, err)
	assert.Equal(t, IntentManual, out.Kind())
}

func TestAskReminderPath(t *testing.T) {
	cal := &fakeCalendar{event: &calendar.Event{ID: "evt1", Title: "필터 청소"}}
	router := newTestRouter(&fakeRetriever{}, &fakeGenerator{}, cal)

	out, err := router.Ask(context.Background(), "내일 오전 10시에 필터 청소 일정 추가해줘", 5, "")
	require.NoError(t, err)

	conf, ok := out.(*ReminderConfirmation)
	require.True(t, ok)
	assert.Equal(t, "evt1", conf.Event.ID)
	assert.Equal(t, "필터 청소", cal.createdTitle)
	assert.Equal(t, 10, cal.createdStart.Hour())
	assert.Equal(t, 12, cal.createdStart.Day())
	assert.Contains(t, conf.Message, "필터 청소")
}

func TestAskReminderWithoutSignalFails(t *testing.T) {
	router := newTestRouter(&fakeRetriever{}, &fakeGenerator{}, &fakeCalendar{})

	_, err := router.Ask(context.Background(), "필터 청소 일정 추가해줘", 5, "")
	assert.Error(t, err)
}

func TestAskReminderCalendarFailure(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("401 unauthorized")}
	router := newTestRouter(&fakeRetriever{}, &fakeGenerator{}, cal)

	_, err := router.Ask(context.Background(), "내일 오전 10시에 필터 청소 일정 추가해줘", 5, "")
	assert.ErrorIs(t, err, ErrCalendarDispatch)
}

func TestAskReminderWithoutCalendarClient(t *testing.T) {
	router := newTestRouter(&fakeRetriever{}, &fakeGenerator{}, nil)

	_, err := router.Ask(context.Background(), "내일 오전 10시에 필터 청소 일정 추가해줘", 5, "")
	assert.ErrorIs(t, err, ErrCalendarDispatch)
}

func TestRouteImageCaptionFeedsRetrieval(t *testing.T) {
	ret := &fakeRetriever{hits: manualHits()}
	gen := &fakeGenerator{text: "버튼 설명입니다.", caption: "공기청정기 조작부 사진"}
	router := newTestRouter(ret, gen, nil)

	out := router.RouteImage(context.Background(), "이 버튼 뭐야?", llmservice.Image{MimeType: "image/jpeg"}, 5)
	answer, ok := out.(*ImageAnswer)
	require.True(t, ok)
	assert.Equal(t, SourceImageManual, answer.Source)
	assert.Equal(t, "버튼 설명입니다.", answer.Text)
	assert.Contains(t, ret.lastQuery, "이 버튼 뭐야?")
	assert.Contains(t, ret.lastQuery, "공기청정기 조작부 사진")
	assert.Equal(t, 1, gen.imageCalls)
}

func TestRouteImageCaptionFailureStillAnswers(t *testing.T) {
	ret := &fakeRetriever{hits: manualHits()}
	gen := &fakeGenerator{text: "답변", captionErr: errors.New("caption unavailable")}
	router := newTestRouter(ret, gen, nil)

	out := router.RouteImage(context.Background(), "이 버튼 뭐야?", llmservice.Image{}, 5)
	answer, ok := out.(*ImageAnswer)
	require.True(t, ok)
	assert.Equal(t, "답변", answer.Text)
	assert.Equal(t, "이 버튼 뭐야?", ret.lastQuery)
}

func TestRouteImageEmptyQuestionUsesGenericQuery(t *testing.T) {
	ret := &fakeRetriever{}
	gen := &fakeGenerator{text: "알 수 없는 기기 사진이네요.", captionErr: errors.New("down")}
	router := newTestRouter(ret, gen, nil)

	out := router.RouteImage(context.Background(), "", llmservice.Image{}, 5)
	answer, ok := out.(*ImageAnswer)
	require.True(t, ok)
	assert.Equal(t, genericImageQuery, ret.lastQuery)
	assert.Equal(t, "알 수 없는 기기 사진이네요.", answer.Text)
}

func TestRouteImageZeroHitsStillSynthesizes(t *testing.T) {
	// A photo of an unknown product gets a real multimodal answer, not a
	// canned no-info string.
	gen := &fakeGenerator{text: "사진 속 제품에 대한 일반 안내입니다.", caption: "정체불명의 가전"}
	router := newTestRouter(&fakeRetriever{}, gen, nil)

	out := router.RouteImage(context.Background(), "이게 무슨 제품이야?", llmservice.Image{MimeType: "image/jpeg"}, 5)
	answer, ok := out.(*ImageAnswer)
	require.True(t, ok)
	assert.Equal(t, 1, gen.imageCalls)
	assert.Equal(t, "사진 속 제품에 대한 일반 안내입니다.", answer.Text)
	assert.Empty(t, answer.Pages)
	assert.Empty(t, answer.Snippets)
}

func TestRouteImageZeroHitsSynthesisFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model overloaded")}
	router := newTestRouter(&fakeRetriever{}, gen, nil)

	out := router.RouteImage(context.Background(), "이게 뭐야?", llmservice.Image{}, 5)
	answer, ok := out.(*ImageAnswer)
	require.True(t, ok)
	assert.Equal(t, 1, gen.imageCalls)
	// Text fallback also errors here, so the degraded wording surfaces.
	assert.Equal(t, msgGenerationError, answer.Text)
}

func TestRouteImageRetrievalError(t *testing.T) {
	router := newTestRouter(&fakeRetriever{err: errors.New("db down")}, &fakeGenerator{}, nil)

	out := router.RouteImage(context.Background(), "이 버튼 뭐야?", llmservice.Image{}, 5)
	answer, ok := out.(*ImageAnswer)
	require.True(t, ok)
	assert.Equal(t, msgNoManualInfoDB, answer.Text)
	assert.NotEmpty(t, answer.Err)
}
