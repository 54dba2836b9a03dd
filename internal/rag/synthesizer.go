package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"manual-rag/internal/llmservice"
)

// Fixed user-facing strings for the degradation chain.
const (
	msgGenerationFailed = "응답 생성에 실패했습니다."
	msgGenerationError  = "답변 생성 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
	msgNoManualInfo     = "관련 매뉴얼 내용을 찾지 못했어요."
	msgNoManualInfoDB   = "매뉴얼 DB에서 관련 정보를 찾지 못했습니다."
	msgChatUnavailable  = "일반 대화를 처리하지 못했습니다. 잠시 후 다시 시도해 주세요."
	msgProactive        = "필터 청소/교체 주기를 캘린더에 리마인더로 등록해 드릴까요?"

	genericImageQuery = "제품 사진과 관련된 설명을 찾아줘"
)

// generator is the slice of the LLM client the synthesizer needs.
type generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImages(ctx context.Context, prompt string, images []llmservice.Image) (string, error)
	Caption(ctx context.Context, img llmservice.Image) (string, error)
}

// Synthesizer produces the final answer text, text-only or multimodal,
// with layered fallback. It never returns an error to transport: failures
// degrade into fixed explanatory strings, and the returned error only
// informs the router's source tagging.
type Synthesizer struct {
	llm generator
}

func NewSynthesizer(llm generator) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// SynthesizeText answers a question from retrieved manual snippets. The
// returned text is always usable; a non-nil error just marks that the
// generation call itself failed.
func (s *Synthesizer) SynthesizeText(ctx context.Context, query, contextBlock string) (string, error) {
	prompt := fmt.Sprintf(
		"다음 전자제품 사용설명서 내용을 참고해서, 질문에 한국어로 자세히 답변해줘.\n"+
			"단, 매뉴얼에 없는 내용은 추측하지 말고 '매뉴얼에 정보가 없다'고 말해줘.\n\n"+
			"질문: %s\n\n"+
			"관련 매뉴얼 내용:\n%s\n\n"+
			"답변은 한국어로 작성하고, 단계가 있으면 번호 목록으로 정리해줘.",
		query, contextBlock,
	)

	text, err := s.llm.GenerateText(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("text synthesis failed")
		return msgGenerationError, err
	}
	if text == "" {
		return msgGenerationFailed, nil
	}
	return text, nil
}

// Chat answers a non-manual question directly, without retrieved context.
func (s *Synthesizer) Chat(ctx context.Context, query string) string {
	prompt := fmt.Sprintf(
		"너는 전자기기 사용자 도우미야. 너무 장황하지 않게, 친절하게 답해줘.\n\n사용자 질문: %s",
		query,
	)
	text, err := s.llm.GenerateText(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Msg("chat generation failed")
		return msgChatUnavailable
	}
	if text == "" {
		return msgGenerationFailed
	}
	return text
}

// Caption describes the user's photo, best effort: any failure yields an
// empty caption and the request carries on with text alone.
func (s *Synthesizer) Caption(ctx context.Context, img llmservice.Image) string {
	caption, err := s.llm.Caption(ctx, img)
	if err != nil {
		log.Warn().Err(err).Msg("image captioning failed, continuing without caption")
		return ""
	}
	return strings.TrimSpace(caption)
}

// SynthesizeMultimodal invokes the multimodal generation capability with
// the question, retrieved snippets, the user's photo, and (when present)
// the matching manual page image.
func (s *Synthesizer) SynthesizeMultimodal(
	ctx context.Context,
	question string,
	snippets []string,
	userImage llmservice.Image,
	pageImage *llmservice.Image,
	page int,
	imageIntent ImageIntent,
) (string, error) {
	var sb strings.Builder
	if imageIntent == ImageManual {
		sb.WriteString("사용자가 전자제품 사진과 함께 사용법을 물었어. 첫 번째 이미지는 사용자가 찍은 사진이야.\n")
	} else {
		sb.WriteString("사용자가 제품 사진을 보내왔어. 첫 번째 이미지는 사용자가 찍은 사진이야.\n")
	}
	if pageImage != nil {
		fmt.Fprintf(&sb, "두 번째 이미지는 관련 매뉴얼 %d페이지야. 사진과 매뉴얼을 비교해서 답해줘.\n", page)
	}
	fmt.Fprintf(&sb, "\n질문: %s\n\n관련 매뉴얼 내용:\n", question)
	for i, snippet := range snippets {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, snippet)
	}
	sb.WriteString("\n매뉴얼에 없는 내용은 추측하지 말고, 한국어로 답변해줘.")

	images := []llmservice.Image{userImage}
	if pageImage != nil {
		images = append(images, *pageImage)
	}

	text, err := s.llm.GenerateWithImages(ctx, sb.String(), images)
	if err != nil {
		return "", err
	}
	if text == "" {
		return msgGenerationFailed, nil
	}
	return text, nil
}
