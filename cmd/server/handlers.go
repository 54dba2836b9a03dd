package main

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"manual-rag/internal/calendar"
	"manual-rag/internal/llmservice"
	"manual-rag/internal/rag"
	"manual-rag/internal/reminder"
)

const msgReminderGuidance = "일정을 이해하지 못했어요. 날짜나 시간을 함께 알려주세요. 예: 내일 오전 10시에 필터 청소"

type handlers struct {
	router   *rag.Router
	calendar calendar.Client
	maxDocs  int
}

type queryRequest struct {
	Question string `json:"question"`
	Intent   string `json:"intent"`
	TopK     int    `json:"top_k"`
}

// answerResponse is the wire shape for every outcome variant; fields not
// relevant to a variant are omitted.
type answerResponse struct {
	Intent    string          `json:"intent"`
	Answer    string          `json:"answer"`
	Source    string          `json:"source,omitempty"`
	Pages     []rag.Page      `json:"pages,omitempty"`
	Snippets  []string        `json:"snippets,omitempty"`
	Proactive string          `json:"proactive,omitempty"`
	Event     *calendar.Event `json:"event,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func renderOutcome(out rag.Outcome) answerResponse {
	switch v := out.(type) {
	case *rag.ManualAnswer:
		return answerResponse{
			Intent:    string(v.Kind()),
			Answer:    v.Text,
			Source:    string(v.Source),
			Pages:     v.Pages,
			Proactive: v.Proactive,
			Error:     v.Err,
		}
	case *rag.ChatAnswer:
		return answerResponse{
			Intent: string(v.Kind()),
			Answer: v.Text,
			Source: string(rag.SourceLLMOnly),
		}
	case *rag.ImageAnswer:
		return answerResponse{
			Intent:   string(v.Kind()),
			Answer:   v.Text,
			Source:   string(v.Source),
			Pages:    v.Pages,
			Snippets: v.Snippets,
			Error:    v.Err,
		}
	case *rag.ReminderConfirmation:
		return answerResponse{
			Intent: string(v.Kind()),
			Answer: v.Message,
			Event:  v.Event,
		}
	default:
		return answerResponse{Error: "unknown outcome"}
	}
}

func (h *handlers) Query(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}
	if req.TopK <= 0 {
		req.TopK = h.maxDocs
	}

	out, err := h.router.Ask(c.Context(), req.Question, req.TopK, req.Intent)
	if err != nil {
		return h.reminderError(c, err)
	}
	return c.JSON(renderOutcome(out))
}

func (h *handlers) ImageQuery(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is unreadable"})
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is unreadable"})
	}

	mime := fileHeader.Header.Get("Content-Type")
	if mime == "" {
		mime = rag.MimeForImage(fileHeader.Filename)
	}

	question := strings.TrimSpace(c.FormValue("question"))
	topK := h.maxDocs
	if v, err := strconv.Atoi(c.FormValue("top_k")); err == nil && v > 0 {
		topK = v
	}

	out := h.router.RouteImage(c.Context(), question, llmservice.Image{MimeType: mime, Data: data}, topK)
	return c.JSON(renderOutcome(out))
}

func (h *handlers) ListEvents(c *fiber.Ctx) error {
	if h.calendar == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "calendar is not configured"})
	}
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	events, err := h.calendar.ListUpcoming(c.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list calendar events")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "calendar lookup failed"})
	}
	return c.JSON(fiber.Map{"events": events})
}

// reminderError maps the reminder path's user-visible failures: unparseable
// scheduling input gets corrective guidance, a failed calendar dispatch is a
// server-side error.
func (h *handlers) reminderError(c *fiber.Ctx, err error) error {
	if errors.Is(err, reminder.ErrNoSignal) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgReminderGuidance})
	}
	if errors.Is(err, rag.ErrCalendarDispatch) {
		log.Error().Err(err).Msg("calendar dispatch failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "일정 등록에 실패했습니다. 잠시 후 다시 시도해 주세요."})
	}
	log.Error().Err(err).Msg("query handling failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "요청 처리 중 오류가 발생했습니다."})
}
