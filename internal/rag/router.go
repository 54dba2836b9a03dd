package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"manual-rag/internal/calendar"
	"manual-rag/internal/llmservice"
	"manual-rag/internal/reminder"
)

// ErrCalendarDispatch marks a failed calendar event creation. Unlike the
// read paths this must surface: the caller has to know whether the event
// exists.
var ErrCalendarDispatch = errors.New("calendar dispatch failed")

// retriever is the slice of the retrieval engine the router needs.
type retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Hit, error)
}

// Router classifies a request, dispatches it to the reminder path or the
// retrieval+synthesis path, and reconciles retrieval evidence against the
// heuristic intent.
type Router struct {
	retriever retriever
	synth     *Synthesizer
	assembler Assembler
	calendar  calendar.Client

	now func() time.Time
}

func NewRouter(r retriever, synth *Synthesizer, assembler Assembler, cal calendar.Client) *Router {
	return &Router{
		retriever: r,
		synth:     synth,
		assembler: assembler,
		calendar:  cal,
		now:       time.Now,
	}
}

// Ask is the top-level entry point. An explicit intent from the caller
// takes precedence over keyword detection; otherwise scheduling phrasing
// selects the reminder path and everything else goes through retrieval.
// The returned error is non-nil only for the user-visible reminder
// failures (unparseable input, calendar dispatch).
func (r *Router) Ask(ctx context.Context, query string, k int, explicitIntent string) (Outcome, error) {
	intent := explicitIntent
	if intent == "" {
		if reminder.IsSchedulingRequest(query) {
			intent = string(IntentReminder)
		} else {
			intent = "rag"
		}
	}
	log.Info().Str("intent", intent).Str("query", query).Msg("routing query")

	if intent == string(IntentReminder) {
		return r.routeReminder(ctx, query)
	}
	return r.Route(ctx, query, k), nil
}

// Route runs the retrieval+synthesis path. Retrieval is always attempted
// first: any hit makes the answer manual-sourced regardless of the keyword
// heuristic, and only a zero-hit result combined with a chat
// classification falls back to a pure generative answer.
func (r *Router) Route(ctx context.Context, query string, k int) Outcome {
	intent := ClassifyIntent(query)

	hits, retErr := r.retriever.Retrieve(ctx, query, k)
	r.logHits(query, hits, retErr)

	if len(hits) > 0 {
		contextBlock := r.assembler.ContextBlock(hits)
		text, synthErr := r.synth.SynthesizeText(ctx, query, contextBlock)

		answer := &ManualAnswer{
			Text:      text,
			Source:    SourceRAG,
			Pages:     r.assembler.Pages(hits),
			Proactive: msgProactive,
		}
		if synthErr != nil {
			answer.Source = SourceLLMError
			answer.Err = synthErr.Error()
		}
		return answer
	}

	// Zero hits: only a heuristic chat classification may leave the
	// manual domain.
	if intent == IntentChat {
		return &ChatAnswer{Text: r.synth.Chat(ctx, query)}
	}

	answer := &ManualAnswer{Text: msgNoManualInfo, Source: SourceNoHit}
	if retErr != nil {
		answer.Text = msgNoManualInfoDB
		answer.Source = SourceSearchError
		answer.Err = retErr.Error()
	}
	return answer
}

// RouteImage handles (question + photo) requests: caption the photo,
// retrieve with the combined query, then synthesize a multimodal answer
// with the best-matching manual page. Captioning and multimodal synthesis
// both degrade rather than fail the request.
func (r *Router) RouteImage(ctx context.Context, query string, userImage llmservice.Image, k int) Outcome {
	imageIntent := ClassifyImageIntent(query)

	caption := r.synth.Caption(ctx, userImage)
	combined := combineQuery(strings.TrimSpace(query), caption)

	hits, retErr := r.retriever.Retrieve(ctx, combined, k)
	r.logHits(combined, hits, retErr)
	if retErr != nil {
		return &ImageAnswer{
			Text:   msgNoManualInfoDB,
			Source: SourceImageManual,
			Err:    retErr.Error(),
		}
	}

	snippets := r.assembler.Snippets(hits)

	question := strings.TrimSpace(query)
	if question == "" {
		question = combined
	}

	// Even with zero hits the photo itself is still evidence: synthesis
	// runs with whatever snippets exist, empty included.
	var pageImage *llmservice.Image
	var page int
	if len(hits) > 0 && hits[0].ImagePath != "" {
		page = hits[0].Page
		if raw, err := os.ReadFile(hits[0].ImagePath); err == nil {
			pageImage = &llmservice.Image{MimeType: MimeForImage(hits[0].ImagePath), Data: raw}
		}
	}

	text, synthErr := r.synth.SynthesizeMultimodal(ctx, question, snippets, userImage, pageImage, page, imageIntent)
	if synthErr != nil {
		// Discard the multimodal attempt and answer from text alone.
		log.Warn().Err(synthErr).Msg("multimodal synthesis failed, falling back to text path")
		text, _ = r.synth.SynthesizeText(ctx, combined, r.assembler.ContextBlock(hits))
	}

	return &ImageAnswer{
		Text:     text,
		Source:   SourceImageManual,
		Pages:    r.assembler.Pages(hits),
		Snippets: snippets,
	}
}

func (r *Router) routeReminder(ctx context.Context, query string) (Outcome, error) {
	rem, err := reminder.Extract(query, r.now())
	if err != nil {
		return nil, err
	}

	if r.calendar == nil {
		return nil, fmt.Errorf("%w: calendar client not configured", ErrCalendarDispatch)
	}
	event, err := r.calendar.CreateEvent(ctx, rem.Title, rem.Start, rem.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarDispatch, err)
	}
	log.Info().Str("event_id", event.ID).Str("title", rem.Title).Msg("calendar event created")

	return &ReminderConfirmation{
		Message: reminder.FormatConfirmation(rem.Start, rem.Title),
		Event:   event,
	}, nil
}

// logHits emits the diagnostic records for observability; they never
// affect control flow.
func (r *Router) logHits(query string, hits []Hit, err error) {
	ev := log.Debug().Str("query", query).Int("hits", len(hits))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("retrieval done")

	for i, hit := range hits {
		if i >= 3 {
			break
		}
		snippet := hit.Text
		if runes := []rune(snippet); len(runes) > 80 {
			snippet = string(runes[:80])
		}
		log.Debug().
			Int64("manual_id", hit.ManualID).
			Int("page", hit.Page).
			Float32("score", hit.Score).
			Str("snippet", snippet).
			Msg("retrieval hit")
	}
}

// combineQuery picks the retrieval query for the image path: question plus
// caption, caption alone, question alone, then a generic fallback.
func combineQuery(question, caption string) string {
	switch {
	case question != "" && caption != "":
		return question + "\n이미지 설명: " + caption
	case caption != "":
		return caption
	case question != "":
		return question
	default:
		return genericImageQuery
	}
}
