package rag

import "manual-rag/internal/calendar"

// Intent is the coarse request category the router resolves.
type Intent string

const (
	IntentManual   Intent = "manual"
	IntentChat     Intent = "chat"
	IntentReminder Intent = "reminder"
	IntentImage    Intent = "image_query"
)

// ImageIntent shapes the framing of an image-bearing request. It never
// gates retrieval: image requests always attempt retrieval.
type ImageIntent string

const (
	ImageManual ImageIntent = "image_manual"
	ImageOther  ImageIntent = "image_other"
)

// Source tags where an answer came from.
type Source string

const (
	SourceRAG         Source = "rag"
	SourceSearchError Source = "rag_search_error"
	SourceNoHit       Source = "rag_nohit"
	SourceLLMError    Source = "rag_llm_error"
	SourceLLMOnly     Source = "llm_only"
	SourceImageManual Source = "image+manual"
)

// Hit is one retrieved chunk with its resolved page metadata, ordered by
// descending similarity.
type Hit struct {
	ChunkID   int64
	Score     float32
	Text      string
	ManualID  int64
	Page      int
	ImagePath string // empty when no page image is registered
}

// Page is the client-facing descriptor for one retrieved manual page.
type Page struct {
	ManualID    int64   `json:"manual_id"`
	Page        int     `json:"page"`
	Score       float32 `json:"score"`
	Text        string  `json:"text"`
	ImagePath   string  `json:"image_path,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	ImageBase64 string  `json:"image_base64,omitempty"`
}

// Outcome is the tagged result of routing a request. Each variant carries
// exactly the fields relevant to it.
type Outcome interface {
	Kind() Intent
}

// ManualAnswer is a retrieval-grounded answer (including the no-hit and
// degraded cases, distinguished by Source).
type ManualAnswer struct {
	Text      string
	Source    Source
	Pages     []Page
	Proactive string
	Err       string
}

func (*ManualAnswer) Kind() Intent { return IntentManual }

// ChatAnswer is a pure generative reply produced only when retrieval found
// nothing and the heuristic said chat.
type ChatAnswer struct {
	Text string
}

func (*ChatAnswer) Kind() Intent { return IntentChat }

// ImageAnswer is the result of the multimodal path.
type ImageAnswer struct {
	Text     string
	Source   Source
	Pages    []Page
	Snippets []string
	Err      string
}

func (*ImageAnswer) Kind() Intent { return IntentImage }

// ReminderConfirmation reports a successfully created calendar event.
type ReminderConfirmation struct {
	Message string
	Event   *calendar.Event
}

func (*ReminderConfirmation) Kind() Intent { return IntentReminder }
