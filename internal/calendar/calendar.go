package calendar

import (
	"context"
	"time"
)

// Event is a calendar entry in client-ready form: date and time are split
// strings ("2025-11-17", "09:00") so the frontend renders them directly.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Link     string `json:"link,omitempty"`
}

// Client is the external calendar capability. Creation failures must reach
// the caller: the user has to know whether the event actually exists.
type Client interface {
	CreateEvent(ctx context.Context, title string, start, end time.Time) (*Event, error)
	ListUpcoming(ctx context.Context, maxResults int) ([]Event, error)
}
