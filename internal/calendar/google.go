package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

const baseURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

// GoogleClient talks to the Google Calendar API using a previously issued
// OAuth token file. Obtaining and refreshing credentials is out of scope
// here; the token file is treated as an opaque capability.
type GoogleClient struct {
	http     *http.Client
	timezone string
}

func NewGoogleClient(tokenFile, timezone string) (*GoogleClient, error) {
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse calendar token: %w", err)
	}
	if timezone == "" {
		timezone = "Asia/Seoul"
	}
	return &GoogleClient{
		http:     oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&token)),
		timezone: timezone,
	}, nil
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventBody struct {
	Summary  string    `json:"summary"`
	Location string    `json:"location,omitempty"`
	Start    eventTime `json:"start"`
	End      eventTime `json:"end"`
	ID       string    `json:"id,omitempty"`
	HTMLLink string    `json:"htmlLink,omitempty"`
}

func (c *GoogleClient) CreateEvent(ctx context.Context, title string, start, end time.Time) (*Event, error) {
	body := eventBody{
		Summary: title,
		Start:   eventTime{DateTime: start.Format(time.RFC3339), TimeZone: c.timezone},
		End:     eventTime{DateTime: end.Format(time.RFC3339), TimeZone: c.timezone},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar insert: status %d, body %s", res.StatusCode, string(resBody))
	}

	var created eventBody
	if err := json.Unmarshal(resBody, &created); err != nil {
		return nil, err
	}

	date, timeStr := splitDateTime(created.Start.DateTime)
	return &Event{
		ID:    created.ID,
		Title: created.Summary,
		Date:  date,
		Time:  timeStr,
		Link:  created.HTMLLink,
	}, nil
}

func (c *GoogleClient) ListUpcoming(ctx context.Context, maxResults int) ([]Event, error) {
	params := url.Values{}
	params.Set("timeMin", time.Now().UTC().Format(time.RFC3339))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar list: status %d, body %s", res.StatusCode, string(resBody))
	}

	var parsed struct {
		Items []struct {
			ID       string    `json:"id"`
			Summary  string    `json:"summary"`
			Location string    `json:"location"`
			Start    eventTime `json:"start"`
		} `json:"items"`
	}
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		raw := item.Start.DateTime
		if raw == "" {
			raw = item.Start.Date
		}
		date, timeStr := splitDateTime(raw)

		title := item.Summary
		if title == "" {
			title = "(제목 없음)"
		}
		events = append(events, Event{
			ID:       item.ID,
			Title:    title,
			Location: item.Location,
			Date:     date,
			Time:     timeStr,
		})
	}
	return events, nil
}

// splitDateTime cuts an RFC3339 (or date-only) string into the date and
// HH:MM parts the client consumes.
func splitDateTime(raw string) (date, timeStr string) {
	if len(raw) >= 10 {
		date = raw[:10]
	}
	if idx := len("2006-01-02T"); len(raw) >= idx+5 && raw[10] == 'T' {
		timeStr = raw[idx : idx+5]
	}
	return date, timeStr
}
