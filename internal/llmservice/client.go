package llmservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const generateEndpoint = "https://generativelanguage.googleapis.com/v1/models/%s:generateContent"

// Image is an inline image handed to a multimodal generation call.
type Image struct {
	MimeType string
	Data     []byte
}

type chatInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type chatPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *chatInlineData `json:"inline_data,omitempty"`
}

type chatContent struct {
	Parts []chatPart `json:"parts"`
	Role  string     `json:"role,omitempty"`
}

type chatRequest struct {
	Contents []chatContent `json:"contents"`
}

type chatResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client is the generative capability, constructed once at process start
// and shared read-only by every component that needs it.
type Client struct {
	apiKey string
	model  string
	http   *http.Client
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: 120 * time.Second},
	}
}

// GenerateText runs a single text-only generation call.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []chatPart{{Text: prompt}})
}

// GenerateWithImages runs a multimodal generation call: the prompt followed
// by the given images, in order.
func (c *Client) GenerateWithImages(ctx context.Context, prompt string, images []Image) (string, error) {
	parts := []chatPart{{Text: prompt}}
	for _, img := range images {
		parts = append(parts, chatPart{
			InlineData: &chatInlineData{
				MimeType: img.MimeType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	return c.generate(ctx, parts)
}

// Caption describes a user photo in one or two Korean sentences, for use as
// a retrieval query.
func (c *Client) Caption(ctx context.Context, img Image) (string, error) {
	parts := []chatPart{
		{Text: "이 사진에 보이는 전자제품이나 부품, 표시등, 버튼 등을 한두 문장으로 설명해줘. 설명만 출력해."},
		{InlineData: &chatInlineData{
			MimeType: img.MimeType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}},
	}
	return c.generate(ctx, parts)
}

func (c *Client) generate(ctx context.Context, parts []chatPart) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("gemini api key is not set")
	}

	payload := chatRequest{
		Contents: []chatContent{{Parts: parts, Role: "user"}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(generateEndpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini generate: status %d, body %s", res.StatusCode, string(resBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return "", err
	}
	return firstCandidateText(parsed), nil
}

// firstCandidateText walks the candidates for the first non-empty text
// part. An empty string means the model produced nothing usable; callers
// own the fallback wording.
func firstCandidateText(res chatResponse) string {
	for _, cand := range res.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}
