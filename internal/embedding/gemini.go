package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const geminiEmbedEndpoint = "https://generativelanguage.googleapis.com/v1/models/%s:embedContent"

type geminiContentPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiContentPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"task_type,omitempty"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// GeminiProvider calls the Gemini embedContent REST API.
type GeminiProvider struct {
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
}

func NewGeminiProvider(apiKey, model string, dimensions int) *GeminiProvider {
	if model == "" {
		model = "text-embedding-004"
	}
	if dimensions == 0 {
		dimensions = 768
	}
	return &GeminiProvider{
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.apiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}

	payload := geminiEmbedRequest{
		Model:   p.model,
		Content: geminiContent{Parts: []geminiContentPart{{Text: text}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(geminiEmbedEndpoint, p.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini embed: status %d, body %s", res.StatusCode, string(resBody))
	}

	var parsed geminiEmbedResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, errors.New("gemini embed: empty embedding in response")
	}
	return parsed.Embedding.Values, nil
}

func (p *GeminiProvider) Dimensions() int {
	return p.dimensions
}
