// Package llm talks to an Azure-style OpenAI-compatible inference
// endpoint: chat completions (text and vision) and embeddings, with each
// capability behind its own deployment name.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config is the per-deployment model configuration. It is injected into
// the client rather than read from process globals so tests can point it
// at a fake endpoint.
type Config struct {
	Endpoint         string
	APIKey           string
	APIVersion       string
	ChatDeployment   string
	EmbedDeployment  string
	VisionDeployment string
}

// Client issues completion and embedding requests
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client. Endpoint and API key are required.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("model endpoint not configured")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model API key not configured")
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Config returns the injected configuration
func (c *Client) Config() Config {
	return c.cfg
}

// Message is one role-tagged chat message. Content is either a plain
// string or a list of ContentPart for vision requests.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one piece of a multi-part message
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an inline data URL for vision requests
type ImageURL struct {
	URL string `json:"url"`
}

// TextMessage builds a plain text message
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// VisionMessage builds a user message pairing a prompt with an inline
// base64-encoded PNG.
func VisionMessage(prompt, imageBase64 string) Message {
	return Message{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &ImageURL{URL: "data:image/png;base64," + imageBase64}},
		},
	}
}

// CompleteOptions control sampling and output shape
type CompleteOptions struct {
	Temperature float64
	MaxTokens   int
	JSONOnly    bool
}

type chatRequest struct {
	Model          string      `json:"model"`
	Messages       []Message   `json:"messages"`
	Temperature    float64     `json:"temperature"`
	MaxTokens      int         `json:"max_tokens,omitempty"`
	ResponseFormat *respFormat `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete requests a chat completion from the given deployment and
// returns the raw text of the first choice. An empty completion is
// returned as-is; ExtractJSON turns it into ErrNoModelResponse.
func (c *Client) Complete(ctx context.Context, deployment string, messages []Message, opts CompleteOptions) (string, error) {
	reqBody := chatRequest{
		Model:       deployment,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONOnly {
		reqBody.ResponseFormat = &respFormat{Type: "json_object"}
	}

	body, err := c.post(ctx, deployment, "chat/completions", reqBody)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("api error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoModelResponse
	}

	return resp.Choices[0].Message.Content, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed generates an embedding vector for the given text
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := c.post(ctx, c.cfg.EmbedDeployment, "embeddings", embeddingRequest{
		Model: c.cfg.EmbedDeployment,
		Input: text,
	})
	if err != nil {
		return nil, err
	}

	var resp embeddingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoModelResponse
	}

	return resp.Data[0].Embedding, nil
}

func (c *Client) post(ctx context.Context, deployment, path string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), deployment, path, url.QueryEscape(c.cfg.APIVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// CosineSimilarity computes similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
