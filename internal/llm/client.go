package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathanvkeller/lease-analysis/internal/domain"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/chat/completions"
	defaultModel   = "gpt-4o"

	// Lower temperature for more deterministic outputs.
	requestTemperature = 0.2
)

// Client handles communication with an OpenAI-compatible chat completions
// endpoint. It implements Gateway.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Message represents a chat message.
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content (text or image).
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents an inline data URL in the message.
type ImageURL struct {
	URL string `json:"url"`
}

// Request represents the API request structure.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// Response represents the API response structure.
type Response struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice represents a single completion choice.
type Choice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// Usage reports token consumption for a completed call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIError is the error body an OpenAI-compatible endpoint returns.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the completions endpoint. Used by tests and by
// OpenAI-compatible proxies.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new LLM client.
func NewClient(apiKey, model string, opts ...Option) *Client {
	if model == "" {
		model = defaultModel
	}

	c := &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Generate sends one instruction + document payload to the API and returns
// an explicit result. Every failure mode collapses into an unsuccessful
// CallResult with a message; Generate never returns an error.
func (c *Client) Generate(ctx context.Context, instruction string, doc domain.Payload) domain.CallResult {
	req := c.buildRequest(instruction, doc)

	body, err := json.Marshal(req)
	if err != nil {
		return failure(fmt.Sprintf("marshal request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return failure(fmt.Sprintf("build request: %v", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failure(fmt.Sprintf("send request: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Sprintf("read response: %v", err))
	}

	if resp.StatusCode != http.StatusOK {
		return failure(apiFailureMessage(resp.StatusCode, respBody))
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return failure(fmt.Sprintf("parse response: %v", err))
	}

	if apiResp.Error != nil {
		return failure(apiResp.Error.Message)
	}

	if len(apiResp.Choices) == 0 {
		return failure("no choices in API response")
	}

	return domain.CallResult{
		Success:      true,
		Text:         apiResp.Choices[0].Message.Content,
		Model:        apiResp.Model,
		InputTokens:  apiResp.Usage.PromptTokens,
		OutputTokens: apiResp.Usage.CompletionTokens,
	}
}

// buildRequest constructs the API request: the instruction rides as the
// system message, the document as inline data-URL parts in the user message.
func (c *Client) buildRequest(instruction string, doc domain.Payload) *Request {
	parts := make([]ContentPart, 0, len(doc.Parts))
	for _, part := range doc.Parts {
		encoded := base64.StdEncoding.EncodeToString(part)
		parts = append(parts, ContentPart{
			Type: "image_url",
			ImageURL: &ImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", doc.MediaType, encoded),
			},
		})
	}

	return &Request{
		Model: c.model,
		Messages: []Message{
			{
				Role: "system",
				Content: []ContentPart{
					{Type: "text", Text: instruction},
				},
			},
			{
				Role:    "user",
				Content: parts,
			},
		},
		Temperature: requestTemperature,
	}
}

// apiFailureMessage builds a failure message from a non-200 response,
// preferring the structured error body when one is present.
func apiFailureMessage(status int, body []byte) string {
	var errResp struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
		return fmt.Sprintf("API returned status %d: %s", status, errResp.Error.Message)
	}
	return fmt.Sprintf("API returned status %d: %s", status, string(body))
}

func failure(msg string) domain.CallResult {
	return domain.CallResult{Success: false, ErrMessage: msg}
}
