// Package llm wraps the Gemini text-completion service. One outbound call
// per request, no retries; retry policy belongs to the caller.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Gemini API constants
const (
	DefaultBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel           = "gemini-1.5-flash"
	DefaultMaxOutputTokens = 2048
	DefaultTimeout         = 30 * time.Second

	defaultTemperature = 0.7
	defaultTopP        = 0.9
)

// ErrUnavailable reports that the completion service is unreachable, errored,
// or timed out.
var ErrUnavailable = errors.New("completion service unavailable")

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey          string
	model           string
	maxOutputTokens int
	baseURL         string
	httpClient      *http.Client
}

// geminiPart is a single text fragment.
type geminiPart struct {
	Text string `json:"text"`
}

// geminiContent is a role-tagged list of parts.
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiGenerationConfig tunes sampling.
type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiRequest is a generateContent request body.
type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

// geminiResponse is a generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient creates a Gemini client.
func NewClient(apiKey, model string, maxOutputTokens int, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if maxOutputTokens <= 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		apiKey:          apiKey,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		baseURL:         DefaultBaseURL,
		httpClient:      &http.Client{Timeout: timeout},
	}, nil
}

// Complete sends one completion request: domain-scoping system instructions,
// the grounding context assembled from retrieved data, and the user message.
// Failures wrap ErrUnavailable.
func (c *Client) Complete(ctx context.Context, system, contextData, userMessage string) (string, error) {
	var userText strings.Builder
	if contextData != "" {
		userText.WriteString(contextData)
		userText.WriteString("\n\n")
	}
	userText.WriteString("PREGUNTA DEL USUARIO: ")
	userText.WriteString(userMessage)

	req := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: userText.String()}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     defaultTemperature,
			TopP:            defaultTopP,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	resp, err := c.makeRequest(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty candidate list: %w", ErrUnavailable)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("empty completion text: %w", ErrUnavailable)
	}

	return strings.TrimSpace(text.String()), nil
}

// Ping issues a minimal completion to verify the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, "", "", "Test")
	return err
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// makeRequest performs the HTTP round trip to the Gemini API.
func (c *Client) makeRequest(ctx context.Context, req geminiRequest) (*geminiResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v: %w", err, ErrUnavailable)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v: %w", err, ErrUnavailable)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s: %w", httpResp.StatusCode, string(body), ErrUnavailable)
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v: %w", err, ErrUnavailable)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("API error %d: %s: %w", resp.Error.Code, resp.Error.Message, ErrUnavailable)
	}

	return &resp, nil
}

// SetBaseURL overrides the Gemini API base URL.  Used in tests.
func (c *Client) SetBaseURL(url string) { c.baseURL = url }
