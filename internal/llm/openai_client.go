package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements Client against an OpenAI-compatible
// chat-completions endpoint. It performs exactly one HTTP attempt per
// Complete call and classifies the outcome into this package's sentinel
// errors; the Gateway owns retry and backoff, so this Client never retries
// internally.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIClient constructs an OpenAIClient. An empty baseURL defaults to
// the public OpenAI API.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user message at cfg's model and
// sampling parameters.
func (c *OpenAIClient) Complete(ctx context.Context, _ Tier, cfg TierConfig, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: no API credential configured", ErrAuthentication)
	}

	reqBody := chatRequest{
		Model:       cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: cfg.Temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %w", ErrMalformedRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrMalformedRequest, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrMalformedRequest, err)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrTransientServer, parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrTransientServer)
	}

	return parsed.Choices[0].Message.Content, nil
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %s", ErrRateLimited, status, body)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", ErrAuthentication, status, body)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: status %d: %s", ErrMalformedRequest, status, body)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrTransientServer, status, body)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrTransport, status, body)
	}
}
