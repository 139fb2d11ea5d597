package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBodyChars bounds how much of an upstream error body is kept for logs.
const maxErrorBodyChars = 400

// CompletionProvider sends a chat-completion request and returns the reply.
type CompletionProvider interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// Message is a chat message in the provider's wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the upstream request body. Unset generation
// parameters are omitted.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
}

// CompletionResponse carries the extracted reply text.
type CompletionResponse struct {
	Content string
}

type groqProvider struct {
	client *http.Client
	url    string
	apiKey string
}

// NewGroqProvider returns a provider for an OpenAI-compatible chat-completions
// endpoint such as Groq's. url is the full endpoint URL.
func NewGroqProvider(url, apiKey string) CompletionProvider {
	return &groqProvider{
		client: &http.Client{},
		url:    url,
		apiKey: apiKey,
	}
}

// chatCompletionResponse declares only what is read: choices[0].message.content.
type chatCompletionResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *groqProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, resp.StatusCode, truncate(string(bodyBytes), maxErrorBodyChars))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	first := parsed.Choices[0]
	if first.Message == nil || first.Message.Content == nil {
		return nil, fmt.Errorf("%w: choices[0].message.content missing", ErrMalformedResponse)
	}

	return &CompletionResponse{Content: *first.Message.Content}, nil
}

// truncate shortens a string to a specified number of runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
