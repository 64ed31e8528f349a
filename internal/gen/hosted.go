package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/naoko-ai/naoko/internal/errors"
)

// TokenSource supplies a hosted-API credential. An empty string means the
// hosted tier must be skipped without consuming attempts.
type TokenSource func() string

// HostedBackend calls a chat-completions style HTTP endpoint. It is the
// middle tier of the fallback chain: retried up to its attempt budget with
// backoff, and short-circuited entirely when no credential is available.
type HostedBackend struct {
	url      string
	model    string
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	tokens   TokenSource
	client   *http.Client
}

// NewHostedBackend creates the hosted-API backend tier.
func NewHostedBackend(url, model string, attempts int, backoff, timeout time.Duration, tokens TokenSource) *HostedBackend {
	return &HostedBackend{
		url:      url,
		model:    model,
		attempts: attempts,
		backoff:  backoff,
		timeout:  timeout,
		tokens:   tokens,
		client:   &http.Client{},
	}
}

func (h *HostedBackend) Name() string           { return "hosted-api" }
func (h *HostedBackend) Attempts() int          { return h.attempts }
func (h *HostedBackend) Backoff() time.Duration { return h.backoff }
func (h *HostedBackend) Timeout() time.Duration { return h.timeout }

// Available reports whether a credential can be loaded. Missing credentials
// skip the tier; they never error.
func (h *HostedBackend) Available() bool {
	return h.tokens != nil && h.tokens() != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (h *HostedBackend) Generate(ctx context.Context, req Request) (string, error) {
	token := h.tokens()
	if token == "" {
		return "", errors.ErrNoCredentials
	}

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{Model: h.model, Messages: messages})
	if err != nil {
		return "", errors.NewBackendError(h.Name(), "failed to encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewBackendError(h.Name(), "failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.NewBackendError(h.Name(), "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", errors.NewBackendError(h.Name(), "failed to read response", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", errors.NewBackendError(h.Name(), "malformed response", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, parsed.Error.Message)
		}
		return "", errors.NewBackendError(h.Name(), msg, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.NewBackendError(h.Name(), "empty response", nil)
	}
	return parsed.Choices[0].Message.Content, nil
}
