// Package ai defines the chat-completion collaborator. The session engine
// treats it as an opaque service: it accepts a persona profile, a message
// and history, and returns text. The title engine never calls it.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ai-roleplay-chat/backend/persona"
	"ai-roleplay-chat/backend/session/models"
)

// Reply is the completion result.
type Reply struct {
	Content      string `json:"content"`
	IsComplete   bool   `json:"isComplete"`
	FinishReason string `json:"finishReason,omitempty"`
}

// Completer produces a character reply for a user message. Implementations
// may fail or time out; callers must treat errors as transient.
type Completer interface {
	Complete(ctx context.Context, p persona.Persona, message string, history []models.Message) (Reply, error)
}

// HTTPCompleter forwards completion requests to an external LLM proxy over
// JSON/HTTP.
type HTTPCompleter struct {
	client  *http.Client
	baseURL string
}

// NewHTTPCompleter creates a completer against the given proxy base URL.
func NewHTTPCompleter(baseURL string, timeout time.Duration) *HTTPCompleter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPCompleter{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type completionRequest struct {
	Persona persona.Persona  `json:"persona"`
	Message string           `json:"message"`
	History []models.Message `json:"history,omitempty"`
}

func (c *HTTPCompleter) Complete(ctx context.Context, p persona.Persona, message string, history []models.Message) (Reply, error) {
	payload, err := json.Marshal(completionRequest{Persona: p, Message: message, History: history})
	if err != nil {
		return Reply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat", bytes.NewReader(payload))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Reply{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reply{}, fmt.Errorf("chat completion failed with status %d", resp.StatusCode)
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// EchoCompleter is a local stand-in used in tests and when no LLM proxy is
// configured.
type EchoCompleter struct{}

func (EchoCompleter) Complete(ctx context.Context, p persona.Persona, message string, history []models.Message) (Reply, error) {
	name := p.Name
	if name == "" {
		name = persona.UnknownName
	}
	return Reply{
		Content:      fmt.Sprintf("%s收到了你的消息：%s", name, message),
		IsComplete:   true,
		FinishReason: "stop",
	}, nil
}
