// Package assistant wraps the generative-language API behind a fixed
// content-creator persona.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// ErrMissingAPIKey indicates the generative-language key was not configured.
// This is fatal at startup: the assistant has no degraded mode.
var ErrMissingAPIKey = errors.New("assistant: missing api key")

// Assistant produces a text reply for a prompt. Calls are stateless; no
// conversation memory is kept between them.
type Assistant interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// Gemini is the production Assistant backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

// New constructs the Gemini assistant. The client is built eagerly so a bad
// key fails the process at startup instead of on the first chat.
func New(ctx context.Context, apiKey, model string, log *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: create client: %w", err)
	}

	return &Gemini{client: client, model: model, log: log}, nil
}

// Reply prepends the persona preamble to prompt and returns the model's text
// reply verbatim.
func (g *Gemini) Reply(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(systemPrompt+prompt), nil)
	if err != nil {
		return "", fmt.Errorf("assistant: generate content: %w", err)
	}

	text := resp.Text()
	g.log.Debug("assistant reply", "model", g.model, "chars", len(text))
	return text, nil
}
