// Package openaiservice implements llm.Provider on the OpenAI chat
// completions API using strict JSON-schema response formats.
package openaiservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"SymptomCheck_V0.1/internal/llm"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
)

// ErrMissingAPIKey is returned by NewClient when no credential is configured.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable is not set")

// Config holds what NewClient needs; an empty BaseURL keeps the SDK default.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the OpenAI API for structured responses.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds an OpenAI-backed provider without contacting the API.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	oaCfg := openai.DefaultConfig(apiKey)
	oaCfg.HTTPClient = &http.Client{Timeout: timeout}
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client: openai.NewClientWithConfig(oaCfg),
		model:  model,
	}, nil
}

// Name implements llm.Provider.
func (c *Client) Name() string {
	return "openai"
}

// Generate sends the system instruction and prompt as a two-message chat and
// returns the assistant's content.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.2,
	}
	switch {
	case req.Schema != nil:
		def := req.Schema.Definition()
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "structured_response",
				Schema: &def,
				Strict: true,
			},
		}
	case req.ResponseMimeType == llm.StructuredMimeType:
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	zerolog.Ctx(ctx).Debug().Str("model", model).Msg("Calling OpenAI API...")

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices found in OpenAI response")
	}
	return resp.Choices[0].Message.Content, nil
}
