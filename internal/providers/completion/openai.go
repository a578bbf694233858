package completion

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-5.2"
)

// openAI talks to any OpenAI-compatible chat completions endpoint.
type openAI struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	log     *zap.Logger
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
}

func newOpenAI(cfg Config, client *http.Client, log *zap.Logger) *openAI {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAI{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   model,
		client:  client,
		log:     log.Named("completion.openai"),
	}
}

func (p *openAI) Name() string { return TypeOpenAI }

func (p *openAI) Complete(ctx context.Context, systemInstruction, userText string) (string, error) {
	var out chatResponse
	err := doJSON(ctx, p.client, p.log, jsonRequest{
		provider: TypeOpenAI,
		model:    p.model,
		url:      joinURL(p.baseURL, "/chat/completions"),
		headers:  map[string]string{"Authorization": "Bearer " + p.apiKey},
		body: chatRequest{
			Model: p.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemInstruction},
				{Role: "user", Content: userText},
			},
		},
	}, &out)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrAPICallFailed)
	}
	return out.Choices[0].Message.Content, nil
}
