package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrProviderNotConfigured = errors.New("completion provider not configured")
	ErrProviderNotSupported  = errors.New("completion provider not supported")
	ErrAPICallFailed         = errors.New("completion api call failed")
)

const (
	TypeOpenAI = "openai"
	TypeGemini = "gemini"

	defaultTimeout = 60 * time.Second
)

// Provider turns a system instruction plus user text into a single completion.
type Provider interface {
	Complete(ctx context.Context, systemInstruction, userText string) (string, error)
	Name() string
}

type Config struct {
	Type    string
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// New builds the provider selected by cfg.Type.
func New(cfg Config, log *zap.Logger) (Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	providerType := strings.ToLower(strings.TrimSpace(cfg.Type))
	if providerType == "" {
		return nil, ErrProviderNotConfigured
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: %s api key is empty", ErrProviderNotConfigured, providerType)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch providerType {
	case TypeOpenAI:
		return newOpenAI(cfg, client, log), nil
	case TypeGemini:
		return newGemini(cfg, client, log), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrProviderNotSupported, providerType)
	}
}
