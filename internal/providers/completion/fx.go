package completion

import (
	"time"

	"github.com/smallbiznis/anubad/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.completion",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	p, err := New(Config{
		Type:    cfg.Provider.Type,
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.Model,
		Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info("completion provider configured", zap.String("provider", p.Name()))
	return p, nil
}
