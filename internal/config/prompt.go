package config

import (
	"errors"
	"io/fs"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultSystemInstruction is sent with every translation unless translator.yml overrides it.
const DefaultSystemInstruction = "You are a professional translator. Translate the following text from Assamese to English. Provide only the translation, no extra text."

type PromptConfig struct {
	SystemInstruction string `mapstructure:"systemInstruction"`
}

func DefaultPromptConfig() PromptConfig {
	return PromptConfig{SystemInstruction: DefaultSystemInstruction}
}

type PromptConfigHolder struct {
	current atomic.Value // holds PromptConfig
}

// NewStaticPromptConfigHolder returns a holder that never reloads.
func NewStaticPromptConfigHolder(cfg PromptConfig) *PromptConfigHolder {
	holder := &PromptConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// NewPromptConfigHolder loads translator.yml (or cfg.PromptFile) and, when watching
// is enabled, swaps in valid edits as they are written. A missing file means defaults.
func NewPromptConfigHolder(cfg Config, log *zap.Logger) (*PromptConfigHolder, error) {
	v := viper.New()

	if cfg.PromptFile != "" {
		v.SetConfigFile(cfg.PromptFile)
	} else {
		v.SetConfigName("translator")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/anubad")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ANUBAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPromptConfig()
	v.SetDefault("prompt.systemInstruction", defaults.SystemInstruction)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		fileFound = false
	}

	prompt, err := decodePromptConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticPromptConfigHolder(prompt)
	log = log.Named("config.prompt")
	log.Info("prompt config loaded",
		zap.Bool("file_found", fileFound),
		zap.String("file", v.ConfigFileUsed()),
	)

	if fileFound && cfg.PromptWatch {
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.reload(v, e.Name, log)
		})
		v.WatchConfig()
	}

	return holder, nil
}

// reload keeps the current config when the new one does not decode or validate.
func (h *PromptConfigHolder) reload(v *viper.Viper, file string, log *zap.Logger) {
	updated, err := decodePromptConfig(v)
	if err != nil {
		log.Warn("invalid prompt config ignored", zap.String("file", file), zap.Error(err))
		return
	}
	h.current.Store(updated)
	log.Info("prompt config reloaded", zap.String("file", file))
}

func decodePromptConfig(v *viper.Viper) (PromptConfig, error) {
	var prompt PromptConfig
	if err := v.UnmarshalKey("prompt", &prompt); err != nil {
		return PromptConfig{}, err
	}
	if err := validatePromptConfig(prompt); err != nil {
		return PromptConfig{}, err
	}
	return prompt, nil
}

func (h *PromptConfigHolder) Get() PromptConfig {
	return h.current.Load().(PromptConfig)
}

func validatePromptConfig(cfg PromptConfig) error {
	if strings.TrimSpace(cfg.SystemInstruction) == "" {
		return errors.New("prompt.systemInstruction cannot be empty")
	}
	return nil
}
