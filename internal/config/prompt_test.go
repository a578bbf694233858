package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writePromptFile(t *testing.T, path, instruction string) {
	t.Helper()
	content := "prompt:\n  systemInstruction: \"" + instruction + "\"\n"
	// Swap the file in with a rename so the watcher never sees it half written.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		t.Fatalf("write prompt file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("replace prompt file: %v", err)
	}
}

func TestValidatePromptConfigRejectsBlankInstruction(t *testing.T) {
	assert.Error(t, validatePromptConfig(PromptConfig{SystemInstruction: "   "}))
	assert.NoError(t, validatePromptConfig(DefaultPromptConfig()))
}

func TestStaticPromptConfigHolder(t *testing.T) {
	holder := NewStaticPromptConfigHolder(PromptConfig{SystemInstruction: "translate"})
	assert.Equal(t, "translate", holder.Get().SystemInstruction)
}

func TestNewPromptConfigHolderDefaultsWithoutFile(t *testing.T) {
	cfg := Config{PromptFile: filepath.Join(t.TempDir(), "translator.yml"), PromptWatch: true}

	holder, err := NewPromptConfigHolder(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemInstruction, holder.Get().SystemInstruction)
}

func TestNewPromptConfigHolderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translator.yml")
	writePromptFile(t, path, "Translate Assamese into plain English.")

	holder, err := NewPromptConfigHolder(Config{PromptFile: path}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "Translate Assamese into plain English.", holder.Get().SystemInstruction)
}

func TestNewPromptConfigHolderRejectsBlankFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translator.yml")
	writePromptFile(t, path, "")

	_, err := NewPromptConfigHolder(Config{PromptFile: path}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestPromptConfigReloadKeepsLastValidConfig(t *testing.T) {
	log := zaptest.NewLogger(t)
	holder := NewStaticPromptConfigHolder(PromptConfig{SystemInstruction: "first"})

	blank := viper.New()
	blank.SetConfigType("yml")
	require.NoError(t, blank.ReadConfig(strings.NewReader("prompt:\n  systemInstruction: \"  \"\n")))
	holder.reload(blank, "translator.yml", log)
	assert.Equal(t, "first", holder.Get().SystemInstruction)

	valid := viper.New()
	valid.SetConfigType("yml")
	require.NoError(t, valid.ReadConfig(strings.NewReader("prompt:\n  systemInstruction: second\n")))
	holder.reload(valid, "translator.yml", log)
	assert.Equal(t, "second", holder.Get().SystemInstruction)
}

func TestNewPromptConfigHolderWatchesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translator.yml")
	writePromptFile(t, path, "first")

	holder, err := NewPromptConfigHolder(Config{PromptFile: path, PromptWatch: true}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, "first", holder.Get().SystemInstruction)

	writePromptFile(t, path, "")
	assert.Never(t, func() bool {
		return holder.Get().SystemInstruction != "first"
	}, 300*time.Millisecond, 20*time.Millisecond, "blank instruction must be ignored")

	writePromptFile(t, path, "second")
	assert.Eventually(t, func() bool {
		return holder.Get().SystemInstruction == "second"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HISTORY_CACHE", "bogus")
	t.Setenv("PROVIDER_TYPE", " Gemini ")
	t.Setenv("PROVIDER_API_KEY", "")
	t.Setenv("AI_INTEGRATIONS_OPENAI_API_KEY", "fallback-key")
	t.Setenv("PROMPT_FILE", " /etc/anubad/custom.yml ")

	cfg := Load()

	assert.Equal(t, HistoryCacheNone, cfg.HistoryCache.Backend)
	assert.Equal(t, ProviderGemini, cfg.Provider.Type)
	assert.Equal(t, "fallback-key", cfg.Provider.APIKey)
	assert.Equal(t, 60, cfg.Provider.TimeoutSeconds)
	assert.Equal(t, "/etc/anubad/custom.yml", cfg.PromptFile)
}
