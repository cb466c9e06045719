package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromReader(t *testing.T) {
	t.Setenv(envAPIKey, "override-key")
	t.Setenv(envTimeout, "45s")
	t.Setenv(envMaxRetries, "5")

	cfg, err := LoadConfigFromReader(strings.NewReader(`
base_url: "https://gateway.example.com/v1"
api_key: "${VIRALFLOW_TEST_KEY}"
default_model: "mini"
timeout: "30s"
max_retries: 2
models:
  mini:
    provider: "openai"
    model_name: "gpt-4o-mini"
    temperature: 0.5
    max_tokens: 1024
`))
	require.NoError(t, err)
	require.Equal(t, "https://gateway.example.com/v1", cfg.BaseURL)
	require.Equal(t, "override-key", cfg.APIKey)
	require.Equal(t, 5, cfg.MaxRetries)
	require.Equal(t, 45*time.Second, cfg.Timeout)

	model, ok := cfg.Model("mini")
	require.True(t, ok)
	require.Equal(t, "gpt-4o-mini", model.ModelName)
	require.InDelta(t, 0.5, *model.Temperature, 0.0001)
	require.Equal(t, 1024, *model.MaxTokens)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(envAPIKey, "")
	t.Setenv(envTimeout, "")
	t.Setenv(envMaxRetries, "")
	t.Setenv("VIRALFLOW_TEST_KEY", "expanded-key")

	cfg, err := LoadConfigFromReader(strings.NewReader(`api_key: "${VIRALFLOW_TEST_KEY}"`))
	require.NoError(t, err)
	require.Equal(t, "expanded-key", cfg.APIKey)
	require.Equal(t, defaultBaseURL, cfg.BaseURL)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	require.Equal(t, defaultLogLevel, cfg.LogLevel)
	require.Empty(t, cfg.DefaultModel)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv(envAPIKey, "")
	t.Setenv(envTimeout, "")

	_, err := LoadConfigFromReader(strings.NewReader(`base_url: "x"`))
	require.ErrorContains(t, err, "api_key")

	_, err = LoadConfigFromReader(strings.NewReader("api_key: k\ntimeout: soon"))
	require.ErrorContains(t, err, "invalid timeout")

	_, err = LoadConfigFromReader(strings.NewReader("api_key: k\ntimeout: -1s"))
	require.ErrorContains(t, err, "positive")

	_, err = LoadConfigFromReader(strings.NewReader("api_key: [unterminated"))
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv(envAPIKey, "")
	t.Setenv(envTimeout, "")
	path := filepath.Join(t.TempDir(), "llm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: file-key\ntimeout: 10s\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "file-key", cfg.APIKey)
	require.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{APIKey: "k", BaseURL: "https://x", Timeout: time.Second, MaxRetries: 1}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"api_key":         func(c *Config) { c.APIKey = " " },
		"base_url":        func(c *Config) { c.BaseURL = "" },
		"timeout":         func(c *Config) { c.Timeout = 0 },
		"max_retries":     func(c *Config) { c.MaxRetries = -1 },
		"response_format": func(c *Config) { c.ResponseFormat = "xml" },
		"temperature":     func(c *Config) { c.Models = map[string]ModelConfig{"agent-1": {Temperature: ptr(2.5)}} },
		"top_p":           func(c *Config) { c.Models = map[string]ModelConfig{"agent-1": {TopP: ptr(0.0)}} },
		"max_tokens":      func(c *Config) { c.Models = map[string]ModelConfig{"agent-1": {MaxTokens: ptr(0)}} },
	}
	for field, mutate := range tests {
		t.Run(field, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), field)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestLoadConfigResponseFormat(t *testing.T) {
	t.Setenv(envAPIKey, "")
	t.Setenv(envTimeout, "")
	t.Setenv(envFormat, "")

	cfg, err := LoadConfigFromReader(strings.NewReader("api_key: k"))
	require.NoError(t, err)
	require.Equal(t, FormatText, cfg.ResponseFormat)
	require.Nil(t, cfg.DefaultFormat())

	cfg, err = LoadConfigFromReader(strings.NewReader("api_key: k\nresponse_format: JSON_Object"))
	require.NoError(t, err)
	require.Equal(t, FormatJSONObject, cfg.ResponseFormat)
	require.Equal(t, &ResponseFormat{Type: FormatJSONObject}, cfg.DefaultFormat())

	t.Setenv(envFormat, "xml")
	_, err = LoadConfigFromReader(strings.NewReader("api_key: k"))
	require.ErrorContains(t, err, "response_format")
}

func TestConfigClone(t *testing.T) {
	var nilCfg *Config
	require.Nil(t, nilCfg.Clone())

	orig := &Config{APIKey: "k", Models: map[string]ModelConfig{"a": {ModelName: "x"}}}
	cp := orig.Clone()
	cp.Models["a"] = ModelConfig{ModelName: "y"}
	require.Equal(t, "x", orig.Models["a"].ModelName)

	_, ok := (&Config{}).Model("a")
	require.False(t, ok)
}
