package llm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"viralflow-api/pkg/confkit"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultTimeout    = 90 * time.Second
	defaultMaxRetries = 2
	defaultLogLevel   = "info"

	// FormatText leaves replies unconstrained; FormatJSONObject asks the
	// gateway for a single JSON object, which is what every agent returns.
	FormatText       = "text"
	FormatJSONObject = "json_object"

	envAPIKey       = "VIRALFLOW_LLM_API_KEY"
	envBaseURL      = "VIRALFLOW_LLM_BASE_URL"
	envDefaultModel = "VIRALFLOW_LLM_DEFAULT_MODEL"
	envTimeout      = "VIRALFLOW_LLM_TIMEOUT"
	envMaxRetries   = "VIRALFLOW_LLM_MAX_RETRIES"
	envFormat       = "VIRALFLOW_LLM_RESPONSE_FORMAT"
)

// Config holds runtime settings for the gateway client.
type Config struct {
	BaseURL      string                 `yaml:"base_url"`
	APIKey       string                 `yaml:"api_key"`
	DefaultModel string                 `yaml:"default_model"`
	Timeout      time.Duration          `yaml:"-"`
	MaxRetries   int                    `yaml:"max_retries"`
	LogLevel     string                 `yaml:"log_level"`
	Models       map[string]ModelConfig `yaml:"models"`

	// ResponseFormat is the default for requests that set none.
	ResponseFormat string `yaml:"response_format"`

	timeoutRaw string
}

// ModelConfig defines defaults for a particular model alias.
type ModelConfig struct {
	Provider    string   `yaml:"provider"`
	ModelName   string   `yaml:"model_name"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty"`
	TopP        *float64 `yaml:"top_p,omitempty"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open llm config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	var raw struct {
		BaseURL      string                 `yaml:"base_url"`
		APIKey       string                 `yaml:"api_key"`
		DefaultModel string                 `yaml:"default_model"`
		Timeout      string                 `yaml:"timeout"`
		MaxRetries   int                    `yaml:"max_retries"`
		LogLevel     string                 `yaml:"log_level"`
		Models       map[string]ModelConfig `yaml:"models"`

		ResponseFormat string `yaml:"response_format"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read llm config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal llm config: %w", err)
	}

	cfg := &Config{
		BaseURL:      raw.BaseURL,
		APIKey:       raw.APIKey,
		DefaultModel: raw.DefaultModel,
		MaxRetries:   raw.MaxRetries,
		LogLevel:     raw.LogLevel,
		Models:       raw.Models,
		timeoutRaw:   raw.Timeout,

		ResponseFormat: raw.ResponseFormat,
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.parseTimeout(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present. DefaultModel may
// be empty: agent gateways pass the agent identifier as the model, so the
// keys of Models are usually agent ids rather than aliases.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("llm config: api_key is required")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("llm config: base_url is required")
	}
	if c.Timeout <= 0 {
		return errors.New("llm config: timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("llm config: max_retries cannot be negative")
	}
	switch c.ResponseFormat {
	case "", FormatText, FormatJSONObject:
	default:
		return fmt.Errorf("llm config: response_format must be %s or %s, got %q", FormatText, FormatJSONObject, c.ResponseFormat)
	}
	for name, m := range c.Models {
		if err := m.validate(); err != nil {
			return fmt.Errorf("llm config: model %q: %w", name, err)
		}
	}
	return nil
}

func (m ModelConfig) validate() error {
	if m.Temperature != nil && (*m.Temperature < 0 || *m.Temperature > 2) {
		return fmt.Errorf("temperature %.2f outside [0, 2]", *m.Temperature)
	}
	if m.TopP != nil && (*m.TopP <= 0 || *m.TopP > 1) {
		return fmt.Errorf("top_p %.2f outside (0, 1]", *m.TopP)
	}
	if m.MaxTokens != nil && *m.MaxTokens <= 0 {
		return errors.New("max_tokens must be positive")
	}
	return nil
}

// DefaultFormat is the response format applied to requests that set none,
// or nil for unconstrained text.
func (c *Config) DefaultFormat() *ResponseFormat {
	if c.ResponseFormat != FormatJSONObject {
		return nil
	}
	return &ResponseFormat{Type: FormatJSONObject}
}

// Model returns the configuration for the given model alias.
func (c *Config) Model(name string) (ModelConfig, bool) {
	if c.Models == nil {
		return ModelConfig{}, false
	}
	modelCfg, ok := c.Models[name]
	return modelCfg, ok
}

// Clone returns a shallow copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Models != nil {
		cp.Models = make(map[string]ModelConfig, len(c.Models))
		for k, v := range c.Models {
			cp.Models[k] = v
		}
	}
	return &cp
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	if strings.TrimSpace(c.ResponseFormat) == "" {
		c.ResponseFormat = FormatText
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
}

func (c *Config) applyEnvOverrides() {
	c.BaseURL = confkit.ExpandAndOverride(c.BaseURL, envBaseURL)
	c.APIKey = confkit.ExpandAndOverride(c.APIKey, envAPIKey)
	c.DefaultModel = confkit.ExpandAndOverride(c.DefaultModel, envDefaultModel)
	c.ResponseFormat = strings.ToLower(strings.TrimSpace(confkit.ExpandAndOverride(c.ResponseFormat, envFormat)))

	if raw := os.Getenv(envTimeout); raw != "" {
		c.timeoutRaw = raw
	} else {
		c.timeoutRaw = os.ExpandEnv(c.timeoutRaw)
	}

	if raw := os.Getenv(envMaxRetries); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			c.MaxRetries = v
		}
	}
}

func (c *Config) parseTimeout() error {
	if strings.TrimSpace(c.timeoutRaw) == "" {
		c.Timeout = defaultTimeout
		return nil
	}

	d, err := time.ParseDuration(c.timeoutRaw)
	if err != nil {
		return fmt.Errorf("llm config: invalid timeout %q: %w", c.timeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("llm config: timeout must be positive, got %s", d)
	}
	c.Timeout = d
	return nil
}
