package agent

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"viralflow-api/pkg/confkit"
)

const (
	BackendHTTP = "http"
	BackendLLM  = "llm"

	defaultBackend    = BackendHTTP
	defaultTimeout    = 120 * time.Second
	defaultMaxRetries = 2
	defaultUserID     = "viralflow"

	defaultBreakerMaxRequests = 3
	defaultBreakerInterval    = 60 * time.Second
	defaultBreakerTimeout     = 30 * time.Second
	defaultBreakerFailures    = 5

	envBackend    = "VIRALFLOW_AGENT_BACKEND"
	envBaseURL    = "VIRALFLOW_AGENT_BASE_URL"
	envAPIKey     = "VIRALFLOW_AGENT_API_KEY"
	envUserID     = "VIRALFLOW_AGENT_USER_ID"
	envTimeout    = "VIRALFLOW_AGENT_TIMEOUT"
	envMaxRetries = "VIRALFLOW_AGENT_MAX_RETRIES"
	envTrendID    = "VIRALFLOW_AGENT_TREND_ID"
	envImageID    = "VIRALFLOW_AGENT_IMAGE_ID"
	envScriptID   = "VIRALFLOW_AGENT_SCRIPT_ID"
	envSystem     = "VIRALFLOW_AGENT_SYSTEM_PROMPT"
)

// Config holds agent platform settings.
type Config struct {
	Backend    string            `yaml:"backend"`
	BaseURL    string            `yaml:"base_url"`
	APIKey     string            `yaml:"api_key"`
	UserID     string            `yaml:"user_id"`
	Timeout    time.Duration     `yaml:"-"`
	MaxRetries int               `yaml:"max_retries"`
	Breaker    BreakerConfig     `yaml:"breaker"`
	Agents     map[string]string `yaml:"agents"`

	// SystemPrompt and Structured apply to the llm backend only. Structured
	// requests schema-constrained replies shaped like the view models.
	SystemPrompt string `yaml:"system_prompt"`
	Structured   bool   `yaml:"structured"`

	timeoutRaw string
}

// BreakerConfig tunes the circuit breaker around the HTTP backend.
type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open agent config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from yaml.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	var raw struct {
		Backend    string            `yaml:"backend"`
		BaseURL    string            `yaml:"base_url"`
		APIKey     string            `yaml:"api_key"`
		UserID     string            `yaml:"user_id"`
		Timeout    string            `yaml:"timeout"`
		MaxRetries int               `yaml:"max_retries"`
		Breaker    BreakerConfig     `yaml:"breaker"`
		Agents     map[string]string `yaml:"agents"`

		SystemPrompt string `yaml:"system_prompt"`
		Structured   bool   `yaml:"structured"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read agent config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal agent config: %w", err)
	}

	cfg := &Config{
		Backend:    raw.Backend,
		BaseURL:    raw.BaseURL,
		APIKey:     raw.APIKey,
		UserID:     raw.UserID,
		MaxRetries: raw.MaxRetries,
		Breaker:    raw.Breaker,
		Agents:     raw.Agents,
		timeoutRaw: raw.Timeout,

		SystemPrompt: raw.SystemPrompt,
		Structured:   raw.Structured,
	}
	cfg.applyEnvOverrides()
	if err := cfg.parseTimeout(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields for the selected backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendHTTP:
		if strings.TrimSpace(c.BaseURL) == "" {
			return errors.New("agent config: base_url is required for the http backend")
		}
		if strings.TrimSpace(c.APIKey) == "" {
			return errors.New("agent config: api_key is required for the http backend")
		}
	case BackendLLM:
	default:
		return fmt.Errorf("agent config: unknown backend %q", c.Backend)
	}
	if c.Structured && c.Backend != BackendLLM {
		return errors.New("agent config: structured replies need the llm backend")
	}
	if c.Timeout <= 0 {
		return errors.New("agent config: timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("agent config: max_retries cannot be negative")
	}
	if _, err := NewRegistry(c.Agents); err != nil {
		return fmt.Errorf("agent config: %w", err)
	}
	return nil
}

// Registry builds the purpose registry from Agents.
func (c *Config) Registry() (*Registry, error) {
	return NewRegistry(c.Agents)
}

// Clone returns a copy that shares nothing mutable with c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Agents != nil {
		cp.Agents = make(map[string]string, len(c.Agents))
		for k, v := range c.Agents {
			cp.Agents[k] = v
		}
	}
	return &cp
}

func (c *Config) applyDefaults() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = defaultBackend
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if strings.TrimSpace(c.UserID) == "" {
		c.UserID = defaultUserID
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = defaultBreakerMaxRequests
	}
	if c.Breaker.Interval <= 0 {
		c.Breaker.Interval = defaultBreakerInterval
	}
	if c.Breaker.Timeout <= 0 {
		c.Breaker.Timeout = defaultBreakerTimeout
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		c.Breaker.ConsecutiveFailures = defaultBreakerFailures
	}
}

func (c *Config) applyEnvOverrides() {
	c.Backend = confkit.ExpandAndOverride(c.Backend, envBackend)
	c.BaseURL = confkit.ExpandAndOverride(c.BaseURL, envBaseURL)
	c.APIKey = confkit.ExpandAndOverride(c.APIKey, envAPIKey)
	c.UserID = confkit.ExpandAndOverride(c.UserID, envUserID)
	c.SystemPrompt = confkit.ExpandAndOverride(c.SystemPrompt, envSystem)
	c.MaxRetries = confkit.EnvInt(c.MaxRetries, envMaxRetries)

	if raw := os.Getenv(envTimeout); raw != "" {
		c.timeoutRaw = raw
	} else {
		c.timeoutRaw = os.ExpandEnv(c.timeoutRaw)
	}

	if c.Agents == nil {
		c.Agents = make(map[string]string)
	}
	for key, id := range c.Agents {
		c.Agents[key] = os.ExpandEnv(id)
	}
	for p, env := range map[Purpose]string{
		TrendAnalysis:    envTrendID,
		ImageGeneration:  envImageID,
		ScriptGeneration: envScriptID,
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			for key := range c.Agents {
				if kp, err := ParsePurpose(key); err == nil && kp == p {
					delete(c.Agents, key)
				}
			}
			c.Agents[p.String()] = v
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
		return fmt.Errorf("agent config: invalid timeout %q: %w", c.timeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("agent config: timeout must be positive, got %s", d)
	}
	c.Timeout = d
	return nil
}
