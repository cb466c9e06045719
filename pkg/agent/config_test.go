package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
backend: http
base_url: "https://agents.example.com/api/"
api_key: "${VIRALFLOW_TEST_AGENT_KEY}"
timeout: "45s"
max_retries: 3
breaker:
  max_requests: 2
  interval: 30s
  timeout: 10s
  consecutive_failures: 4
agents:
  trend: "699971ebc9d9dd3effcccab1"
  image: "6999720af4d61186679a93ef"
  script: "6999720af4d61186679a93f1"
`

func clearAgentEnv(t *testing.T) {
	for _, k := range []string{envBackend, envBaseURL, envAPIKey, envUserID, envTimeout, envMaxRetries, envTrendID, envImageID, envScriptID, envSystem} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFromReader(t *testing.T) {
	clearAgentEnv(t)
	t.Setenv("VIRALFLOW_TEST_AGENT_KEY", "secret")

	cfg, err := LoadConfigFromReader(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Equal(t, BackendHTTP, cfg.Backend)
	require.Equal(t, "https://agents.example.com/api", cfg.BaseURL)
	require.Equal(t, "secret", cfg.APIKey)
	require.Equal(t, defaultUserID, cfg.UserID)
	require.Equal(t, 45*time.Second, cfg.Timeout)
	require.Equal(t, 3, cfg.MaxRetries)
	require.Equal(t, BreakerConfig{MaxRequests: 2, Interval: 30 * time.Second, Timeout: 10 * time.Second, ConsecutiveFailures: 4}, cfg.Breaker)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	id, _ := reg.Lookup(ImageGeneration)
	require.Equal(t, "6999720af4d61186679a93ef", id)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearAgentEnv(t)
	t.Setenv(envAPIKey, "env-key")
	t.Setenv(envTimeout, "5s")
	t.Setenv(envMaxRetries, "1")
	t.Setenv(envTrendID, "trend-from-env")
	t.Setenv(envUserID, "creator-7")

	cfg, err := LoadConfigFromReader(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.APIKey)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, 1, cfg.MaxRetries)
	require.Equal(t, "creator-7", cfg.UserID)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	id, _ := reg.Lookup(TrendAnalysis)
	require.Equal(t, "trend-from-env", id)
}

func TestLoadConfigDefaults(t *testing.T) {
	clearAgentEnv(t)
	cfg, err := LoadConfigFromReader(strings.NewReader(`
backend: llm
agents: {trend: a, image: b, script: c}
`))
	require.NoError(t, err)
	require.Equal(t, BackendLLM, cfg.Backend)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	require.EqualValues(t, defaultBreakerFailures, cfg.Breaker.ConsecutiveFailures)
	require.False(t, cfg.Structured)
	require.Empty(t, cfg.SystemPrompt)
}

func TestLoadConfigLLMOptions(t *testing.T) {
	clearAgentEnv(t)
	t.Setenv("VIRALFLOW_TEST_NICHE", "cooking")
	cfg, err := LoadConfigFromReader(strings.NewReader(`
backend: llm
structured: true
system_prompt: "You research ${VIRALFLOW_TEST_NICHE} videos."
agents: {trend: a, image: b, script: c}
`))
	require.NoError(t, err)
	require.True(t, cfg.Structured)
	require.Equal(t, "You research cooking videos.", cfg.SystemPrompt)

	t.Setenv(envSystem, "override")
	cfg, err = LoadConfigFromReader(strings.NewReader("backend: llm\nagents: {trend: a, image: b, script: c}"))
	require.NoError(t, err)
	require.Equal(t, "override", cfg.SystemPrompt)
}

func TestLoadConfigErrors(t *testing.T) {
	clearAgentEnv(t)
	tests := map[string]string{
		"missing base_url": "backend: http\napi_key: k\nagents: {trend: a, image: b, script: c}",
		"missing api_key":  "backend: http\nbase_url: http://x\nagents: {trend: a, image: b, script: c}",
		"unknown backend":  "backend: grpc\nagents: {trend: a, image: b, script: c}",
		"bad timeout":      "backend: llm\ntimeout: later\nagents: {trend: a, image: b, script: c}",
		"missing agents":   "backend: llm\nagents: {trend: a}",
		"negative retries": "backend: llm\nmax_retries: -1\nagents: {trend: a, image: b, script: c}",
		"bad yaml":         "backend: [",
		"structured http":  "backend: http\nbase_url: http://x\napi_key: k\nstructured: true\nagents: {trend: a, image: b, script: c}",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearAgentEnv(t)
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("VIRALFLOW_TEST_AGENT_KEY", "file-key")
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "file-key", cfg.APIKey)

	cp := cfg.Clone()
	cp.Agents["trend"] = "changed"
	require.Equal(t, "699971ebc9d9dd3effcccab1", cfg.Agents["trend"])

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
