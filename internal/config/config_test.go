package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralflow-api/pkg/agent"
)

const agentYAML = `
backend: http
base_url: https://agents.example.com/api
api_key: ${VIRALFLOW_TEST_KEY}
agents:
  trend: t-1
  image: i-1
  script: s-1
`

const llmYAML = `
base_url: https://gateway.example/v1
api_key: llm-key
default_model: gpt-test
timeout: 2s
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("VIRALFLOW_TEST_KEY", "agent-key")
	t.Setenv("VIRALFLOW_AGENT_API_KEY", "agent-key")
	t.Setenv("VIRALFLOW_AGENT_BACKEND", "")
}

func TestLoadHydratesSections(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "modules/agent.yaml", agentYAML)
	writeFile(t, dir, "modules/llm.yaml", llmYAML)
	main := writeFile(t, dir, "viralflow.yaml", `
Name: viralflow-api
Host: 127.0.0.1
Port: 8888
Env: dev
PromptsDir: prompts
JournalDir: /var/lib/viralflow/journal
Agent:
  File: modules/agent.yaml
LLM:
  File: modules/llm.yaml
`)

	cfg, err := Load(main)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.IsTestEnv())
	assert.Equal(t, dir, cfg.BaseDir())
	assert.Equal(t, main, cfg.MainPath())
	assert.Equal(t, filepath.Join(dir, "prompts"), cfg.PromptsDir)
	assert.Equal(t, "/var/lib/viralflow/journal", cfg.JournalDir)
	assert.Equal(t, 10, cfg.TTL.Short)

	require.NotNil(t, cfg.Agent.Value)
	assert.Equal(t, filepath.Join(dir, "modules/agent.yaml"), cfg.Agent.File)
	assert.Equal(t, "agent-key", cfg.Agent.Value.APIKey)
	reg, err := cfg.Agent.Value.Registry()
	require.NoError(t, err)
	id, err := reg.Lookup(agent.ScriptGeneration)
	require.NoError(t, err)
	assert.Equal(t, "s-1", id)

	require.NotNil(t, cfg.LLM.Value)
	assert.Equal(t, "gpt-test", cfg.LLM.Value.DefaultModel)
}

func TestLoadRequiresAgentSection(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	main := writeFile(t, dir, "viralflow.yaml", "Name: viralflow-api\nPort: 8888\n")

	_, err := Load(main)
	require.ErrorContains(t, err, "agent section is required")
}

func TestLoadLLMBackendNeedsLLMSection(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "agent.yaml", "backend: llm\nagents:\n  trend: a\n  image: b\n  script: c\n")
	main := writeFile(t, dir, "viralflow.yaml", "Name: viralflow-api\nPort: 8888\nAgent:\n  File: agent.yaml\n")

	_, err := Load(main)
	require.ErrorContains(t, err, "requires an llm section")
}

func TestValidate(t *testing.T) {
	cfg := &Config{TTL: CacheTTL{Short: 1, Medium: 1, Long: 1}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "test", cfg.Env)

	cfg.Env = "staging"
	require.Error(t, cfg.Validate())

	cfg = &Config{Env: "prod", TTL: CacheTTL{Short: 1, Medium: -1, Long: 1}}
	require.ErrorContains(t, cfg.Validate(), "ttl.medium")
}

func TestLoadDefaultsOmittedBlocks(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "agent.yaml", agentYAML)
	main := writeFile(t, dir, "viralflow.yaml", "Name: viralflow-api\nPort: 8888\nAgent:\n  File: agent.yaml\n")

	cfg, err := Load(main)
	require.NoError(t, err)
	assert.Equal(t, CacheTTL{Short: 10, Medium: 60, Long: 300}, cfg.TTL)
	assert.Equal(t, 10, cfg.Postgres.MaxOpen)
	assert.Equal(t, 5, cfg.Postgres.MaxIdle)
	assert.Equal(t, "test", cfg.Env)
}

func TestLoadKeepsExplicitTTL(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "agent.yaml", agentYAML)
	main := writeFile(t, dir, "viralflow.yaml", `
Name: viralflow-api
Port: 8888
TTL:
  Short: 5
  Long: 900
Agent:
  File: agent.yaml
`)

	cfg, err := Load(main)
	require.NoError(t, err)
	assert.Equal(t, CacheTTL{Short: 5, Medium: 60, Long: 900}, cfg.TTL)
}
