package svc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralflow-api/internal/config"
	"viralflow-api/pkg/agent"
	"viralflow-api/pkg/confkit"
	"viralflow-api/pkg/dashboard"
	"viralflow-api/pkg/journal"
	llmpkg "viralflow-api/pkg/llm"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:        "test",
		SampleMode: true,
		JournalDir: t.TempDir(),
		TTL:        config.CacheTTL{Short: 10, Medium: 60, Long: 300},
		Agent: confkit.Section[agent.Config]{Value: &agent.Config{
			Backend:    agent.BackendHTTP,
			BaseURL:    "http://127.0.0.1:1",
			APIKey:     "k",
			UserID:     "tester",
			Timeout:    time.Second,
			MaxRetries: 0,
			Agents:     map[string]string{"trend": "t", "image": "i", "script": "s"},
		}},
	}
}

func TestNewServiceContextWiresDashboard(t *testing.T) {
	inv := agent.InvokerFunc(func(_ context.Context, _, agentID string) (*agent.Result, error) {
		return &agent.Result{AgentID: agentID, Success: true, Response: `{"design_notes":"ok"}`}, nil
	})
	cfg := testConfig(t)

	svcCtx, err := NewServiceContext(cfg, WithInvoker(inv))
	require.NoError(t, err)
	assert.Nil(t, svcCtx.RunStore)
	assert.Nil(t, svcCtx.DBConn)
	require.NotNil(t, svcCtx.Journal)
	require.NotNil(t, svcCtx.Dashboard)

	snap := svcCtx.Dashboard.Snapshot()
	assert.True(t, snap.SampleMode)
	assert.Equal(t, dashboard.StepResults, snap.Step)

	_, err = svcCtx.Dashboard.GenerateVisuals(context.Background())
	require.NoError(t, err)

	runs, err := journal.ReadDir(cfg.JournalDir, "image", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "i", runs[0].AgentID)
}

func TestNewServiceContextBuildsHTTPInvoker(t *testing.T) {
	svcCtx, err := NewServiceContext(testConfig(t))
	require.NoError(t, err)
	_, ok := svcCtx.Invoker.(*agent.HTTPClient)
	assert.True(t, ok)
}

func TestNewServiceContextStructuredLLMBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Agent.Value.Backend = agent.BackendLLM
	cfg.Agent.Value.Structured = true
	cfg.Agent.Value.SystemPrompt = "Reply with JSON only."
	cfg.LLM.Value = &llmpkg.Config{
		BaseURL:    "http://127.0.0.1:1/v1",
		APIKey:     "k",
		Timeout:    time.Second,
		MaxRetries: 0,
	}

	svcCtx, err := NewServiceContext(cfg)
	require.NoError(t, err)
	client, ok := svcCtx.Invoker.(*agent.LLMClient)
	require.True(t, ok)
	for _, id := range []string{"t", "i", "s"} {
		assert.True(t, client.Structured(id), id)
	}
}

func TestNewServiceContextErrors(t *testing.T) {
	_, err := NewServiceContext(config.Config{})
	require.Error(t, err)

	cfg := testConfig(t)
	cfg.Agent.Value.Agents = map[string]string{"trend": "t"}
	_, err = NewServiceContext(cfg)
	require.Error(t, err)
}
