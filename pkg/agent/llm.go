package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"viralflow-api/pkg/llm"
)

// LLMClient serves agents hosted behind an OpenAI-compatible gateway: the
// agent id is sent as the model and the assistant text is the response.
type LLMClient struct {
	chat    llm.LLMClient
	system  string
	targets map[string]func() any
}

// LLMOption configures an LLMClient.
type LLMOption func(*LLMClient)

// WithSystemPrompt sends s before every prompt. Blank disables it.
func WithSystemPrompt(s string) LLMOption {
	return func(c *LLMClient) {
		c.system = strings.TrimSpace(s)
	}
}

// WithStructuredTargets asks the gateway for schema-constrained output for
// the listed purposes. Each function returns a fresh pointer to the struct
// the reply must fit; purposes missing from reg are skipped.
func WithStructuredTargets(reg *Registry, targets map[Purpose]func() any) LLMOption {
	return func(c *LLMClient) {
		if reg == nil {
			return
		}
		for p, newTarget := range targets {
			id, err := reg.Lookup(p)
			if err != nil || newTarget == nil {
				continue
			}
			if c.targets == nil {
				c.targets = make(map[string]func() any, len(targets))
			}
			c.targets[id] = newTarget
		}
	}
}

// NewLLMClient wraps chat.
func NewLLMClient(chat llm.LLMClient, opts ...LLMOption) (*LLMClient, error) {
	if chat == nil {
		return nil, errors.New("agent: llm client cannot be nil")
	}
	c := &LLMClient{chat: chat}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Structured reports whether replies for agentID are schema-constrained.
func (c *LLMClient) Structured(agentID string) bool {
	_, ok := c.targets[agentID]
	return ok
}

// Invoke sends prompt to the model named agentID.
func (c *LLMClient) Invoke(ctx context.Context, prompt, agentID string) (*Result, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, errors.New("agent: agent id is required")
	}
	msgs := make([]llm.Message, 0, 2)
	if c.system != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: c.system})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: prompt})
	req := &llm.ChatRequest{Model: agentID, Messages: msgs}

	start := time.Now()
	if newTarget, ok := c.targets[agentID]; ok {
		return c.invokeStructured(ctx, req, agentID, newTarget(), start)
	}

	resp, err := c.chat.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("agent: invoke %s: %w", agentID, err)
	}

	res := &Result{AgentID: agentID, Duration: time.Since(start)}
	content := resp.Content()
	if strings.TrimSpace(content) == "" {
		res.Error = "agent returned an empty reply"
		return res, nil
	}
	res.Success = true
	res.Response = content
	return res, nil
}

// invokeStructured reports a reply that does not fit target as a successful
// call with no payload, so callers see a decode failure rather than a
// transport error.
func (c *LLMClient) invokeStructured(ctx context.Context, req *llm.ChatRequest, agentID string, target any, start time.Time) (*Result, error) {
	out, err := c.chat.ChatStructured(ctx, req, target)
	res := &Result{AgentID: agentID, Success: true}
	switch {
	case errors.Is(err, llm.ErrStructuredOutput):
	case err != nil:
		return nil, fmt.Errorf("agent: invoke %s: %w", agentID, err)
	default:
		body, mErr := json.Marshal(out)
		if mErr != nil {
			return nil, fmt.Errorf("agent: encode %s reply: %w", agentID, mErr)
		}
		res.Response = json.RawMessage(body)
	}
	res.Duration = time.Since(start)
	return res, nil
}

// Close releases the underlying gateway client.
func (c *LLMClient) Close() error {
	return c.chat.Close()
}

// New builds the Invoker selected by cfg.Backend. chat is required for the
// llm backend and ignored otherwise; opts apply to the llm backend after the
// configured system prompt.
func New(cfg *Config, chat llm.LLMClient, logger llm.Logger, opts ...LLMOption) (Invoker, error) {
	if cfg == nil {
		return nil, errors.New("agent: config cannot be nil")
	}
	switch cfg.Backend {
	case BackendHTTP:
		var httpOpts []HTTPOption
		if logger != nil {
			httpOpts = append(httpOpts, WithLogger(logger))
		}
		c, err := NewHTTPClient(cfg, httpOpts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendLLM:
		c, err := NewLLMClient(chat, append([]LLMOption{WithSystemPrompt(cfg.SystemPrompt)}, opts...)...)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("agent: unknown backend %q", cfg.Backend)
	}
}
