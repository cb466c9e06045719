package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"viralflow-api/pkg/decode"
	"viralflow-api/pkg/llm"
)

const (
	maxErrorBody = 4 << 10
	tracerName   = "viralflow-api/agent"
)

// StatusError is a non-2xx reply from the agent platform.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("agent: platform returned status %d", e.Code)
	}
	return fmt.Sprintf("agent: platform returned status %d: %s", e.Code, e.Body)
}

// HTTPStatus exposes the status code to retry classification.
func (e *StatusError) HTTPStatus() int { return e.Code }

type chatRequest struct {
	AgentID   string `json:"agent_id"`
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type chatReply struct {
	Success       bool   `json:"success"`
	Response      any    `json:"response"`
	ModuleOutputs any    `json:"module_outputs"`
	Error         string `json:"error"`
}

// HTTPClient invokes agents over the platform's JSON chat endpoint.
type HTTPClient struct {
	cfg        *Config
	httpClient *http.Client
	retry      *llm.RetryHandler
	breaker    *gobreaker.CircuitBreaker
	logger     llm.Logger
	newSession func() string
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		h.httpClient = c
	}
}

// WithLogger sets the client logger.
func WithLogger(l llm.Logger) HTTPOption {
	return func(h *HTTPClient) {
		h.logger = l
	}
}

// WithRetryHandler replaces the default backoff policy.
func WithRetryHandler(r *llm.RetryHandler) HTTPOption {
	return func(h *HTTPClient) {
		h.retry = r
	}
}

// WithSessionIDs replaces the session id generator.
func WithSessionIDs(gen func() string) HTTPOption {
	return func(h *HTTPClient) {
		h.newSession = gen
	}
}

// NewHTTPClient builds a client for cfg, which must use the http backend.
func NewHTTPClient(cfg *Config, opts ...HTTPOption) (*HTTPClient, error) {
	if cfg == nil {
		return nil, errors.New("agent: config cannot be nil")
	}
	c := &HTTPClient{cfg: cfg.Clone()}
	if c.cfg.Backend != BackendHTTP {
		return nil, fmt.Errorf("agent: http client cannot serve backend %q", c.cfg.Backend)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.cfg.Timeout}
	}
	if c.logger == nil {
		c.logger = llm.NewLogger("")
	}
	if c.retry == nil {
		c.retry = llm.NewRetryHandler(llm.RetryConfig{MaxRetries: c.cfg.MaxRetries})
	}
	if c.newSession == nil {
		c.newSession = uuid.NewString
	}

	logger := c.logger
	failures := c.cfg.Breaker.ConsecutiveFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "agent-platform",
		MaxRequests: c.cfg.Breaker.MaxRequests,
		Interval:    c.cfg.Breaker.Interval,
		Timeout:     c.cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Client mistakes and cancellations do not count against the platform.
		IsSuccessful: func(err error) bool {
			return err == nil || !llm.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "agent circuit breaker state change", llm.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	return c, nil
}

// BreakerState reports the circuit breaker state.
func (c *HTTPClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Invoke posts prompt to agentID. Each call opens a new session.
func (c *HTTPClient) Invoke(ctx context.Context, prompt, agentID string) (*Result, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, errors.New("agent: agent id is required")
	}
	body, err := json.Marshal(chatRequest{
		AgentID:   agentID,
		Message:   prompt,
		UserID:    c.cfg.UserID,
		SessionID: c.newSession(),
	})
	if err != nil {
		return nil, fmt.Errorf("agent: marshal request: %w", err)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "agent.invoke",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("agent.id", agentID),
			attribute.Int("agent.prompt_chars", len(prompt)),
		),
	)
	defer span.End()

	start := time.Now()
	c.logger.Info(ctx, "agent invoke", llm.Fields{
		"agent_id":     agentID,
		"prompt_chars": len(prompt),
	})

	out, err := c.breaker.Execute(func() (interface{}, error) {
		var reply *chatReply
		retryErr := c.retry.Do(ctx, func() error {
			r, callErr := c.post(ctx, body)
			if callErr != nil {
				c.logger.Warn(ctx, "agent attempt failed", llm.Fields{
					"agent_id": agentID,
					"error":    callErr.Error(),
				})
				return callErr
			}
			reply = r
			return nil
		})
		return reply, retryErr
	})
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error(ctx, fmt.Errorf("agent invoke failed: %w", err), llm.Fields{
			"agent_id":    agentID,
			"duration_ms": elapsed.Milliseconds(),
		})
		return nil, fmt.Errorf("agent: invoke %s: %w", agentID, err)
	}

	res := toResult(agentID, out.(*chatReply))
	res.Duration = elapsed
	span.SetAttributes(
		attribute.Bool("agent.success", res.Success),
		attribute.Int("agent.artifacts", len(res.Artifacts)),
	)
	c.logger.Info(ctx, "agent invoke done", llm.Fields{
		"agent_id":    agentID,
		"success":     res.Success,
		"artifacts":   len(res.Artifacts),
		"duration_ms": elapsed.Milliseconds(),
	})
	return res, nil
}

func (c *HTTPClient) post(ctx context.Context, body []byte) (*chatReply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agent: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var reply chatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("agent: decode reply: %w", err)
	}
	return &reply, nil
}

func toResult(agentID string, reply *chatReply) *Result {
	res := &Result{
		AgentID:   agentID,
		Success:   reply.Success,
		Response:  reply.Response,
		Error:     reply.Error,
		Artifacts: artifactsFrom(reply.ModuleOutputs),
	}
	if m, ok := reply.Response.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok {
			res.Message = msg
		}
	}
	return res
}

// artifactsFrom reads module_outputs.artifact_files. It returns nil when the
// reply carries no artifact list at all.
func artifactsFrom(moduleOutputs any) []ArtifactFile {
	rec := decode.Decode(moduleOutputs).Record()
	if _, ok := rec["artifact_files"].([]any); !ok {
		return nil
	}
	items := rec.Records("artifact_files")
	out := make([]ArtifactFile, 0, len(items))
	for _, item := range items {
		f := ArtifactFile{
			FileURL:    item.String("file_url"),
			Name:       item.String("name"),
			FormatType: item.String("format_type"),
		}
		if f.FileURL == "" && f.Name == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}
