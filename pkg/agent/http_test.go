package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralflow-api/pkg/llm"
)

func testHTTPConfig(baseURL string) *Config {
	return &Config{
		Backend:    BackendHTTP,
		BaseURL:    baseURL,
		APIKey:     "test-key",
		UserID:     "tester",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
		Breaker: BreakerConfig{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             time.Minute,
			ConsecutiveFailures: 2,
		},
		Agents: map[string]string{"trend": "t", "image": "i", "script": "s"},
	}
}

func newTestHTTPClient(t *testing.T, srv *httptest.Server, cfg *Config) *HTTPClient {
	t.Helper()
	if cfg == nil {
		cfg = testHTTPConfig(srv.URL)
	}
	c, err := NewHTTPClient(cfg,
		WithHTTPClient(srv.Client()),
		WithLogger(llm.NopLogger{}),
		WithRetryHandler(llm.NewRetryHandler(llm.RetryConfig{MaxRetries: cfg.MaxRetries, InitialBackoff: time.Millisecond})),
		WithSessionIDs(func() string { return "session-1" }),
	)
	require.NoError(t, err)
	return c
}

func TestHTTPClientInvoke(t *testing.T) {
	var (
		mu      sync.Mutex
		gotBody chatRequest
		gotKey  string
		gotPath string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"response": {
				"status": "success",
				"result": {"design_notes": "bold contrast", "thumbnail_concepts": []},
				"message": "done"
			},
			"module_outputs": {
				"artifact_files": [
					{"file_url": "https://cdn.example.com/a.png", "name": "a.png", "format_type": "png"},
					{"file_url": "", "name": ""},
					"junk"
				]
			}
		}`))
	}))
	defer srv.Close()

	res, err := newTestHTTPClient(t, srv, nil).Invoke(context.Background(), "make thumbnails", "agent-image")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "agent-image", res.AgentID)
	require.Equal(t, "done", res.Message)
	require.Equal(t, []ArtifactFile{{FileURL: "https://cdn.example.com/a.png", Name: "a.png", FormatType: "png"}}, res.Artifacts)

	out := Decode(res)
	require.True(t, out.OK())
	require.Equal(t, "bold contrast", out.Record().String("design_notes"))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/chat", gotPath)
	require.Equal(t, "test-key", gotKey)
	require.Equal(t, chatRequest{AgentID: "agent-image", Message: "make thumbnails", UserID: "tester", SessionID: "session-1"}, gotBody)
}

func TestHTTPClientRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "response": {"status": "error", "message": "quota exceeded"}, "error": ""}`))
	}))
	defer srv.Close()

	res, err := newTestHTTPClient(t, srv, nil).Invoke(context.Background(), "p", "agent-trend")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Nil(t, res.Artifacts)
	require.Equal(t, "quota exceeded", FailureMessage(res, "fallback"))
}

func TestHTTPClientRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"success": true, "response": "{\"executive_summary\":\"ok\"}"}`))
	}))
	defer srv.Close()

	res, err := newTestHTTPClient(t, srv, nil).Invoke(context.Background(), "p", "agent-trend")
	require.NoError(t, err)
	require.EqualValues(t, 3, calls.Load())
	require.Equal(t, "ok", Decode(res).Record().String("executive_summary"))
}

func TestHTTPClientPermanentError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestHTTPClient(t, srv, nil)
	for i := 0; i < 3; i++ {
		_, err := client.Invoke(context.Background(), "p", "agent-trend")
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusUnauthorized, statusErr.Code)
		require.Equal(t, "bad key", statusErr.Body)
	}
	require.EqualValues(t, 3, calls.Load(), "4xx is neither retried nor trips the breaker")
	require.Equal(t, gobreaker.StateClosed, client.BreakerState())
}

func TestHTTPClientBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testHTTPConfig(srv.URL)
	cfg.MaxRetries = 0
	client := newTestHTTPClient(t, srv, cfg)

	for i := 0; i < 2; i++ {
		_, err := client.Invoke(context.Background(), "p", "agent-trend")
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, client.BreakerState())

	_, err := client.Invoke(context.Background(), "p", "agent-trend")
	require.True(t, errors.Is(err, gobreaker.ErrOpenState))
	require.EqualValues(t, 2, calls.Load())
}

func TestHTTPClientValidation(t *testing.T) {
	_, err := NewHTTPClient(nil)
	require.Error(t, err)

	cfg := testHTTPConfig("http://unused")
	cfg.Backend = BackendLLM
	_, err = NewHTTPClient(cfg)
	require.Error(t, err)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, err = newTestHTTPClient(t, srv, nil).Invoke(context.Background(), "p", " ")
	require.Error(t, err)
}

func TestHTTPClientMalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	_, err := newTestHTTPClient(t, srv, nil).Invoke(context.Background(), "p", "agent-trend")
	assert.ErrorContains(t, err, "decode reply")
}

func TestCandidatesAndPayload(t *testing.T) {
	require.Nil(t, Candidates(nil))
	require.Nil(t, Payload(nil))

	nested := &Result{Response: map[string]any{"result": `{"a":"nested"}`, "message": "m"}}
	require.Equal(t, `{"a":"nested"}`, Payload(nested))
	require.Equal(t, "nested", Decode(nested).Record().String("a"))

	// Nested text that is not JSON falls back to the whole envelope.
	prose := &Result{Response: map[string]any{"result": "no json here", "status": "success"}}
	out := Decode(prose)
	require.True(t, out.OK())
	require.Equal(t, "success", out.Record().String("status"))

	flat := &Result{Response: "plain {\"b\":1} text"}
	require.Equal(t, "plain {\"b\":1} text", Payload(flat))
	require.Equal(t, "1", Decode(flat).Record().String("b"))

	empty := &Result{}
	require.False(t, Decode(empty).OK())
}

func TestFailureMessage(t *testing.T) {
	require.Equal(t, "fallback", FailureMessage(nil, "fallback"))
	require.Equal(t, "fallback", FailureMessage(&Result{}, "fallback"))
	require.Equal(t, "msg", FailureMessage(&Result{Message: "msg"}, "fallback"))
	require.Equal(t, "err", FailureMessage(&Result{Error: "err", Message: "msg"}, "fallback"))
}
