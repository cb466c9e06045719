package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

func TestNewRetryHandlerDefaults(t *testing.T) {
	h := NewRetryHandler(RetryConfig{MaxRetries: -1, Multiplier: 0.5})
	require.Equal(t, 0, h.MaxRetries())
	require.Equal(t, defaultInitialBackoff, h.cfg.InitialBackoff)
	require.Equal(t, defaultMaxBackoff, h.cfg.MaxBackoff)
	require.Equal(t, defaultBackoffFactor, h.cfg.Multiplier)
	require.NotNil(t, h.cfg.Retryable)
}

func TestRetryHandlerDo(t *testing.T) {
	fast := RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := NewRetryHandler(fast).Do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return statusErr(http.StatusBadGateway)
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := NewRetryHandler(fast).Do(context.Background(), func() error {
			calls++
			return statusErr(http.StatusBadRequest)
		})
		require.Equal(t, statusErr(http.StatusBadRequest), err)
		require.Equal(t, 1, calls)
	})

	t.Run("gives up after budget", func(t *testing.T) {
		calls := 0
		err := NewRetryHandler(fast).Do(context.Background(), func() error {
			calls++
			return statusErr(http.StatusTooManyRequests)
		})
		require.Error(t, err)
		require.Equal(t, 4, calls)
	})

	t.Run("context cancellation wins", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		h := NewRetryHandler(RetryConfig{MaxRetries: 5, InitialBackoff: time.Hour})
		calls := 0
		err := h.Do(ctx, func() error {
			calls++
			cancel()
			return statusErr(http.StatusServiceUnavailable)
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls)
	})

	t.Run("custom classifier", func(t *testing.T) {
		cfg := fast
		cfg.Retryable = func(error) bool { return true }
		calls := 0
		_ = NewRetryHandler(cfg).Do(context.Background(), func() error {
			calls++
			return errors.New("anything")
		})
		require.Equal(t, 4, calls)
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wrap: %w", context.DeadlineExceeded), false},
		{"openai 429", &openai.Error{StatusCode: http.StatusTooManyRequests}, true},
		{"openai 401", &openai.Error{StatusCode: http.StatusUnauthorized}, false},
		{"status 503", fmt.Errorf("agent: %w", statusErr(http.StatusServiceUnavailable)), true},
		{"status 404", statusErr(http.StatusNotFound), false},
		{"net timeout", timeoutErr{}, true},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
