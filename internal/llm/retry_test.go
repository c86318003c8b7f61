package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2,
	}
}

var (
	okReply   = MockResponse{Content: json.RawMessage(`{"ok":true}`)}
	downReply = MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	badReply  = MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}}
)

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		cfg       RetryConfig
		script    []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", retryConfig(), []MockResponse{okReply}, false, 1},
		{"transient then ok", retryConfig(), []MockResponse{downReply, okReply}, false, 2},
		{"gives up after max attempts", retryConfig(), []MockResponse{downReply, downReply, downReply, okReply}, true, 3},
		{"rate limit retried", retryConfig(), []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}}, okReply}, false, 2},
		{"invalid response retried once", retryConfig(), []MockResponse{badReply, badReply, okReply}, true, 2},
		{"max tokens not retried", retryConfig(), []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okReply}, true, 1},
		{"unsupported document not retried", retryConfig(), []MockResponse{{Err: &ErrUnsupportedDocument{Provider: "openai", MediaType: "application/pdf"}}, okReply}, true, 1},
		{"default config is one attempt", DefaultConfig().Retry, []MockResponse{downReply, okReply}, true, 1},
		{"zero attempts still calls once", RetryConfig{}, []MockResponse{okReply}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			resp, err := WithRetry(mock, tt.cfg).Generate(context.Background(), Request{})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	mock := NewMockProvider(downReply, downReply, downReply)
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_DoesNotSleepPastDeadline(t *testing.T) {
	mock := NewMockProvider(downReply, okReply)
	cfg := retryConfig()
	cfg.InitialWait = time.Minute
	cfg.MaxWait = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), retryConfig()).ModelID())
}
