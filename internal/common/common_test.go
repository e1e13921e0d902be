package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	inner := errors.New("disk full")

	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "with cause", err: NewUserError("could not save", inner), want: "could not save: disk full"},
		{name: "message only", err: NewUserError("nothing to do", nil), want: "nothing to do"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	assert.ErrorIs(t, NewUserError("x", inner), inner)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "locked store", err: ErrStoreLocked, want: true},
		{name: "wrapped lock", err: errors.Join(errors.New("save"), ErrStoreLocked), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "marked retryable", err: &RetryableError{Err: errors.New("busy"), Retryable: true}, want: true},
		{name: "marked permanent", err: &RetryableError{Err: errors.New("bad"), Retryable: false}, want: false},
		{name: "not found", err: ErrNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return ErrStoreLocked
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return ErrStoreLocked
		}, opts)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorIs(t, err, ErrStoreLocked)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors return immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return ErrNotFound
		}, opts)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancelled between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		err := WithRetry(ctx, func() error {
			cancel()
			return ErrStoreLocked
		}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidConfig)
		} else {
			assert.NoError(t, err)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSetupLoggerTo(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))

	LogInfo("imported", Fields{"files": 2})
	LogDebug("hidden", nil)
	assert.Contains(t, buf.String(), `"msg":"imported"`)
	assert.Contains(t, buf.String(), `"files":2`)
	assert.NotContains(t, buf.String(), "hidden")

	assert.ErrorIs(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}

func TestRetryOptions_Defaults(t *testing.T) {
	got := RetryOptions{MaxAttempts: 2}.withDefaults()
	assert.Equal(t, 2, got.MaxAttempts)
	assert.Equal(t, defaultDelay, got.InitialDelay)
	assert.Equal(t, defaultMaxDelay, got.MaxDelay)
	assert.InDelta(t, defaultMultiplier, got.Multiplier, 0)
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("rebuild: %w", NewUserError("Nothing imported yet", ErrNoTransactions))
	assert.Equal(t, "Nothing imported yet", UserMessage(wrapped))
	assert.Equal(t, "store locked", UserMessage(ErrStoreLocked))
}
