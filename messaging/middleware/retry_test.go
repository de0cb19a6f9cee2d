package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"conference/logging"
	"conference/messaging"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, BackoffFactor: 2, MaxDelay: 5 * time.Millisecond}
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	h := Retry(fastConfig(3))(messaging.NewHandler("h", func(context.Context, messaging.IMessage) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}))

	assert.NoError(t, h.Handle(context.Background(), messaging.NewMessage("t", nil)))
	assert.Equal(t, 3, calls)
	assert.Equal(t, "h", h.Type())
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	h := Retry(fastConfig(2))(messaging.NewHandler("h", func(context.Context, messaging.IMessage) error {
		calls++
		return boom
	}))

	assert.ErrorIs(t, h.Handle(context.Background(), messaging.NewMessage("t", nil)), boom)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	h := Retry(fastConfig(5))(messaging.NewHandler("h", func(context.Context, messaging.IMessage) error {
		calls++
		return Permanent(errors.New("bad payload"))
	}))

	err := h.Handle(context.Background(), messaging.NewMessage("t", nil))
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}

func TestRetryHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	h := Retry(fastConfig(3))(messaging.NewHandler("h", func(context.Context, messaging.IMessage) error {
		calls++
		return nil
	}))
	assert.ErrorIs(t, h.Handle(ctx, messaging.NewMessage("t", nil)), context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 10 * time.Millisecond, BackoffFactor: 2, MaxDelay: 30 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, cfg.delay(1))
	assert.Equal(t, 20*time.Millisecond, cfg.delay(2))
	assert.Equal(t, 30*time.Millisecond, cfg.delay(3))
}

func TestLoggingPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	h := Logging(logging.NewNoopLogger())(messaging.NewHandler("h", func(context.Context, messaging.IMessage) error {
		return boom
	}))
	assert.ErrorIs(t, h.Handle(context.Background(), messaging.NewMessage("t", nil)), boom)
}
