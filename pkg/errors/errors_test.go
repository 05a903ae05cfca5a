package errors

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatchErrorMessage(t *testing.T) {
	inner := stderrors.New("connection refused")
	err := NewFetch("AutoTrader", "page fetch failed", inner)

	assert.Contains(t, err.Error(), "fetch")
	assert.Contains(t, err.Error(), "AutoTrader")
	assert.Contains(t, err.Error(), "page fetch failed")
	assert.Contains(t, err.Error(), "connection refused")

	// Without a wrapped error the message has no trailing cause
	plain := NewConfiguration("BOT_TOKEN is not set", nil)
	assert.Equal(t, "[configuration] : BOT_TOKEN is not set", plain.Error())
}

func TestWatchErrorUnwrap(t *testing.T) {
	inner := stderrors.New("disk full")
	err := NewState("could not write state file", inner)

	assert.True(t, stderrors.Is(err, inner))

	var watchErr *WatchError
	assert.True(t, stderrors.As(error(err), &watchErr))
	assert.Equal(t, ErrorTypeState, watchErr.Type)
}

func TestWatchErrorFatal(t *testing.T) {
	fatal := []*WatchError{
		NewConfiguration("missing token", nil),
		NewFetch("AutoTrader", "page 1 failed", nil),
		NewRateLimit("AutoTrader", 500*time.Second),
		NewParse("AutoTrader", "broken document", nil),
	}
	for _, e := range fatal {
		assert.True(t, e.Fatal(), "expected %s to be fatal", e.Type)
	}

	recovered := []*WatchError{
		NewNotification("Telegram", "send failed", nil),
		NewState("save failed", nil),
		NewPublisher("Redis", "publish failed", nil),
	}
	for _, e := range recovered {
		assert.False(t, e.Fatal(), "expected %s to be recoverable", e.Type)
	}
}
