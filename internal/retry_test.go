package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetrier(backend ModelBackend, cfg RetryConfig, delays *[]time.Duration) *Retrier {
	r := NewRetrier(NewSessionManager(backend, nil), &PromptBuilder{}, cfg)
	r.Timer = newRecordingTimer(delays)
	return r
}

var testRequest = InsightsRequest{
	Budget: 50,
	Preferences: Preferences{
		PreferredCategories: []string{"electronics"},
		HolidaySeason:       BoolPtr(true),
		GiftShopping:        BoolPtr(false),
	},
}

func TestRetrier_Defaults(t *testing.T) {
	r := NewRetrier(NewSessionManager(newFakeBackend(alwaysFail()), nil), &PromptBuilder{}, RetryConfig{})
	assert.Equal(t, DefaultMaxAttempts, r.Config().MaxAttempts)
	assert.Equal(t, DefaultBaseDelay, r.Config().BaseDelay)
	assert.Equal(t, 5, DefaultMaxAttempts)
	assert.Equal(t, 2*time.Second, DefaultBaseDelay)
}

func TestRetrier_SucceedsFirstAttempt(t *testing.T) {
	var delays []time.Duration
	backend := newFakeBackend(alwaysReply("Product suggestions: USB cable, $10"))
	r := newTestRetrier(backend, RetryConfig{}, &delays)

	got, err := r.Invoke(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "Product suggestions: USB cable, $10", got)
	assert.Empty(t, delays)
}

func TestRetrier_AlwaysFailingBackend(t *testing.T) {
	var delays []time.Duration
	backend := newFakeBackend(alwaysFail())
	r := newTestRetrier(backend, RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second}, &delays)

	got, err := r.Invoke(context.Background(), testRequest)
	require.Error(t, err)
	assert.Empty(t, got)

	var exhausted *RetriesExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 5, exhausted.Attempts)
	assert.ErrorIs(t, err, errPromptRejected)

	_, _, prompts := backend.counts()
	assert.Equal(t, 5, prompts, "exactly maxAttempts attempts")

	// No wait after the final attempt; each wait doubles the previous one.
	assert.Equal(t, []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
	}, delays)
}

func TestRetrier_BackoffDoubles(t *testing.T) {
	var delays []time.Duration
	r := newTestRetrier(newFakeBackend(alwaysFail()), RetryConfig{MaxAttempts: 4, BaseDelay: 10 * time.Millisecond}, &delays)

	_, err := r.Invoke(context.Background(), testRequest)
	require.Error(t, err)
	require.Len(t, delays, 3)
	assert.Equal(t, 10*time.Millisecond, delays[0])
	for k := 1; k < len(delays); k++ {
		assert.Equal(t, 2*delays[k-1], delays[k], "delay %d", k)
	}
}

func TestRetrier_UnavailableModelIsRetried(t *testing.T) {
	var delays []time.Duration
	backend := newFakeBackend(alwaysReply("done"))
	backend.available = AvailabilityNo
	r := newTestRetrier(backend, RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}, &delays)
	timer := newRecordingTimer(&delays)
	timer.onStart = func(n int) {
		if n == 2 {
			backend.setAvailable(AvailabilityReadily)
		}
	}
	r.Timer = timer

	got, err := r.Invoke(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "done", got)

	caps, create, prompts := backend.counts()
	assert.Equal(t, 3, caps)
	assert.Equal(t, 1, create)
	assert.Equal(t, 1, prompts)
}

func TestRetrier_RecoversStaleSession(t *testing.T) {
	var delays []time.Duration
	backend := newFakeBackend(func(prompt string, call int) (string, error) {
		if call == 1 {
			return "", errors.New("session destroyed")
		}
		return "recovered", nil
	})
	r := newTestRetrier(backend, RetryConfig{}, &delays)

	got, err := r.Invoke(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)

	_, create, _ := backend.counts()
	assert.Equal(t, 2, create, "failed prompt must drop the session and create a new one")
	assert.Len(t, delays, 1)
}

func TestRetrier_NoSuccessCaching(t *testing.T) {
	var delays []time.Duration
	backend := newFakeBackend(alwaysReply("same"))
	r := newTestRetrier(backend, RetryConfig{}, &delays)

	for i := 0; i < 2; i++ {
		_, err := r.Invoke(context.Background(), testRequest)
		require.NoError(t, err)
	}
	_, _, prompts := backend.counts()
	assert.Equal(t, 2, prompts)
}

// cancelTimer cancels the request context instead of firing
type cancelTimer struct {
	cancel context.CancelFunc
	c      chan time.Time
}

func (t *cancelTimer) Start(time.Duration) { t.cancel() }
func (t *cancelTimer) Stop()               {}
func (t *cancelTimer) C() <-chan time.Time { return t.c }

func TestRetrier_ContextCancelledDuringBackoff(t *testing.T) {
	backend := newFakeBackend(alwaysFail())
	r := NewRetrier(NewSessionManager(backend, nil), &PromptBuilder{}, RetryConfig{BaseDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Timer = &cancelTimer{cancel: cancel, c: make(chan time.Time)}

	_, err := r.Invoke(ctx, testRequest)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var exhausted *RetriesExhaustedError
	assert.False(t, errors.As(err, &exhausted), "cancellation is not exhaustion")
	assert.Contains(t, err.Error(), "cancelled after 1 attempt(s)")

	_, _, prompts := backend.counts()
	assert.Equal(t, 1, prompts)
}

func TestRetrier_ContextCancelledBeforeInvoke(t *testing.T) {
	backend := newFakeBackend(alwaysFail())
	r := NewRetrier(NewSessionManager(backend, nil), &PromptBuilder{}, RetryConfig{BaseDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Invoke(ctx, testRequest)
	assert.ErrorIs(t, err, context.Canceled)
	var exhausted *RetriesExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestRetrier_SingleAttempt(t *testing.T) {
	var delays []time.Duration
	backend := newFakeBackend(alwaysFail())
	r := newTestRetrier(backend, RetryConfig{MaxAttempts: 1, BaseDelay: time.Second}, &delays)

	_, err := r.Invoke(context.Background(), testRequest)
	var exhausted *RetriesExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 1, exhausted.Attempts)
	assert.Empty(t, delays)

	_, _, prompts := backend.counts()
	assert.Equal(t, 1, prompts)
}
