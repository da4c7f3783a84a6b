package internal

import (
	"context"
	"fmt"
	"math"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 2 * time.Second
)

// RetryConfig bounds the attempts made for one request
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	return c
}

// Retrier runs ensure-session + prompt with exponential backoff between
// failed attempts.
type Retrier struct {
	sessions *SessionManager
	prompts  *PromptBuilder
	cfg      RetryConfig

	// Timer drives the waits between attempts. Nil uses a real timer.
	Timer backoff.Timer
}

// NewRetrier creates a Retrier. Zero values in cfg take the defaults.
func NewRetrier(sessions *SessionManager, prompts *PromptBuilder, cfg RetryConfig) *Retrier {
	return &Retrier{
		sessions: sessions,
		prompts:  prompts,
		cfg:      cfg.withDefaults(),
	}
}

// Config returns the effective retry bounds
func (r *Retrier) Config() RetryConfig {
	return r.cfg
}

// newBackOff doubles from BaseDelay with no jitter and no interval cap.
func (r *Retrier) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxAttempts-1)), ctx)
}

// Invoke renders and sends the prompt for req, retrying failures. It returns
// the raw model response, a *RetriesExhaustedError, or the context error when
// ctx ends before the attempts run out.
func (r *Retrier) Invoke(ctx context.Context, req InsightsRequest) (string, error) {
	var response string
	attempts := 0

	operation := func() error {
		attempts++
		out, err := r.attempt(ctx, req)
		if err != nil {
			// WithMaxRetries treats 0 as unlimited, so a single-attempt config stops here.
			if attempts >= r.cfg.MaxAttempts {
				return backoff.Permanent(err)
			}
			return err
		}
		response = out
		return nil
	}
	notify := func(err error, next time.Duration) {
		LogWarn("Retry %d/%d failed: %v (next attempt in %s)", attempts, r.cfg.MaxAttempts, err, next)
	}

	err := backoff.RetryNotifyWithTimer(operation, r.newBackOff(ctx), notify, r.Timer)
	if err == nil {
		return response, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		LogWarn("Insights request cancelled after %d attempt(s): %v", attempts, ctxErr)
		return "", fmt.Errorf("insights request cancelled after %d attempt(s): %w", attempts, ctxErr)
	}

	LogError("Max retries reached: %v", err)
	return "", &RetriesExhaustedError{Attempts: attempts, Err: err}
}

func (r *Retrier) attempt(ctx context.Context, req InsightsRequest) (string, error) {
	session, err := r.sessions.EnsureSession(ctx)
	if err != nil {
		return "", err
	}

	prompt, err := r.prompts.Render(ctx, req)
	if err != nil {
		return "", err
	}
	LogDebug("Sending prompt to model:\n%s", prompt)

	response, err := session.Prompt(ctx, prompt)
	if err != nil {
		r.sessions.Invalidate()
		return "", &PromptError{SessionID: session.ID(), Err: err}
	}
	LogDebug("Response from model:\n%s", response)
	return response, nil
}
