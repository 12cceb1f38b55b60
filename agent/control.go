package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/model"
)

// RetryPolicy controls exponential backoff for transient provider failures.
// Fatal provider errors are never retried.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// InitialDelay is the backoff before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the growing backoff.
	MaxDelay time.Duration
	// Multiplier scales the delay after each retry.
	Multiplier float64
}

// DefaultRetryPolicy retries three times starting at 500ms, doubling up to 8s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2,
	}
}

func (p *RetryPolicy) normalize() {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 500 * time.Millisecond
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 8 * time.Second
	}
}

// completeWithRetry obtains one completion, retrying transient provider
// errors with exponential backoff. Fatal errors and cancellation return
// immediately; an exhausted retry budget escalates the last transient error
// to a fatal one, so callers only ever see fatal errors.
func (a *baseAgent) completeWithRetry(ctx context.Context, messages []core.Message) (string, error) {
	policy := a.opts.Retry
	delay := policy.InitialDelay

	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			a.logger.Debug("agent.model.retry", "agent", a.name, "attempt", attempt, "delay", delay.String())

			select {
			case <-ctx.Done():
				return "", model.NewFatalError(a.client.Info().Provider, "cancelled during retry backoff", ctx.Err())
			case <-time.After(delay):
			}

			delay = time.Duration(float64(delay) * policy.Multiplier)
			if delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
		}

		start := time.Now()
		text, err := a.client.Complete(ctx, messages, a.opts.ModelOptions...)
		if err == nil {
			a.logger.Debug("agent.model.complete", "agent", a.name, "duration_ms", time.Since(start).Milliseconds())
			return text, nil
		}

		lastErr = err

		var provErr *model.ProviderError
		if !errors.As(err, &provErr) || !provErr.Transient() {
			return "", err
		}

		a.logger.Warn("agent.model.transient", "agent", a.name, "attempt", attempt, "error", err.Error())
	}

	provider := a.client.Info().Provider

	var provErr *model.ProviderError
	if errors.As(lastErr, &provErr) {
		provider = provErr.Provider
	}

	return "", model.NewFatalError(provider,
		fmt.Sprintf("retry budget exhausted after %d attempts", policy.MaxRetries+1), lastErr)
}
