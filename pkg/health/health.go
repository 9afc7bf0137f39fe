package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// CheckType represents the type of readiness check
type CheckType string

const (
	CheckTypeHTTP CheckType = "http"
	CheckTypeTCP  CheckType = "tcp"
	CheckTypeExec CheckType = "exec"
	CheckTypeFunc CheckType = "func"
)

// Result represents the outcome of a check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is implemented by every readiness check
type Checker interface {
	Check(ctx context.Context) Result
	Type() CheckType
}

// CheckFunc adapts a function to Checker. A nil error is healthy.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) Result {
	start := time.Now()
	if err := f(ctx); err != nil {
		return Result{Message: err.Error(), CheckedAt: start, Duration: time.Since(start)}
	}
	return Result{Healthy: true, Message: "ok", CheckedAt: start, Duration: time.Since(start)}
}

func (f CheckFunc) Type() CheckType {
	return CheckTypeFunc
}

// RetryConfig bounds a retry loop: at most Attempts tries, Interval apart
type RetryConfig struct {
	Attempts int
	Interval time.Duration
}

// Defaults used while a stack comes up
var (
	// ArtifactRetry waits for a dependency to write its credentials
	ArtifactRetry = RetryConfig{Attempts: 10, Interval: 3 * time.Second}

	// ServiceRetry waits for a service to answer its API
	ServiceRetry = RetryConfig{Attempts: 15, Interval: 2 * time.Second}
)

func (c RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.Interval), uint64(attempts-1))
	return backoff.WithContext(b, ctx)
}

// ErrNotReady is returned by Wait when the checker never became healthy
var ErrNotReady = errors.New("not ready")

// Wait runs checker until it reports healthy or the attempts run out
func Wait(ctx context.Context, checker Checker, cfg RetryConfig) error {
	var last Result
	err := backoff.Retry(func() error {
		last = checker.Check(ctx)
		if !last.Healthy {
			return errors.New(last.Message)
		}
		return nil
	}, cfg.backOff(ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w after %d attempts: %s", ErrNotReady, cfg.Attempts, last.Message)
	}
	return nil
}

// Retry runs op until it succeeds, fails with an error retryable rejects,
// or the attempts run out. The last error is returned.
func Retry(ctx context.Context, cfg RetryConfig, retryable func(error) bool, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err != nil && retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, cfg.backOff(ctx))
}
