package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

type Operation = func(ctx context.Context) error

type Policy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	Jitter            time.Duration
	PerAttemptTimeout time.Duration

	// Rand drives jitter. Nil means time-seeded; tests inject a fixed seed.
	Rand *rand.Rand
}

func NewDefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:       3,
		BaseDelay:         300 * time.Millisecond,
		MaxDelay:          20 * time.Second,
		Jitter:            50 * time.Millisecond,
		PerAttemptTimeout: 30 * time.Second,
	}
}

// FinalError wraps the last error after all attempts were exhausted.
type FinalError struct {
	Attempts int
	Err      error
}

func (e *FinalError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FinalError) Unwrap() error {
	return e.Err
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent marks err as not retryable: validation failures, bad syntax,
// anything a second attempt cannot fix. Do returns it immediately, and the
// marker stays on the chain so an outer retrier will not retry it either.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

type Retrier struct {
	policy *Policy
}

func NewRetrier(policy *Policy) *Retrier {
	return &Retrier{
		policy: policy,
	}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultPolicy())
}

func (r *Retrier) Do(ctx context.Context, op Operation) error {
	rnd := r.policy.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	maxAttempts := r.policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	delay := r.policy.BaseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = r.attempt(ctx, op)
		if err == nil {
			return nil
		}

		if IsPermanent(err) {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt == maxAttempts {
			break
		}

		nextDelay := delay + r.jitter(rnd)
		if nextDelay > r.policy.MaxDelay {
			nextDelay = r.policy.MaxDelay
		}
		if nextDelay < 0 {
			nextDelay = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(nextDelay):
		}

		delay *= 2
		if delay > r.policy.MaxDelay {
			delay = r.policy.MaxDelay
		}
	}

	return &FinalError{Attempts: maxAttempts, Err: err}
}

// jitter draws a uniform offset in [-Jitter, +Jitter].
func (r *Retrier) jitter(rnd *rand.Rand) time.Duration {
	if r.policy.Jitter <= 0 {
		return 0
	}
	return time.Duration((rnd.Float64()*2 - 1) * float64(r.policy.Jitter))
}

func (r *Retrier) attempt(ctx context.Context, op Operation) error {
	if r.policy.PerAttemptTimeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.PerAttemptTimeout)
	defer cancel()
	return op(attemptCtx)
}
