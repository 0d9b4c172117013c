package trmnl

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"headsign.transitboard.org/internal/logging"
)

// ErrDeliveryFailed is returned when all delivery attempts are exhausted.
// It is terminal for the current cycle only; the next cycle starts fresh.
var ErrDeliveryFailed = errors.New("display delivery failed")

const (
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 900 * time.Second
	defaultMaxAttempts = 5
)

type publishState int

const (
	stateAttempting publishState = iota
	stateBackoff
	stateSucceeded
	stateFailed
)

// Publisher delivers payloads with bounded exponential-backoff retry. The
// retry loop is an explicit state machine over
// {Attempting, Backoff, Succeeded, Failed}.
type Publisher struct {
	Sender      Sender
	Limiter     *RateLimiter
	Logger      *slog.Logger
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int

	// sleep and now are swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewPublisher creates a publisher with the default backoff policy: 1s base
// delay doubling per attempt, capped at 900s, at most 5 attempts.
func NewPublisher(sender Sender, limiter *RateLimiter, logger *slog.Logger) *Publisher {
	return &Publisher{
		Sender:      sender,
		Limiter:     limiter,
		Logger:      logger,
		BaseDelay:   defaultBaseDelay,
		MaxDelay:    defaultMaxDelay,
		MaxAttempts: defaultMaxAttempts,
		sleep:       sleepCtx,
		now:         time.Now,
	}
}

// Publish delivers the payload, retrying transient failures until success or
// the attempt ceiling. On success the rate limiter records the send. A
// missing webhook URL fails immediately without retries.
func (p *Publisher) Publish(ctx context.Context, payload Payload) error {
	state := stateAttempting
	attempt := 0
	var delay time.Duration

	for {
		switch state {
		case stateAttempting:
			attempt++
			res, err := p.Sender.Send(ctx, payload)

			switch {
			case errors.Is(err, ErrNotConfigured):
				logging.LogError(p.Logger, "display delivery skipped", err)
				return err
			case err != nil:
				logging.LogError(p.Logger, "error sending to display", err,
					slog.Int("attempt", attempt))
				if attempt >= p.MaxAttempts {
					state = stateFailed
					break
				}
				delay = p.backoffDelay(attempt)
				state = stateBackoff
			case res.StatusCode >= 200 && res.StatusCode < 300:
				p.Limiter.RecordSend(p.now())
				state = stateSucceeded
			case res.StatusCode == 429:
				if attempt >= p.MaxAttempts {
					state = stateFailed
					break
				}
				delay = p.retryAfterDelay(res, attempt)
				logging.LogOperation(p.Logger, "rate limited by display sink",
					slog.Duration("retry_in", delay),
					slog.Int("attempt", attempt))
				state = stateBackoff
			default:
				logging.LogOperation(p.Logger, "unexpected display sink response",
					slog.Int("status", res.StatusCode),
					slog.String("body", res.Body),
					slog.Int("attempt", attempt))
				if attempt >= p.MaxAttempts {
					state = stateFailed
					break
				}
				delay = p.backoffDelay(attempt)
				state = stateBackoff
			}

		case stateBackoff:
			if err := p.sleep(ctx, delay); err != nil {
				return err
			}
			state = stateAttempting

		case stateSucceeded:
			return nil

		case stateFailed:
			logging.LogOperation(p.Logger, "display delivery failed",
				slog.Int("attempts", attempt))
			return ErrDeliveryFailed
		}
	}
}

// backoffDelay computes the exponential delay for the given attempt number
// (1-based): base, 2*base, 4*base, ... capped at MaxDelay.
func (p *Publisher) backoffDelay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// retryAfterDelay prefers the sink's Retry-After header when it parses as
// whole seconds, falling back to the exponential delay.
func (p *Publisher) retryAfterDelay(res *SendResult, attempt int) time.Duration {
	if res.RetryAfter != "" {
		if secs, err := strconv.Atoi(res.RetryAfter); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return p.backoffDelay(attempt)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
