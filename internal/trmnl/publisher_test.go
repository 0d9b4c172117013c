package trmnl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sendOutcome struct {
	res *SendResult
	err error
}

type fakeSender struct {
	outcomes []sendOutcome
	calls    int
}

func (f *fakeSender) Send(_ context.Context, _ Payload) (*SendResult, error) {
	i := f.calls
	f.calls++
	if i >= len(f.outcomes) {
		i = len(f.outcomes) - 1
	}
	o := f.outcomes[i]
	return o.res, o.err
}

func newTestPublisher(sender Sender, limiter *RateLimiter) (*Publisher, *[]time.Duration) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewPublisher(sender, limiter, logger)
	sleeps := &[]time.Duration{}
	p.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	p.now = func() time.Time {
		return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	}
	return p, sleeps
}

func TestPublishSucceedsFirstAttempt(t *testing.T) {
	sender := &fakeSender{outcomes: []sendOutcome{
		{res: &SendResult{StatusCode: 200}},
	}}
	limiter := NewRateLimiter(12)
	p, sleeps := newTestPublisher(sender, limiter)

	err := p.Publish(context.Background(), Payload{})

	require.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
	assert.Empty(t, *sleeps)

	count, _ := limiter.Status(p.now())
	assert.Equal(t, 1, count)
}

func TestPublishHonorsRetryAfterThenSucceeds(t *testing.T) {
	sender := &fakeSender{outcomes: []sendOutcome{
		{res: &SendResult{StatusCode: 429, RetryAfter: "5"}},
		{res: &SendResult{StatusCode: 200}},
	}}
	limiter := NewRateLimiter(12)
	p, sleeps := newTestPublisher(sender, limiter)

	err := p.Publish(context.Background(), Payload{})

	require.NoError(t, err)
	assert.Equal(t, 2, sender.calls)
	assert.Equal(t, []time.Duration{5 * time.Second}, *sleeps)
}

func TestPublishBacksOffExponentially(t *testing.T) {
	sender := &fakeSender{outcomes: []sendOutcome{
		{res: &SendResult{StatusCode: 500, Body: "oops"}},
	}}
	limiter := NewRateLimiter(12)
	p, sleeps := newTestPublisher(sender, limiter)

	err := p.Publish(context.Background(), Payload{})

	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, 5, sender.calls)
	assert.Equal(t, []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
	}, *sleeps)

	// A failed cycle records nothing against the hourly budget.
	count, _ := limiter.Status(p.now())
	assert.Equal(t, 0, count)
}

func TestPublishRateLimitWithoutRetryAfterUsesBackoff(t *testing.T) {
	sender := &fakeSender{outcomes: []sendOutcome{
		{res: &SendResult{StatusCode: 429}},
		{res: &SendResult{StatusCode: 429}},
		{res: &SendResult{StatusCode: 200}},
	}}
	p, sleeps := newTestPublisher(sender, NewRateLimiter(12))

	err := p.Publish(context.Background(), Payload{})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
}

func TestPublishTransportErrorsRetry(t *testing.T) {
	sender := &fakeSender{outcomes: []sendOutcome{
		{err: errors.New("connection refused")},
		{res: &SendResult{StatusCode: 200}},
	}}
	p, sleeps := newTestPublisher(sender, NewRateLimiter(12))

	err := p.Publish(context.Background(), Payload{})

	require.NoError(t, err)
	assert.Equal(t, 2, sender.calls)
	assert.Equal(t, []time.Duration{1 * time.Second}, *sleeps)
}

func TestPublishNotConfiguredFailsImmediately(t *testing.T) {
	sender := &fakeSender{outcomes: []sendOutcome{
		{err: ErrNotConfigured},
	}}
	p, sleeps := newTestPublisher(sender, NewRateLimiter(12))

	err := p.Publish(context.Background(), Payload{})

	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, 1, sender.calls)
	assert.Empty(t, *sleeps)
}

func TestPublishRespectsContextDuringBackoff(t *testing.T) {
	sender := &fakeSender{outcomes: []sendOutcome{
		{res: &SendResult{StatusCode: 500}},
	}}
	p, _ := newTestPublisher(sender, NewRateLimiter(12))
	p.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	err := p.Publish(context.Background(), Payload{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sender.calls)
}

func TestBackoffDelayCapped(t *testing.T) {
	p, _ := newTestPublisher(&fakeSender{outcomes: []sendOutcome{{}}}, NewRateLimiter(12))
	p.MaxDelay = 4 * time.Second

	assert.Equal(t, 1*time.Second, p.backoffDelay(1))
	assert.Equal(t, 2*time.Second, p.backoffDelay(2))
	assert.Equal(t, 4*time.Second, p.backoffDelay(3))
	assert.Equal(t, 4*time.Second, p.backoffDelay(4))
	assert.Equal(t, 4*time.Second, p.backoffDelay(10))
}

func TestRetryAfterDelayFallsBackOnGarbage(t *testing.T) {
	p, _ := newTestPublisher(&fakeSender{outcomes: []sendOutcome{{}}}, NewRateLimiter(12))

	res := &SendResult{StatusCode: 429, RetryAfter: "Wed, 21 Oct 2026 07:28:00 GMT"}
	assert.Equal(t, 2*time.Second, p.retryAfterDelay(res, 2))

	res = &SendResult{StatusCode: 429, RetryAfter: "30"}
	assert.Equal(t, 30*time.Second, p.retryAfterDelay(res, 2))
}
