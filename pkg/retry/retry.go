package retry

import (
	"context"
	"math/rand"
	"time"
)

type Operation = func() error

type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
	// RetryIf classifies errors; a nil classifier retries everything.
	// Non-retryable errors are returned immediately.
	RetryIf func(error) bool
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		BackoffFactor: 2.0,
		InitialDelay:  time.Second,
		MaxDelay:      20 * time.Second,
		Jitter:        100 * time.Millisecond,
	}
}

type Retrier struct {
	config *Config
}

func NewRetrier(config *Config) *Retrier {
	return &Retrier{
		config: config,
	}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

// NewUpstreamRetrier bounds retries of external-capability calls, retrying
// only errors the classifier accepts (timeouts, 5xx, 429).
func NewUpstreamRetrier(maxRetries int, retryIf func(error) bool) *Retrier {
	cfg := NewDefaultConfig()
	cfg.MaxRetries = maxRetries
	cfg.RetryIf = retryIf
	return NewRetrier(cfg)
}

func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	delay := r.config.InitialDelay
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		if r.config.RetryIf != nil && !r.config.RetryIf(err) {
			return err
		}

		if attempt == r.config.MaxRetries {
			return err
		}

		jitter := time.Duration(rnd.Float64() * float64(r.config.Jitter))
		nextDelay := delay + jitter
		if nextDelay > r.config.MaxDelay {
			nextDelay = r.config.MaxDelay + jitter
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(nextDelay):
		}

		delay = time.Duration(float64(delay) * r.config.BackoffFactor)
		if delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}
	}
	return err
}
