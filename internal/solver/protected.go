package solver

import (
	"context"
	"errors"
	"time"

	"smart-calculator/internal/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ProtectionConfig tunes the circuit breaker and rate limiter in front of a Client.
type ProtectionConfig struct {
	// RequestsPerSecond of zero or less disables rate limiting.
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	MaxHalfOpen       uint32        `yaml:"max_half_open"`
	Interval          time.Duration `yaml:"interval"`
	OpenTimeout       time.Duration `yaml:"open_timeout"`
	// ConsecutiveFailures opens the circuit.
	ConsecutiveFailures uint32 `yaml:"consecutive_failures"`
}

func DefaultProtectionConfig() ProtectionConfig {
	return ProtectionConfig{
		RequestsPerSecond:   2,
		Burst:               4,
		MaxHalfOpen:         1,
		Interval:            time.Minute,
		OpenTimeout:         30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Protected guards a Client with a shared circuit breaker and rate limiter.
// Calls rejected by either fail immediately with an *Error.
type Protected struct {
	next    Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

var _ Client = (*Protected)(nil)

func NewProtected(next Client, cfg ProtectionConfig) *Protected {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	trip := cfg.ConsecutiveFailures
	if trip == 0 {
		trip = DefaultProtectionConfig().ConsecutiveFailures
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "solver",
		MaxRequests: cfg.MaxHalfOpen,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
		IsSuccessful: func(err error) bool {
			// A malformed reply means the model answered; it says nothing
			// about endpoint health.
			return err == nil || errors.Is(err, ErrMalformedResponse)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.Logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Protected{
		next:    next,
		breaker: breaker,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (p *Protected) SolveWordProblem(ctx context.Context, prompt string) (Solution, error) {
	out, err := p.execute("solve", func() (interface{}, error) {
		return p.next.SolveWordProblem(ctx, prompt)
	})
	if err != nil {
		return Solution{}, err
	}
	return out.(Solution), nil
}

func (p *Protected) Explain(ctx context.Context, expression, result string) (string, error) {
	out, err := p.execute("explain", func() (interface{}, error) {
		return p.next.Explain(ctx, expression, result)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state ("closed", "half-open", "open").
func (p *Protected) State() string {
	return p.breaker.State().String()
}

func (p *Protected) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	if !p.limiter.Allow() {
		return nil, &Error{Op: op, Err: ErrRateLimited}
	}

	out, err := p.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &Error{Op: op, Err: ErrCircuitOpen}
	}
	if err != nil {
		return nil, Wrap(op, err)
	}
	return out, nil
}
