package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
	"github.com/sony/gobreaker"
)

// Compile-time check to ensure Breaker implements TextGenerationProvider
var _ interfaces.TextGenerationProvider = (*Breaker)(nil)

// BreakerConfig holds configuration for the provider circuit breaker
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the default circuit breaker configuration
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,                // probes allowed while half-open
		Interval:         30 * time.Second, // closed-state counting window
		Timeout:          60 * time.Second, // open duration before half-open
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Breaker fails fast with ErrProviderUnavailable while the wrapped provider
// keeps failing. It never retries.
type Breaker struct {
	next interfaces.TextGenerationProvider
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps a provider in a circuit breaker
func WithBreaker(next interfaces.TextGenerationProvider, config BreakerConfig) *Breaker {
	name := next.Name()
	metrics.ProviderBreakerState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logging.Warn("Provider circuit breaker state changed", "provider", name, "from", from.String(), "to", to.String())
			metrics.ProviderBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// A malformed body still means the provider answered
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, entities.ErrProviderMalformedResponse)
		},
	})

	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Name() string { return b.next.Name() }

// State reports the breaker state: closed, half-open or open
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Generate forwards one call unless the circuit is open
func (b *Breaker) Generate(ctx context.Context, prompt string, params entities.GenerationParams) (string, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.next.Generate(ctx, prompt, params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %s circuit: %v", entities.ErrProviderUnavailable, b.next.Name(), err)
		}
		return "", err
	}

	text, _ := result.(string)
	return text, nil
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}
