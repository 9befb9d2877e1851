package narrative

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
)

// DefaultTimeout bounds one provider call
const DefaultTimeout = 60 * time.Second

// Compile-time check to ensure Synthesizer implements NarrativeSynthesizer
var _ interfaces.NarrativeSynthesizer = (*Synthesizer)(nil)

type failureKind string

const (
	failureUnavailable failureKind = "unavailable"
	failureTimeout     failureKind = "timeout"
	failureMalformed   failureKind = "malformed"
	failureInternal    failureKind = "internal"
)

// attemptResult is either generated text or a failure with its cause
type attemptResult struct {
	text    string
	failure failureKind
	cause   error
}

func (r attemptResult) generated() bool {
	return r.failure == ""
}

func failed(kind failureKind, cause error) attemptResult {
	return attemptResult{failure: kind, cause: cause}
}

// Synthesizer produces narratives with a single bounded provider attempt per
// audience. It is safe for concurrent use.
type Synthesizer struct {
	provider interfaces.TextGenerationProvider
	timeout  time.Duration
	params   entities.GenerationParams
}

// NewSynthesizer creates a synthesizer. A nil provider means every narrative
// uses the fallback text; a non-positive timeout uses DefaultTimeout.
func NewSynthesizer(provider interfaces.TextGenerationProvider, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Synthesizer{
		provider: provider,
		timeout:  timeout,
		params:   entities.DefaultGenerationParams(),
	}
}

// WithParams returns a copy using different generation parameters
func (s *Synthesizer) WithParams(params entities.GenerationParams) *Synthesizer {
	clone := *s
	clone.params = params
	return &clone
}

// Synthesize never fails. Provider errors, timeouts, malformed output and
// panics all produce the fallback narrative.
func (s *Synthesizer) Synthesize(ctx context.Context, req entities.NarrativeRequest) entities.Narrative {
	prompt := BuildPrompt(req)
	result := s.attempt(ctx, prompt)

	if result.generated() {
		if text, ok := postProcess(result.text, prompt, req); ok {
			metrics.NarrativesTotal.WithLabelValues(string(req.Audience), string(entities.SourceGenerated)).Inc()
			return entities.Narrative{
				Audience: req.Audience,
				Source:   entities.SourceGenerated,
				Text:     text,
			}
		}
		result = failed(failureMalformed, fmt.Errorf("%w: empty after prompt removal", entities.ErrProviderMalformedResponse))
	}

	logging.Warn("Narrative generation failed, using fallback text",
		"audience", req.Audience,
		"provider", s.providerName(),
		"failure", result.failure,
		"error", result.cause,
	)
	metrics.NarrativesTotal.WithLabelValues(string(req.Audience), string(entities.SourceFallback)).Inc()
	return fallbackNarrative(req)
}

// SynthesizeNarratives produces both audiences concurrently. A failure in
// one audience never affects the other.
func (s *Synthesizer) SynthesizeNarratives(ctx context.Context, pair entities.DrugPair, classification entities.Classification) entities.NarrativeSet {
	var set entities.NarrativeSet
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		set.Patient = s.Synthesize(ctx, entities.NarrativeRequest{
			Pair:           pair,
			Classification: classification,
			Audience:       entities.AudiencePatient,
		})
	}()
	go func() {
		defer wg.Done()
		set.Professional = s.Synthesize(ctx, entities.NarrativeRequest{
			Pair:           pair,
			Classification: classification,
			Audience:       entities.AudienceProfessional,
		})
	}()
	wg.Wait()

	return set
}

// attempt makes exactly one provider call. The deadline is enforced here
// rather than trusted to the provider.
func (s *Synthesizer) attempt(ctx context.Context, prompt string) attemptResult {
	if s.provider == nil {
		return failed(failureUnavailable, entities.ErrProviderUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan attemptResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- failed(failureInternal, fmt.Errorf("provider panic: %v", r))
			}
		}()

		text, err := s.provider.Generate(ctx, prompt, s.params)
		if err != nil {
			done <- failed(classifyError(err), err)
			return
		}
		if text == "" {
			done <- failed(failureMalformed, fmt.Errorf("%w: empty text", entities.ErrProviderMalformedResponse))
			return
		}
		done <- attemptResult{text: text}
	}()

	var result attemptResult
	select {
	case result = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result = failed(failureTimeout, fmt.Errorf("%w after %s", entities.ErrProviderTimeout, s.timeout))
		} else {
			result = failed(failureUnavailable, ctx.Err())
		}
	}

	outcome := "success"
	if !result.generated() {
		outcome = string(result.failure)
	}
	metrics.ProviderRequestDuration.WithLabelValues(s.providerName(), outcome).Observe(time.Since(start).Seconds())

	return result
}

func (s *Synthesizer) providerName() string {
	if s.provider == nil {
		return "none"
	}
	return s.provider.Name()
}

func classifyError(err error) failureKind {
	switch {
	case errors.Is(err, entities.ErrProviderTimeout), errors.Is(err, context.DeadlineExceeded):
		return failureTimeout
	case errors.Is(err, entities.ErrProviderMalformedResponse):
		return failureMalformed
	default:
		return failureUnavailable
	}
}
