// Package interfaces defines core abstractions for the interactions API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/interactions-api/entities"
)

// CatalogStats summarizes the rule catalog a classifier was built from
type CatalogStats struct {
	Version         int `json:"version"`
	ExactPairs      int `json:"exact_pairs"`
	ClassPairs      int `json:"class_pairs"`
	MonitoredTokens int `json:"monitored_tokens"`
}

// Classifier defines the contract for interaction classification.
// Implementations are pure and safe for concurrent use.
type Classifier interface {
	// Classify fails only with entities.ErrEmptyName
	Classify(drug1, drug2 string) (entities.Classification, error)

	// ClassifyPair is total over normalized pairs
	ClassifyPair(pair entities.DrugPair) entities.Classification

	// Decide also reports the tier and rule that matched
	Decide(pair entities.DrugPair) entities.Decision

	Stats() CatalogStats
}

// TextGenerationProvider is the external generative text capability.
// Generate performs exactly one attempt; retrying is not its caller's job.
type TextGenerationProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, params entities.GenerationParams) (string, error)
}

// CircuitStateReporter is implemented by providers that can report their
// circuit breaker state (closed, half-open, open)
type CircuitStateReporter interface {
	State() string
}

// NarrativeSynthesizer builds audience-specific narratives. It never fails:
// provider problems are absorbed into deterministic fallback text.
type NarrativeSynthesizer interface {
	Synthesize(ctx context.Context, req entities.NarrativeRequest) entities.Narrative
	SynthesizeNarratives(ctx context.Context, pair entities.DrugPair, classification entities.Classification) entities.NarrativeSet
}

// ProviderStatusStore records provider warm-up outcomes.
// It provides thread-safe access with atomic operations.
type ProviderStatusStore interface {
	RecordWarmup(at time.Time, err error)
	GetLastWarmup() time.Time
	GetLastWarmupError() string
	LastWarmupSucceeded() bool
	BeginWarmup() bool
	EndWarmup()
	IsWarming() bool
	GetServerStartTime() time.Time
}

// Scheduler defines the contract for background job scheduling
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality
type HealthChecker interface {
	// HealthCheck returns the status word, details and the HTTP status to use
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// InputValidator validates user supplied values
type InputValidator interface {
	// ValidateStruct applies struct tag validation to a request body
	ValidateStruct(v any) error

	// ValidateDrugName screens a single drug name
	ValidateDrugName(input string) error
}

// HTTPHandler defines the contract for HTTP request handlers
type HTTPHandler interface {
	Root(w http.ResponseWriter, r *http.Request)
	Predict(w http.ResponseWriter, r *http.Request)
	Classify(w http.ResponseWriter, r *http.Request)
	Report(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
