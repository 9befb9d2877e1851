// Package health provides health checking functionality for the interactions API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/interactions-api/interfaces"
)

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	classifier interfaces.Classifier
	provider   interfaces.TextGenerationProvider
	status     interfaces.ProviderStatusStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(classifier interfaces.Classifier, provider interfaces.TextGenerationProvider,
	status interfaces.ProviderStatusStore) *HealthCheckerImpl {
	return &HealthCheckerImpl{
		classifier: classifier,
		provider:   provider,
		status:     status,
	}
}

// HealthCheck reports classifier and provider state. Classification does not
// depend on the provider, so a degraded provider still answers 200: reports
// keep working with fallback narratives.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	data = map[string]any{}

	if h.classifier == nil {
		data["classifier"] = "unavailable"
		return "unhealthy", data, http.StatusServiceUnavailable
	}
	data["catalog"] = h.classifier.Stats()

	status = "healthy"
	httpStatus = http.StatusOK

	providerName := "none"
	if h.provider != nil {
		providerName = h.provider.Name()
	}
	provider := map[string]any{"name": providerName}

	if providerName == "none" {
		provider["narratives"] = "fallback_only"
	} else {
		if reporter, ok := h.provider.(interfaces.CircuitStateReporter); ok {
			circuit := reporter.State()
			provider["circuit"] = circuit
			if circuit != "closed" {
				status = "degraded"
			}
		}

		if h.status != nil {
			lastWarmup := h.status.GetLastWarmup()
			provider["is_warming"] = h.status.IsWarming()
			if !lastWarmup.IsZero() {
				provider["last_warmup"] = lastWarmup.Format(time.RFC3339)
				provider["last_warmup_ok"] = h.status.LastWarmupSucceeded()
				if !h.status.LastWarmupSucceeded() {
					provider["last_warmup_error"] = h.status.GetLastWarmupError()
					status = "degraded"
				}
			}
		}
	}
	data["provider"] = provider

	if h.status != nil {
		if start := h.status.GetServerStartTime(); !start.IsZero() {
			data["uptime_hours"] = math.Round(time.Since(start).Hours()*10) / 10
		}
	}

	return status, data, httpStatus
}
