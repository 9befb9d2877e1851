// Package scheduler runs the background provider warm-up. Hosted models are
// unloaded after a period without traffic, so a cheap generation call is
// issued on a fixed interval to keep the first real request fast.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
	"github.com/go-co-op/gocron"
)

const warmupPrompt = "Drug interaction summary:"

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler issues warm-up calls and records their outcome
type Scheduler struct {
	status    interfaces.ProviderStatusStore
	provider  interfaces.TextGenerationProvider
	interval  time.Duration
	timeout   time.Duration
	scheduler *gocron.Scheduler
}

// NewScheduler creates a scheduler. An interval of zero disables warm-up.
func NewScheduler(status interfaces.ProviderStatusStore, provider interfaces.TextGenerationProvider, interval, timeout time.Duration) *Scheduler {
	return &Scheduler{
		status:    status,
		provider:  provider,
		interval:  interval,
		timeout:   timeout,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start schedules the warm-up job. The first run starts immediately in the
// background; a failing provider never prevents startup.
func (s *Scheduler) Start() error {
	if s.interval <= 0 || s.provider == nil {
		logging.Info("Provider warm-up disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		if err := s.warmup(); err != nil {
			logging.Warn("Provider warm-up failed", "provider", s.provider.Name(), "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule provider warm-up", "error", err)
		return fmt.Errorf("failed to schedule warm-up: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Provider warm-up scheduled", "provider", s.provider.Name(), "interval", s.interval.String())
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// warmup performs one guarded warm-up call
func (s *Scheduler) warmup() error {
	if !s.status.BeginWarmup() {
		logging.Info("Warm-up already in progress, skipping...")
		return nil
	}
	defer s.status.EndWarmup()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	params := entities.DefaultGenerationParams()
	params.MaxTokens = 1

	start := time.Now()
	_, err := s.provider.Generate(ctx, warmupPrompt, params)
	s.status.RecordWarmup(time.Now(), err)
	if err != nil {
		return err
	}

	logging.Debug("Provider warm-up completed", "provider", s.provider.Name(), "duration", time.Since(start).String())
	return nil
}
