package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// rebuildTimeout bounds one scheduled build. Week fetches are already capped
// by the client timeout; this is the whole-pipeline backstop.
const rebuildTimeout = 2 * time.Minute

// RebuildService regenerates the site on a fixed schedule and notifies
// connected preview clients after each successful build. The hub is optional;
// without one the service just rebuilds.
type RebuildService struct {
	builder    *SiteBuilder
	hub        *ReloadHub
	logger     *logrus.Logger
	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	interval   time.Duration
	lastResult *BuildResult
}

// NewRebuildService creates a new rebuild service.
func NewRebuildService(builder *SiteBuilder, hub *ReloadHub, logger *logrus.Logger, interval time.Duration) *RebuildService {
	return &RebuildService{
		builder:  builder,
		hub:      hub,
		logger:   logger,
		cron:     cron.New(),
		interval: interval,
	}
}

// Start begins the scheduled rebuilds.
func (s *RebuildService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("rebuild service is already running")
	}
	if s.interval <= 0 {
		return fmt.Errorf("rebuild interval must be positive, got %s", s.interval)
	}

	schedule := fmt.Sprintf("@every %s", s.interval.String())
	_, err := s.cron.AddFunc(schedule, s.rebuild)
	if err != nil {
		return fmt.Errorf("failed to schedule rebuilds: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.Infof("Rebuild service started, interval %s", s.interval)
	return nil
}

// Stop halts the scheduled rebuilds and waits for a running job to finish.
func (s *RebuildService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Rebuild service stopped")
}

// TriggerNow runs a rebuild in the background, outside the schedule.
func (s *RebuildService) TriggerNow() {
	go s.rebuild()
}

// rebuild runs one build pass. Failures are logged and the previous site
// stays published; clients are only told to reload after a success.
func (s *RebuildService) rebuild() {
	ctx, cancel := context.WithTimeout(context.Background(), rebuildTimeout)
	defer cancel()

	result, err := s.builder.Build(ctx)
	if err != nil {
		s.logger.Errorf("Scheduled rebuild failed: %v", err)
		return
	}

	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.NotifyReload(result.BuildID)
	}
}

// Status returns the current state of the rebuild schedule.
func (s *RebuildService) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}

	status := map[string]interface{}{
		"is_running":       s.isRunning,
		"rebuild_interval": s.interval.String(),
		"next_runs":        nextRuns,
		"cron_jobs":        len(entries),
	}
	if s.lastResult != nil {
		status["last_build_id"] = s.lastResult.BuildID
		status["last_build_duration"] = s.lastResult.Duration.String()
	}
	if s.hub != nil {
		status["reload_clients"] = s.hub.ClientCount()
	}
	return status
}
