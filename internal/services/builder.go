package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kbowling/prophet-static/internal/render"
	"github.com/kbowling/prophet-static/internal/season"
	"github.com/kbowling/prophet-static/internal/site"
)

// BuildResult summarizes one completed site build.
type BuildResult struct {
	BuildID         string        `json:"buildId"`
	CurrentWeek     int           `json:"currentWeek"`
	TotalWeeks      int           `json:"totalWeeks"`
	Recommendations int           `json:"recommendations"`
	Duration        time.Duration `json:"duration"`
	OutputDir       string        `json:"outputDir"`
}

// SiteBuilder runs the full report pipeline: assemble the season, render the
// document, write the site. Each run gets a uuid build ID that shows up in
// log fields, the document meta and the emitted snapshot. The builder keeps
// the latest successful snapshot so the preview server can serve it without
// re-reading the output directory.
type SiteBuilder struct {
	assembler *season.Assembler
	renderer  *render.Renderer
	writer    *site.Writer
	logger    *logrus.Logger

	mu   sync.RWMutex
	last *season.SeasonSnapshot
}

// NewSiteBuilder creates a new site builder.
func NewSiteBuilder(assembler *season.Assembler, renderer *render.Renderer, writer *site.Writer, logger *logrus.Logger) *SiteBuilder {
	return &SiteBuilder{
		assembler: assembler,
		renderer:  renderer,
		writer:    writer,
		logger:    logger,
	}
}

// Build runs one assemble-render-write pass. Upstream data problems have
// already degraded to empty weeks by the time the snapshot arrives; the
// errors returned here are cancellation and sink I/O failures.
func (b *SiteBuilder) Build(ctx context.Context) (*BuildResult, error) {
	buildID := uuid.New().String()
	start := time.Now()
	log := b.logger.WithField("build_id", buildID)
	log.Info("Starting site build")

	snapshot, err := b.assembler.BuildSeason(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble season: %w", err)
	}
	snapshot.BuildID = buildID

	document, err := b.renderer.Render(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	seasonJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal season snapshot: %w", err)
	}

	if err := b.writer.Write(document, seasonJSON); err != nil {
		return nil, fmt.Errorf("failed to write site: %w", err)
	}

	b.mu.Lock()
	b.last = snapshot
	b.mu.Unlock()

	result := &BuildResult{
		BuildID:         buildID,
		CurrentWeek:     snapshot.CurrentWeek,
		TotalWeeks:      snapshot.TotalWeeks,
		Recommendations: len(snapshot.AllRecommendations()),
		Duration:        time.Since(start),
		OutputDir:       b.writer.OutputDir(),
	}

	log.WithFields(logrus.Fields{
		"weeks":           result.TotalWeeks,
		"recommendations": result.Recommendations,
		"duration":        result.Duration.Round(time.Millisecond).String(),
		"output":          result.OutputDir,
	}).Info("Site build complete")

	return result, nil
}

// LastSnapshot returns the most recent successful build's snapshot, or nil
// before the first build completes.
func (b *SiteBuilder) LastSnapshot() *season.SeasonSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}
