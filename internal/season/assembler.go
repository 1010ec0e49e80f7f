package season

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kbowling/prophet-static/internal/betting"
	"github.com/kbowling/prophet-static/internal/display"
	"github.com/kbowling/prophet-static/internal/performance"
)

const maxConcurrentWeeks = 5

// Assembler builds a SeasonSnapshot from a DataSource. Week queries fan out
// concurrently; a failed week degrades to an empty snapshot for that week
// and never aborts the season.
type Assembler struct {
	source            betting.DataSource
	logger            *logrus.Logger
	scale             display.Scale
	defaultTotalWeeks int
}

// NewAssembler creates a new Assembler. scale names the units incoming
// confidence/kelly values use; defaultTotalWeeks covers a data source that
// cannot report the season length.
func NewAssembler(source betting.DataSource, logger *logrus.Logger, scale display.Scale, defaultTotalWeeks int) *Assembler {
	if defaultTotalWeeks < 1 {
		defaultTotalWeeks = 18
	}
	return &Assembler{
		source:            source,
		logger:            logger,
		scale:             scale,
		defaultTotalWeeks: defaultTotalWeeks,
	}
}

// BuildSeason assembles the full season: current-week position, the season
// performance figure, and one WeekSnapshot per week 1..totalWeeks. The only
// error it returns is context cancellation; data problems degrade per week.
func (a *Assembler) BuildSeason(ctx context.Context) (*SeasonSnapshot, error) {
	currentWeek, totalWeeks := a.seasonBounds(ctx)

	seasonPerf, err := a.source.GetSeasonPerformance(ctx)
	if err != nil {
		a.logger.Warnf("Failed to fetch season performance: %v", err)
		seasonPerf = nil
	}
	var rawSeason json.RawMessage
	if seasonPerf != nil {
		rawSeason = seasonPerf.Raw
	}

	type weekResult struct {
		week     int
		snapshot WeekSnapshot
	}

	results := make(chan weekResult, totalWeeks)
	semaphore := make(chan struct{}, maxConcurrentWeeks)
	var wg sync.WaitGroup

	for week := 1; week <= totalWeeks; week++ {
		wg.Add(1)
		go func(week int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results <- weekResult{week: week, snapshot: a.buildWeek(ctx, week, rawSeason)}
		}(week)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	weeks := make(map[int]WeekSnapshot, totalWeeks)
	for result := range results {
		weeks[result.week] = result.snapshot
	}

	// A canceled run produced empty weeks, not real ones. Never hand those on.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("season assembly interrupted: %w", err)
	}

	return &SeasonSnapshot{
		CurrentWeek: currentWeek,
		TotalWeeks:  totalWeeks,
		GeneratedAt: time.Now().UTC(),
		Weeks:       weeks,
		Season:      seasonPerf,
	}, nil
}

// seasonBounds resolves the current-week position, falling back to week 1 of
// the default season length when the source has nothing.
func (a *Assembler) seasonBounds(ctx context.Context) (currentWeek, totalWeeks int) {
	position, err := a.source.GetCurrentWeek(ctx)
	if err != nil {
		a.logger.Warnf("Failed to fetch current week: %v", err)
		position = nil
	}
	if position == nil {
		position = &betting.CurrentWeek{}
	}

	totalWeeks = position.TotalWeeks
	if totalWeeks < 1 {
		a.logger.Warnf("No season length reported, assuming %d weeks", a.defaultTotalWeeks)
		totalWeeks = a.defaultTotalWeeks
	}

	currentWeek = ClampWeek(position.CurrentWeek, totalWeeks)
	return currentWeek, totalWeeks
}

func (a *Assembler) buildWeek(ctx context.Context, week int, rawSeason json.RawMessage) WeekSnapshot {
	snapshot := WeekSnapshot{
		WeekNumber:        week,
		Label:             fmt.Sprintf("Week %d", week),
		Recommendations:   []betting.Recommendation{},
		SeasonPerformance: rawSeason,
	}

	info, err := a.source.GetWeekInfo(ctx, week)
	if err != nil {
		a.logger.Warnf("Week %d: failed to fetch week info: %v", week, err)
	}
	if info != nil {
		snapshot.WeekInfo = *info
		label, labelErr := weekDates(info.WeekStartDate, info.WeekEndDate)
		if labelErr != nil {
			a.logger.Debugf("Week %d: falling back to numeric label: %v", week, labelErr)
		} else {
			snapshot.Label = label
		}
	}

	recs, err := a.source.GetRecommendations(ctx, week)
	if err != nil {
		a.logger.Warnf("Week %d: failed to fetch recommendations: %v", week, err)
		recs = nil
	}
	if recs != nil {
		a.normalize(recs)
		snapshot.Recommendations = recs
	}
	snapshot.Performance = performance.Aggregate(snapshot.Recommendations)

	games, err := a.source.GetGames(ctx, week)
	if err != nil {
		a.logger.Warnf("Week %d: failed to fetch games: %v", week, err)
	} else {
		snapshot.Games = games
	}

	return snapshot
}

// normalize converts confidence and kelly values to percentage units so one
// convention flows through aggregation, rendering and the embedded snapshot.
func (a *Assembler) normalize(recs []betting.Recommendation) {
	for i := range recs {
		recs[i].Confidence = a.scale.ToPercent(recs[i].Confidence)
		recs[i].KellyPercentage = a.scale.ToPercent(recs[i].KellyPercentage)
	}
}
