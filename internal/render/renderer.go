package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kbowling/prophet-static/internal/performance"
	"github.com/kbowling/prophet-static/internal/season"
)

//go:embed templates/report.html.tmpl
var reportTemplate string

// Renderer turns a SeasonSnapshot into the self-contained report document.
// Every visible value is produced by the display package; the embedded
// snapshot JSON carries the same normalized records, so the client-side
// navigation script never reformats anything.
type Renderer struct {
	logger           *logrus.Logger
	tmpl             *template.Template
	startingBankroll float64
	liveReload       bool
}

// NewRenderer creates a renderer. startingBankroll seeds the header bankroll
// box; liveReload adds the preview server's reload script to the document.
func NewRenderer(logger *logrus.Logger, startingBankroll float64, liveReload bool) (*Renderer, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Renderer{
		logger:           logger,
		tmpl:             tmpl,
		startingBankroll: startingBankroll,
		liveReload:       liveReload,
	}, nil
}

// Render produces the full report document for a finished season snapshot.
func (r *Renderer) Render(s *season.SeasonSnapshot) ([]byte, error) {
	page, err := r.buildPage(s)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// buildPage folds the season's records once for the header and season card,
// then binds one pre-rendered panel per week. json.Marshal escapes <, > and
// & inside strings, so the embedded snapshot can never break out of its
// script tag.
func (r *Renderer) buildPage(s *season.SeasonSnapshot) (*PageView, error) {
	seasonJSON, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal season snapshot: %w", err)
	}

	tiers := performance.Aggregate(s.AllRecommendations())
	current := s.CurrentWeekSnapshot()

	page := &PageView{
		Title:       "Prophet - AI-Powered NFL Betting Recommendations",
		GeneratedAt: s.GeneratedAt.UTC().Format(time.RFC3339),
		BuildID:     s.BuildID,
		CurrentWeek: s.CurrentWeek,
		TotalWeeks:  s.TotalWeeks,
		WeekTitle:   fmt.Sprintf("Week %d of %d", s.CurrentWeek, s.TotalWeeks),
		WeekDates:   current.Label,
		HasPrevWeek: s.HasPrevWeek(),
		HasNextWeek: s.HasNextWeek(),
		Bankroll:    r.buildBankroll(s, tiers),
		SeasonCard:  r.buildSeasonCard(s, tiers),
		SeasonJSON:  template.JS(seasonJSON),
		LiveReload:  r.liveReload,
	}

	for week := 1; week <= s.TotalWeeks; week++ {
		page.Weeks = append(page.Weeks, r.buildWeek(s.Weeks[week], s.CurrentWeek))
	}
	return page, nil
}
