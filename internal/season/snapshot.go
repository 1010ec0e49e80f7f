package season

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kbowling/prophet-static/internal/betting"
	"github.com/kbowling/prophet-static/internal/performance"
)

// WeekSnapshot bundles everything the report shows for one week. Performance
// holds the tiers folded from this week's recommendations; SeasonPerformance
// carries the season-wide figure verbatim, repeated on every week so a
// client can read it without a second lookup.
type WeekSnapshot struct {
	WeekNumber        int                      `json:"weekNumber"`
	Label             string                   `json:"label"`
	WeekInfo          betting.WeekInfo         `json:"weekInfo"`
	Recommendations   []betting.Recommendation `json:"recommendations"`
	Games             json.RawMessage          `json:"games,omitempty"`
	Performance       performance.Tiers        `json:"performance"`
	SeasonPerformance json.RawMessage          `json:"seasonPerformance,omitempty"`
}

// SeasonSnapshot is the finished season: every week 1..TotalWeeks populated,
// CurrentWeek clamped into range. It is built once and never mutated after
// the assembler hands it over. Week keys marshal as strings, so the embedded
// JSON indexes the same way the API does.
type SeasonSnapshot struct {
	CurrentWeek int                  `json:"currentWeek"`
	TotalWeeks  int                  `json:"totalWeeks"`
	GeneratedAt time.Time            `json:"generatedAt"`
	BuildID     string               `json:"buildId,omitempty"`
	Weeks       map[int]WeekSnapshot `json:"weeks"`

	// Season is the typed view of the season-wide figure for rendering.
	Season *betting.SeasonPerformance `json:"-"`
}

// HasPrevWeek reports whether a previous-week control applies.
func (s *SeasonSnapshot) HasPrevWeek() bool {
	return s.CurrentWeek > 1
}

// HasNextWeek reports whether a next-week control applies.
func (s *SeasonSnapshot) HasNextWeek() bool {
	return s.CurrentWeek < s.TotalWeeks
}

// CurrentWeekSnapshot returns the snapshot for the current week.
func (s *SeasonSnapshot) CurrentWeekSnapshot() WeekSnapshot {
	return s.Weeks[s.CurrentWeek]
}

// AllRecommendations returns every week's records in week order.
func (s *SeasonSnapshot) AllRecommendations() []betting.Recommendation {
	var all []betting.Recommendation
	for week := 1; week <= s.TotalWeeks; week++ {
		all = append(all, s.Weeks[week].Recommendations...)
	}
	return all
}

// Navigate moves current by direction (negative for previous, positive for
// next) and clamps the result into [1, total]. It carries no state, so any
// caller position resolves the same way.
func Navigate(current, direction, total int) int {
	if total < 1 {
		total = 1
	}
	next := current + direction
	if next < 1 {
		return 1
	}
	if next > total {
		return total
	}
	return next
}

// ClampWeek forces week into [1, total].
func ClampWeek(week, total int) int {
	return Navigate(week, 0, total)
}

// WeekLabel renders a week's date range, e.g. "Sep 04-10, 2025" within one
// month or "Sep 28-Oct 04, 2025" across months. Missing or unparseable
// dates degrade to "Week {n}".
func WeekLabel(start, end string, week int) string {
	label, err := weekDates(start, end)
	if err != nil {
		return fmt.Sprintf("Week %d", week)
	}
	return label
}

func weekDates(start, end string) (string, error) {
	if start == "" || end == "" {
		return "", fmt.Errorf("missing week dates")
	}
	s, err := parseWeekDate(start)
	if err != nil {
		return "", fmt.Errorf("start date %q: %w", start, err)
	}
	e, err := parseWeekDate(end)
	if err != nil {
		return "", fmt.Errorf("end date %q: %w", end, err)
	}

	if s.Month() == e.Month() {
		return fmt.Sprintf("%s-%s, %d", s.Format("Jan 02"), e.Format("02"), s.Year()), nil
	}
	return fmt.Sprintf("%s-%s, %d", s.Format("Jan 02"), e.Format("Jan 02"), s.Year()), nil
}

func parseWeekDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	// Strip a zone suffix and retry as a wall-clock timestamp.
	stripped := value
	if i := strings.IndexAny(stripped, "+Z"); i >= 0 {
		stripped = stripped[:i]
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, stripped); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp")
}
