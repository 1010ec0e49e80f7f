package season

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kbowling/prophet-static/internal/betting"
)

// TestNavigate tests bounds-clamped week navigation
func TestNavigate(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		direction int
		total     int
		expected  int
	}{
		{"Forward", 3, 1, 18, 4},
		{"Backward", 3, -1, 18, 2},
		{"Clamp at first week", 1, -1, 18, 1},
		{"Clamp at last week", 18, 1, 18, 18},
		{"Jump past end clamps", 16, 5, 18, 18},
		{"Jump before start clamps", 2, -10, 18, 1},
		{"Zero direction keeps position", 7, 0, 18, 7},
		{"Out-of-range position recovers", 40, 0, 18, 18},
		{"Degenerate season", 3, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Navigate(tt.current, tt.direction, tt.total))
		})
	}
}

// TestWeekLabel tests date-range labels and their numeric fallback
func TestWeekLabel(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		week     int
		expected string
	}{
		{
			name:     "Same month",
			start:    "2025-09-04T00:00:00",
			end:      "2025-09-10T00:00:00",
			week:     1,
			expected: "Sep 04-10, 2025",
		},
		{
			name:     "Cross month",
			start:    "2025-09-28T00:00:00",
			end:      "2025-10-04T00:00:00",
			week:     4,
			expected: "Sep 28-Oct 04, 2025",
		},
		{
			name:     "UTC suffix stripped",
			start:    "2025-11-06T00:00:00Z",
			end:      "2025-11-12T00:00:00Z",
			week:     10,
			expected: "Nov 06-12, 2025",
		},
		{
			name:     "Offset suffix stripped",
			start:    "2025-12-04T00:00:00+05:00",
			end:      "2025-12-10T00:00:00+05:00",
			week:     14,
			expected: "Dec 04-10, 2025",
		},
		{
			name:     "Date-only values",
			start:    "2025-09-04",
			end:      "2025-09-10",
			week:     1,
			expected: "Sep 04-10, 2025",
		},
		{
			name:     "Missing dates fall back",
			start:    "",
			end:      "",
			week:     3,
			expected: "Week 3",
		},
		{
			name:     "Unparseable start falls back",
			start:    "early September",
			end:      "2025-09-10T00:00:00",
			week:     7,
			expected: "Week 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeekLabel(tt.start, tt.end, tt.week))
		})
	}
}

// TestNavigationFlags tests the derived prev/next affordances
func TestNavigationFlags(t *testing.T) {
	tests := []struct {
		name        string
		currentWeek int
		totalWeeks  int
		hasPrev     bool
		hasNext     bool
	}{
		{"First week", 1, 18, false, true},
		{"Middle week", 9, 18, true, true},
		{"Last week", 18, 18, true, false},
		{"Single-week season", 1, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SeasonSnapshot{CurrentWeek: tt.currentWeek, TotalWeeks: tt.totalWeeks}
			assert.Equal(t, tt.hasPrev, s.HasPrevWeek())
			assert.Equal(t, tt.hasNext, s.HasNextWeek())
		})
	}
}

// TestAllRecommendations tests the week-ordered flattening helper
func TestAllRecommendations(t *testing.T) {
	s := &SeasonSnapshot{
		CurrentWeek: 1,
		TotalWeeks:  3,
		Weeks: map[int]WeekSnapshot{
			1: {Recommendations: []betting.Recommendation{{GameInfo: "A @ B"}}},
			2: {Recommendations: []betting.Recommendation{}},
			3: {Recommendations: []betting.Recommendation{{GameInfo: "C @ D"}, {GameInfo: "E @ F"}}},
		},
	}

	all := s.AllRecommendations()
	assert.Len(t, all, 3)
	assert.Equal(t, "A @ B", all[0].GameInfo)
	assert.Equal(t, "E @ F", all[2].GameInfo)
}
