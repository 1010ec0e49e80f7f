package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kbowling/prophet-static/internal/betting"
)

func floatPtr(v float64) *float64 {
	return &v
}

// TestFormatBetDisplay tests bet phrasing across bet types
func TestFormatBetDisplay(t *testing.T) {
	tests := []struct {
		name     string
		rec      betting.Recommendation
		expected string
	}{
		{
			name: "Moneyline home side",
			rec: betting.Recommendation{
				GameInfo:        "NYJ @ BUF",
				BetType:         betting.BetTypeMoneyline,
				Side:            betting.SideHome,
				OddsAtTimeOfBet: -150,
			},
			expected: "BUF to Win (-150)",
		},
		{
			name: "Moneyline away side",
			rec: betting.Recommendation{
				GameInfo:        "NYJ @ BUF",
				BetType:         betting.BetTypeMoneyline,
				Side:            betting.SideAway,
				OddsAtTimeOfBet: 130,
			},
			expected: "NYJ to Win (+130)",
		},
		{
			name: "Moneyline without odds",
			rec: betting.Recommendation{
				GameInfo: "NYJ @ BUF",
				BetType:  betting.BetTypeMoneyline,
				Side:     betting.SideHome,
			},
			expected: "BUF to Win",
		},
		{
			name: "Spread away side with positive line",
			rec: betting.Recommendation{
				GameInfo:        "NYJ @ BUF",
				BetType:         betting.BetTypeSpread,
				Side:            betting.SideAway,
				Line:            floatPtr(3.5),
				OddsAtTimeOfBet: 110,
			},
			expected: "NYJ +3.5 (+110)",
		},
		{
			name: "Spread home side with negative line",
			rec: betting.Recommendation{
				GameInfo:        "NYJ @ BUF",
				BetType:         betting.BetTypeSpread,
				Side:            betting.SideHome,
				Line:            floatPtr(-7),
				OddsAtTimeOfBet: -105,
			},
			expected: "BUF -7.0 (-105)",
		},
		{
			name: "Spread without line",
			rec: betting.Recommendation{
				GameInfo:        "NYJ @ BUF",
				BetType:         betting.BetTypeSpread,
				Side:            betting.SideAway,
				OddsAtTimeOfBet: 110,
			},
			expected: "NYJ (+110)",
		},
		{
			name: "Total over",
			rec: betting.Recommendation{
				GameInfo:        "NYJ @ BUF",
				BetType:         betting.BetTypeTotal,
				Side:            betting.SideOver,
				Line:            floatPtr(44.5),
				OddsAtTimeOfBet: -110,
			},
			expected: "Over 44.5 Points (-110)",
		},
		{
			name: "Total under",
			rec: betting.Recommendation{
				GameInfo:        "NYJ @ BUF",
				BetType:         betting.BetTypeTotal,
				Side:            betting.SideUnder,
				Line:            floatPtr(47),
				OddsAtTimeOfBet: -115,
			},
			expected: "Under 47.0 Points (-115)",
		},
		{
			name: "Total without odds",
			rec: betting.Recommendation{
				GameInfo: "NYJ @ BUF",
				BetType:  betting.BetTypeTotal,
				Side:     betting.SideOver,
				Line:     floatPtr(44.5),
			},
			expected: "Over 44.5 Points",
		},
		{
			name: "Unrecognized bet type",
			rec: betting.Recommendation{
				GameInfo:        "NYJ @ BUF",
				BetType:         99,
				Side:            betting.SideHome,
				OddsAtTimeOfBet: -150,
			},
			expected: "Unknown Bet Type",
		},
		{
			name: "Unsplittable game info",
			rec: betting.Recommendation{
				GameInfo:        "TBD",
				BetType:         betting.BetTypeMoneyline,
				Side:            betting.SideHome,
				OddsAtTimeOfBet: -150,
			},
			expected: "Unknown Game to Win (-150)",
		},
		{
			name: "Empty game info",
			rec: betting.Recommendation{
				GameInfo: "",
				BetType:  betting.BetTypeSpread,
				Side:     betting.SideHome,
				Line:     floatPtr(-3),
			},
			expected: "Unknown Game -3.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBetDisplay(tt.rec))
		})
	}
}

// TestFormatBetDisplayDeterministic tests that formatting has no side effects
func TestFormatBetDisplayDeterministic(t *testing.T) {
	rec := betting.Recommendation{
		GameInfo:        "NYJ @ BUF",
		BetType:         betting.BetTypeSpread,
		Side:            betting.SideAway,
		Line:            floatPtr(3.5),
		OddsAtTimeOfBet: 110,
	}
	before := rec

	first := FormatBetDisplay(rec)
	second := FormatBetDisplay(rec)

	assert.Equal(t, first, second, "Repeated calls should produce identical output")
	assert.Equal(t, before, rec, "Formatting should not mutate the record")
	assert.Equal(t, 3.5, *rec.Line)
}

// TestFormatGameTime tests timestamp rendering and its fallback
func TestFormatGameTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "UTC timestamp",
			input:    "2025-01-05T18:00:00Z",
			expected: "Jan 05, 06:00 PM",
		},
		{
			name:     "Offset timestamp",
			input:    "2025-09-07T13:00:00-04:00",
			expected: "Sep 07, 01:00 PM",
		},
		{
			name:     "Zone-less timestamp",
			input:    "2025-11-27T12:30:00",
			expected: "Nov 27, 12:30 PM",
		},
		{
			name:     "Morning hour",
			input:    "2025-10-12T09:05:00Z",
			expected: "Oct 12, 09:05 AM",
		},
		{
			name:     "Unparseable input returned unchanged",
			input:    "kickoff TBD",
			expected: "kickoff TBD",
		},
		{
			name:     "Empty input returned unchanged",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatGameTime(tt.input))
		})
	}
}

// TestFormatCurrency tests dollar formatting with thousands separators
func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "$0"},
		{"Small amount", 250, "$250"},
		{"Rounded up", 1234.56, "$1,235"},
		{"Negative", -500, "$-500"},
		{"Negative thousands", -1250.4, "$-1,250"},
		{"Exact thousands", 10000, "$10,000"},
		{"Millions", 1234567.89, "$1,234,568"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCurrency(tt.amount))
		})
	}
}

// TestFormatPercentage tests one-decimal percentage rendering
func TestFormatPercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"Zero", 0, "0.0%"},
		{"Fractional", 61.538, "61.5%"},
		{"Whole", 100, "100.0%"},
		{"Negative ROI", -12.25, "-12.2%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPercentage(tt.value))
		})
	}
}

// TestFormatExpectedValue tests EV rendering
func TestFormatExpectedValue(t *testing.T) {
	assert.Equal(t, "0.125", FormatExpectedValue(0.125))
	assert.Equal(t, "0.000", FormatExpectedValue(0))
	assert.Equal(t, "-0.050", FormatExpectedValue(-0.05))
}

// TestSportsbookName tests display name mapping and passthrough
func TestSportsbookName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Known name unchanged", "DraftKings", "DraftKings"},
		{"Domain suffix stripped", "MyBookie.ag", "MyBookie"},
		{"BetOnline stripped", "BetOnline.ag", "BetOnline"},
		{"LowVig stripped", "LowVig.ag", "LowVig"},
		{"Unknown passes through", "Pinnacle", "Pinnacle"},
		{"Empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSportsbookName(tt.input))
		})
	}
}

// TestSportsbookClass tests CSS token mapping and its empty fallback
func TestSportsbookClass(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"DraftKings", "DraftKings", "draftkings"},
		{"Caesars", "Caesars", "caesars"},
		{"Domain name keeps token", "MyBookie.ag", "mybookie"},
		{"Unknown maps to empty", "Pinnacle", ""},
		{"Empty maps to empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SportsbookClass(tt.input))
		})
	}
}

// TestScale tests scale parsing and percent conversion
func TestScale(t *testing.T) {
	assert.Equal(t, ScalePercent, ParseScale("percent"))
	assert.Equal(t, ScalePercent, ParseScale(""))
	assert.Equal(t, ScalePercent, ParseScale("unknown"))
	assert.Equal(t, ScaleFraction, ParseScale("fraction"))
	assert.Equal(t, ScaleFraction, ParseScale(" Fraction "))

	assert.InDelta(t, 65.0, ScalePercent.ToPercent(65.0), 1e-9)
	assert.InDelta(t, 65.0, ScaleFraction.ToPercent(0.65), 1e-9)
}
