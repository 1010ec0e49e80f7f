package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbowling/prophet-static/internal/betting"
)

// Fallback labels for records the formatter cannot interpret.
const (
	UnknownBetType = "Unknown Bet Type"
	UnknownGame    = "Unknown Game"
)

// Scale names the units confidence and kelly values arrive in. The upstream
// API serves percentage units; older payloads served fractions.
type Scale int

const (
	ScalePercent Scale = iota
	ScaleFraction
)

// ParseScale maps a config string to a Scale. Unrecognized values fall back
// to percent.
func ParseScale(s string) Scale {
	if strings.EqualFold(strings.TrimSpace(s), "fraction") {
		return ScaleFraction
	}
	return ScalePercent
}

// ToPercent converts v to percentage units.
func (s Scale) ToPercent(v float64) float64 {
	if s == ScaleFraction {
		return v * 100
	}
	return v
}

// FormatBetDisplay renders the human-readable phrasing for a bet. Records
// with an unrecognized bet type render as UnknownBetType; a gameInfo that
// does not split into "AWAY @ HOME" degrades the team token to UnknownGame.
// Absent odds and lines are omitted without leaving empty parens or double
// spaces.
func FormatBetDisplay(rec betting.Recommendation) string {
	away, home, ok := splitGameInfo(rec.GameInfo)

	switch rec.BetType {
	case betting.BetTypeMoneyline:
		team := pickTeam(rec.Side, home, away, ok)
		return joinTokens(team, "to Win", formatOdds(rec.OddsAtTimeOfBet))
	case betting.BetTypeSpread:
		team := pickTeam(rec.Side, home, away, ok)
		return joinTokens(team, formatSignedLine(rec.Line), formatOdds(rec.OddsAtTimeOfBet))
	case betting.BetTypeTotal:
		label := "Under"
		if rec.Side == betting.SideOver {
			label = "Over"
		}
		return joinTokens(label, formatUnsignedLine(rec.Line), "Points", formatOdds(rec.OddsAtTimeOfBet))
	default:
		return UnknownBetType
	}
}

// FormatSportsbookName maps a raw sportsbook name to its display label.
// Unknown names pass through unchanged.
func FormatSportsbookName(name string) string {
	if display, ok := sportsbookNames[name]; ok {
		return display
	}
	return name
}

// SportsbookClass maps a raw sportsbook name to its CSS token. Unknown names
// map to the empty token.
func SportsbookClass(name string) string {
	return sportsbookClasses[name]
}

// FormatGameTime renders an ISO timestamp as "Jan 05, 06:00 PM". A string
// that fails to parse is returned unchanged.
func FormatGameTime(s string) string {
	for _, layout := range gameTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 02, 03:04 PM")
		}
	}
	return s
}

// FormatCurrency renders an amount as whole dollars with thousands
// separators. Negative amounts keep the sign inside the dollar prefix,
// e.g. "$-1,250".
func FormatCurrency(amount float64) string {
	s := fmt.Sprintf("%.0f", amount)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	var b strings.Builder
	b.WriteByte('$')
	b.WriteString(sign)
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// FormatPercentage renders a value already on the 0-100 scale with one
// decimal place, e.g. "61.5%".
func FormatPercentage(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatExpectedValue renders an expected value with three decimal places.
func FormatExpectedValue(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

var sportsbookNames = map[string]string{
	"DraftKings":   "DraftKings",
	"FanDuel":      "FanDuel",
	"BetMGM":       "BetMGM",
	"BetRivers":    "BetRivers",
	"Bovada":       "Bovada",
	"MyBookie.ag":  "MyBookie",
	"BetOnline.ag": "BetOnline",
	"LowVig.ag":    "LowVig",
	"BetUS":        "BetUS",
}

var sportsbookClasses = map[string]string{
	"DraftKings":   "draftkings",
	"FanDuel":      "fanduel",
	"BetMGM":       "betmgm",
	"Caesars":      "caesars",
	"BetRivers":    "betrivers",
	"Bovada":       "bovada",
	"MyBookie.ag":  "mybookie",
	"BetOnline.ag": "betonline",
	"LowVig.ag":    "lowvig",
	"BetUS":        "betus",
}

// gameTimeLayouts are tried in order. The API serves RFC 3339; some older
// rows carry no zone or no time.
var gameTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func splitGameInfo(gameInfo string) (away, home string, ok bool) {
	parts := strings.Split(gameInfo, " @ ")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func pickTeam(side int, home, away string, ok bool) string {
	if !ok {
		return UnknownGame
	}
	if side == betting.SideHome {
		return home
	}
	return away
}

func formatOdds(odds int) string {
	if odds == 0 {
		return ""
	}
	return fmt.Sprintf("(%+d)", odds)
}

func formatSignedLine(line *float64) string {
	if line == nil {
		return ""
	}
	return fmt.Sprintf("%+.1f", *line)
}

func formatUnsignedLine(line *float64) string {
	if line == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *line)
}

func joinTokens(tokens ...string) string {
	parts := tokens[:0]
	for _, tok := range tokens {
		if tok != "" {
			parts = append(parts, tok)
		}
	}
	return strings.Join(parts, " ")
}
