package render

import (
	"fmt"
	"html/template"
	"math"

	"github.com/kbowling/prophet-static/internal/betting"
	"github.com/kbowling/prophet-static/internal/display"
	"github.com/kbowling/prophet-static/internal/performance"
	"github.com/kbowling/prophet-static/internal/season"
)

// PageView is the root template context for the report document.
type PageView struct {
	Title       string
	GeneratedAt string
	BuildID     string
	CurrentWeek int
	TotalWeeks  int
	WeekTitle   string
	WeekDates   string
	HasPrevWeek bool
	HasNextWeek bool
	Bankroll    BankrollView
	SeasonCard  *SeasonCardView
	Weeks       []WeekView
	SeasonJSON  template.JS
	LiveReload  bool
}

// BankrollView feeds the header bankroll box.
type BankrollView struct {
	Remaining string
	ROI       string
	Record    string
}

// SeasonRowView is one cohort row of the season performance card.
type SeasonRowView struct {
	Badge   string
	Count   string
	Wager   string
	PL      string
	PLClass string
	WinRate string
}

// SeasonCardView feeds the season-wide performance card.
type SeasonCardView struct {
	Overall  SeasonRowView
	TopPicks SeasonRowView
	Other    SeasonRowView
}

// TierRowView is one cohort row of a weekly summary card. PL combines the
// realized amount with the cohort win rate, e.g. "$42 (50.0%)".
type TierRowView struct {
	Badge   string
	Count   string
	Wager   string
	PL      string
	PLClass string
	AtRisk  string
}

// WeekSummaryView feeds one week's summary card.
type WeekSummaryView struct {
	Title    string
	Overall  TierRowView
	TopPicks TierRowView
	Other    TierRowView
}

// CardView feeds one recommendation card.
type CardView struct {
	BetDisplay      string
	Sportsbook      string
	SportsbookClass string
	GameDetails     string
	IsTopPick       bool
	Outcome         string
	OutcomeClass    string
	ExpectedValue   string
	Confidence      string
	Kelly           string
	Wager           string
	Reasoning       string
}

// WeekView is one pre-rendered week panel. Only the current week starts
// visible; the navigation script toggles the rest.
type WeekView struct {
	Number    int
	Label     string
	IsCurrent bool
	Summary   WeekSummaryView
	Cards     []CardView
}

func (r *Renderer) buildBankroll(s *season.SeasonSnapshot, tiers performance.Tiers) BankrollView {
	pl := tiers.Overall.RealizedPL
	winRate := tiers.Overall.WinRate
	if s.Season != nil {
		pl = s.Season.TotalProfitLoss
		winRate = s.Season.WinRate
	}

	roi := 0.0
	if r.startingBankroll > 0 {
		roi = pl / r.startingBankroll
	}

	return BankrollView{
		Remaining: display.FormatCurrency(r.startingBankroll + pl),
		ROI:       display.FormatPercentage(roi * 100),
		Record: fmt.Sprintf("%s (%d-%d)", display.FormatPercentage(winRate*100),
			tiers.Overall.Wins, tiers.Overall.Losses),
	}
}

// buildSeasonCard binds the season figure when the source provides one and
// falls back to the locally folded tiers when it does not. Other-bets
// count, wager and P&L derive from the figure by subtraction so the card
// stays reconcilable against the source; the other-bets win rate is always
// computed from that cohort's own records.
func (r *Renderer) buildSeasonCard(s *season.SeasonSnapshot, tiers performance.Tiers) *SeasonCardView {
	if s.Season == nil && tiers.Overall.Count == 0 {
		return nil
	}

	otherRate := tiers.OtherBets.WinRate

	if s.Season == nil {
		return &SeasonCardView{
			Overall:  seasonRow("", tiers.Overall.Count, tiers.Overall.TotalWager, tiers.Overall.RealizedPL, tiers.Overall.WinRate),
			TopPicks: seasonRow("TOP PICKS", tiers.TopPicks.Count, tiers.TopPicks.TotalWager, tiers.TopPicks.RealizedPL, tiers.TopPicks.WinRate),
			Other:    seasonRow("OTHER BETS", tiers.OtherBets.Count, tiers.OtherBets.TotalWager, tiers.OtherBets.RealizedPL, otherRate),
		}
	}

	src := s.Season
	if math.Abs(otherRate-src.WinRate) > 0.0005 {
		r.logger.Debugf("Other-bets win rate %.1f%% differs from the overall %.1f%%; cohorts are reported independently",
			otherRate*100, src.WinRate*100)
	}

	return &SeasonCardView{
		Overall:  seasonRow("", src.TotalBets, src.TotalWager, src.TotalProfitLoss, src.WinRate),
		TopPicks: seasonRow("TOP PICKS", src.TopPicksCount, src.TopPicksWager, src.TopPicksProfitLoss, src.TopPicksWinRate),
		Other: seasonRow("OTHER BETS",
			src.TotalBets-src.TopPicksCount,
			src.TotalWager-src.TopPicksWager,
			src.TotalProfitLoss-src.TopPicksProfitLoss,
			otherRate),
	}
}

func seasonRow(badge string, count int, wager, pl, winRate float64) SeasonRowView {
	return SeasonRowView{
		Badge:   badge,
		Count:   fmt.Sprintf("%d", count),
		Wager:   display.FormatCurrency(wager),
		PL:      display.FormatCurrency(pl),
		PLClass: plClass(pl),
		WinRate: display.FormatPercentage(winRate * 100),
	}
}

func (r *Renderer) buildWeek(w season.WeekSnapshot, currentWeek int) WeekView {
	view := WeekView{
		Number:    w.WeekNumber,
		Label:     w.Label,
		IsCurrent: w.WeekNumber == currentWeek,
		Summary:   buildWeekSummary(w),
	}
	for _, rec := range w.Recommendations {
		view.Cards = append(view.Cards, buildCard(rec))
	}
	return view
}

func buildWeekSummary(w season.WeekSnapshot) WeekSummaryView {
	return WeekSummaryView{
		Title:    fmt.Sprintf("Week %d Summary", w.WeekNumber),
		Overall:  tierRow("", w.Performance.Overall),
		TopPicks: tierRow("TOP PICKS", w.Performance.TopPicks),
		Other:    tierRow("OTHER BETS", w.Performance.OtherBets),
	}
}

func tierRow(badge string, s performance.Summary) TierRowView {
	return TierRowView{
		Badge:   badge,
		Count:   fmt.Sprintf("%d", s.Count),
		Wager:   display.FormatCurrency(s.TotalWager),
		PL:      fmt.Sprintf("%s (%s)", display.FormatCurrency(s.RealizedPL), display.FormatPercentage(s.WinRate*100)),
		PLClass: plClass(s.RealizedPL),
		AtRisk:  display.FormatCurrency(s.AtRisk),
	}
}

func buildCard(rec betting.Recommendation) CardView {
	outcome, outcomeClass := "PENDING", "pending"
	if !rec.Pending() {
		if rec.Won() {
			outcome, outcomeClass = "WIN", "win"
		} else {
			outcome, outcomeClass = "LOSS", "loss"
		}
	}

	gameInfo := rec.GameInfo
	if gameInfo == "" {
		gameInfo = display.UnknownGame
	}
	reasoning := rec.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}

	return CardView{
		BetDisplay:      display.FormatBetDisplay(rec),
		Sportsbook:      display.FormatSportsbookName(rec.Sportsbook),
		SportsbookClass: display.SportsbookClass(rec.Sportsbook),
		GameDetails:     fmt.Sprintf("%s • %s", gameInfo, display.FormatGameTime(rec.GameTime)),
		IsTopPick:       rec.IsTopPick,
		Outcome:         outcome,
		OutcomeClass:    outcomeClass,
		ExpectedValue:   display.FormatExpectedValue(rec.ExpectedValue),
		Confidence:      display.FormatPercentage(rec.Confidence),
		Kelly:           display.FormatPercentage(rec.KellyPercentage),
		Wager:           display.FormatCurrency(rec.RecommendedWager),
		Reasoning:       reasoning,
	}
}

func plClass(pl float64) string {
	if pl < 0 {
		return "negative"
	}
	return "positive"
}
