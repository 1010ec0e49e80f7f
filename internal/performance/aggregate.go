package performance

import (
	"github.com/kbowling/prophet-static/internal/betting"
)

// Summary holds the folded figures for one cohort of bets. WinRate is a
// fraction over settled bets only; pending wagers accumulate into AtRisk
// instead of RealizedPL.
type Summary struct {
	Count      int     `json:"count"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	TotalWager float64 `json:"totalWager"`
	RealizedPL float64 `json:"realizedPl"`
	WinRate    float64 `json:"winRate"`
	AtRisk     float64 `json:"atRisk"`
}

// Settled returns the number of bets with a recorded outcome.
func (s Summary) Settled() int {
	return s.Wins + s.Losses
}

// Tiers groups the three cohort summaries computed from one record list.
// TopPicks and OtherBets partition the records Overall covers.
type Tiers struct {
	Overall   Summary `json:"overall"`
	TopPicks  Summary `json:"topPicks"`
	OtherBets Summary `json:"otherBets"`
}

// Aggregate folds recommendations into overall, top-pick and other-bet
// summaries in one pass. The fold is commutative, so input order never
// changes the result. Each cohort's win rate comes from its own settled
// bets; an all-pending cohort reports a zero rate.
func Aggregate(recs []betting.Recommendation) Tiers {
	var overall, topPicks, otherBets accumulator

	for i := range recs {
		rec := &recs[i]
		overall.add(rec)
		if rec.IsTopPick {
			topPicks.add(rec)
		} else {
			otherBets.add(rec)
		}
	}

	return Tiers{
		Overall:   overall.summary(),
		TopPicks:  topPicks.summary(),
		OtherBets: otherBets.summary(),
	}
}

type accumulator struct {
	count      int
	wins       int
	losses     int
	totalWager float64
	realizedPL float64
	atRisk     float64
}

func (a *accumulator) add(rec *betting.Recommendation) {
	a.count++
	a.totalWager += rec.RecommendedWager

	if rec.Pending() {
		a.atRisk += rec.RecommendedWager
		return
	}

	a.realizedPL += rec.ProfitLoss
	if rec.Won() {
		a.wins++
	} else {
		a.losses++
	}
}

func (a *accumulator) summary() Summary {
	s := Summary{
		Count:      a.count,
		Wins:       a.wins,
		Losses:     a.losses,
		TotalWager: a.totalWager,
		RealizedPL: a.realizedPL,
		AtRisk:     a.atRisk,
	}
	if settled := a.wins + a.losses; settled > 0 {
		s.WinRate = float64(a.wins) / float64(settled)
	}
	return s
}
