package betting

import (
	"context"
	"encoding/json"
	"time"
)

// BetType identifies the market a recommendation was placed on.
type BetType int

const (
	BetTypeMoneyline BetType = 0
	BetTypeSpread    BetType = 1
	BetTypeTotal     BetType = 2
)

// Side encodings per bet type. Moneyline and spread bets use home/away;
// totals use over/under.
const (
	SideHome  = 0
	SideAway  = 1
	SideOver  = 2
	SideUnder = 3
)

// Recommendation represents a single bet recommendation from the Prophet API.
// Line and WasCorrect are pointers because the API omits them: a nil line
// means the market carries no line, a nil wasCorrect means the bet is still
// pending. Odds of 0 mean the odds were not captured.
type Recommendation struct {
	ID               int      `json:"id,omitempty"`
	GameInfo         string   `json:"gameInfo"`
	BetType          BetType  `json:"betType"`
	Side             int      `json:"side"`
	Line             *float64 `json:"line,omitempty"`
	OddsAtTimeOfBet  int      `json:"oddsAtTimeOfBet,omitempty"`
	Sportsbook       string   `json:"sportsbook"`
	GameTime         string   `json:"gameTime"`
	RecommendedWager float64  `json:"recommendedWager"`
	ExpectedValue    float64  `json:"expectedValue"`
	KellyPercentage  float64  `json:"kellyPercentage"`
	Confidence       float64  `json:"confidence"`
	IsTopPick        bool     `json:"isTopPick"`
	WasCorrect       *bool    `json:"wasCorrect"`
	ProfitLoss       float64  `json:"profitLoss"`
	Reasoning        string   `json:"reasoning,omitempty"`
}

// Pending reports whether the bet has not settled yet.
func (r *Recommendation) Pending() bool {
	return r.WasCorrect == nil
}

// Won reports whether the bet settled as a win.
func (r *Recommendation) Won() bool {
	return r.WasCorrect != nil && *r.WasCorrect
}

// WeekInfo represents the metadata for one NFL week.
type WeekInfo struct {
	WeekNumber    int    `json:"weekNumber,omitempty"`
	WeekStartDate string `json:"weekStartDate"`
	WeekEndDate   string `json:"weekEndDate"`
}

// CurrentWeek represents the season position reported by the API.
type CurrentWeek struct {
	CurrentWeek int `json:"currentWeek"`
	TotalWeeks  int `json:"totalWeeks"`
}

// SeasonPerformance is the season-wide performance figure. The raw payload is
// kept verbatim for embedding; the typed fields are a lenient view used for
// the report header and season card. Rates are fractions (0-1).
type SeasonPerformance struct {
	TotalBets          int     `json:"totalBets"`
	TotalWager         float64 `json:"totalWager"`
	RealizedPl         float64 `json:"realizedPl"`
	TotalProfitLoss    float64 `json:"totalProfitLoss"`
	WinRate            float64 `json:"winRate"`
	Roi                float64 `json:"roi"`
	TopPicksCount      int     `json:"topPicksCount"`
	TopPicksWager      float64 `json:"topPicksWager"`
	TopPicksProfitLoss float64 `json:"topPicksProfitLoss"`
	TopPicksWinRate    float64 `json:"topPicksWinRate"`

	Raw json.RawMessage `json:"-"`
}

// DataSource is the read side of the report pipeline. Implementations treat
// missing upstream data as empty results, never as errors; an error return is
// reserved for transport-level failures the caller may want to log.
type DataSource interface {
	GetCurrentWeek(ctx context.Context) (*CurrentWeek, error)
	GetWeekInfo(ctx context.Context, week int) (*WeekInfo, error)
	GetRecommendations(ctx context.Context, week int) ([]Recommendation, error)
	GetGames(ctx context.Context, week int) (json.RawMessage, error)
	GetSeasonPerformance(ctx context.Context) (*SeasonPerformance, error)
}

// CacheProvider interface for cache operations
type CacheProvider interface {
	SetSimple(key string, value interface{}, expiration time.Duration) error
	GetSimple(key string, dest interface{}) error
}
