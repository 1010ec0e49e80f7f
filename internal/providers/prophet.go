package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kbowling/prophet-static/internal/betting"
)

// ProphetClientConfig holds the client settings. Zero values pick the
// defaults below.
type ProphetClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	CacheTTL          time.Duration
}

// ProphetClient implements the DataSource interface against the Prophet
// backend API. Reads go cache-first when a cache is wired; missing upstream
// data (404, empty payloads) comes back as empty results, never errors. The
// client makes one attempt per request; a dead backend degrades the report
// to empty weeks instead of stalling the build on retries.
type ProphetClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      betting.CacheProvider
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

// NewProphetClient creates a new Prophet API client. cache may be nil, which
// disables the cache-first path.
func NewProphetClient(cfg ProphetClientConfig, cache betting.CacheProvider, logger *logrus.Logger) *ProphetClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}

	return &ProphetClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Cache keys for the client's endpoints. The season position and the season
// performance figure are the two that go stale mid-week; forced rebuilds
// invalidate those and keep the per-week entries warm.
func CurrentWeekCacheKey() string {
	return "prophet:week:current"
}

func SeasonPerformanceCacheKey() string {
	return "prophet:performance"
}

// GetCurrentWeek returns the API's season position, or nil when the API has
// none to report.
func (c *ProphetClient) GetCurrentWeek(ctx context.Context) (*betting.CurrentWeek, error) {
	cacheKey := CurrentWeekCacheKey()

	// Check cache first
	if c.cache != nil {
		var cached betting.CurrentWeek
		if err := c.cache.GetSimple(cacheKey, &cached); err == nil && cached.TotalWeeks > 0 {
			return &cached, nil
		}
	}

	body, found, err := c.getJSON(ctx, "/api/nfl-week/current")
	if err != nil || !found {
		return nil, err
	}

	var week betting.CurrentWeek
	if err := json.Unmarshal(body, &week); err != nil {
		c.logger.Warnf("Malformed current week payload: %v", err)
		return nil, nil
	}

	if c.cache != nil {
		c.cache.SetSimple(cacheKey, week, c.cacheTTL)
	}
	return &week, nil
}

// GetWeekInfo returns the metadata for one week, or nil when the API has
// nothing for it.
func (c *ProphetClient) GetWeekInfo(ctx context.Context, week int) (*betting.WeekInfo, error) {
	cacheKey := fmt.Sprintf("prophet:week:%d", week)

	if c.cache != nil {
		var cached betting.WeekInfo
		if err := c.cache.GetSimple(cacheKey, &cached); err == nil && cached.WeekStartDate != "" {
			return &cached, nil
		}
	}

	body, found, err := c.getJSON(ctx, fmt.Sprintf("/api/nfl-week/%d", week))
	if err != nil || !found {
		return nil, err
	}

	var info betting.WeekInfo
	if err := json.Unmarshal(body, &info); err != nil {
		c.logger.Warnf("Week %d: malformed week info payload: %v", week, err)
		return nil, nil
	}
	if info.WeekNumber == 0 {
		info.WeekNumber = week
	}

	if c.cache != nil {
		c.cache.SetSimple(cacheKey, info, c.cacheTTL)
	}
	return &info, nil
}

// GetRecommendations returns the week's recommendation records. An empty or
// missing upstream list comes back as an empty slice.
func (c *ProphetClient) GetRecommendations(ctx context.Context, week int) ([]betting.Recommendation, error) {
	cacheKey := fmt.Sprintf("prophet:recommendations:%d", week)

	if c.cache != nil {
		var cached []betting.Recommendation
		if err := c.cache.GetSimple(cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	body, found, err := c.getJSON(ctx, fmt.Sprintf("/api/recommendations/week/%d", week))
	if err != nil || !found {
		return nil, err
	}

	var response struct {
		Recommendations []betting.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		c.logger.Warnf("Week %d: malformed recommendations payload: %v", week, err)
		return nil, nil
	}

	if c.cache != nil && len(response.Recommendations) > 0 {
		c.cache.SetSimple(cacheKey, response.Recommendations, c.cacheTTL)
	}
	return response.Recommendations, nil
}

// GetGames returns the week's games verbatim. The report never interprets
// game payloads, so they stay raw JSON.
func (c *ProphetClient) GetGames(ctx context.Context, week int) (json.RawMessage, error) {
	cacheKey := fmt.Sprintf("prophet:games:%d", week)

	if c.cache != nil {
		var cached json.RawMessage
		if err := c.cache.GetSimple(cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	body, found, err := c.getJSON(ctx, fmt.Sprintf("/api/games/week/%d", week))
	if err != nil || !found {
		return nil, err
	}
	if !json.Valid(body) {
		c.logger.Warnf("Week %d: games payload is not valid JSON", week)
		return nil, nil
	}

	games := json.RawMessage(body)
	if c.cache != nil {
		c.cache.SetSimple(cacheKey, games, c.cacheTTL)
	}
	return games, nil
}

// GetSeasonPerformance returns the season-wide performance figure with its
// raw payload preserved for verbatim embedding, or nil when the API has
// none.
func (c *ProphetClient) GetSeasonPerformance(ctx context.Context) (*betting.SeasonPerformance, error) {
	cacheKey := SeasonPerformanceCacheKey()

	if c.cache != nil {
		var cached json.RawMessage
		if err := c.cache.GetSimple(cacheKey, &cached); err == nil && len(cached) > 0 {
			return c.decodeSeasonPerformance(cached), nil
		}
	}

	body, found, err := c.getJSON(ctx, "/api/analytics/performance")
	if err != nil || !found {
		return nil, err
	}
	if !json.Valid(body) {
		c.logger.Warnf("Season performance payload is not valid JSON")
		return nil, nil
	}

	if c.cache != nil {
		c.cache.SetSimple(cacheKey, json.RawMessage(body), c.cacheTTL)
	}
	return c.decodeSeasonPerformance(body), nil
}

// decodeSeasonPerformance keeps the raw payload even when the typed view
// only partially matches, mirroring how lenient the report is about the
// figure's shape.
func (c *ProphetClient) decodeSeasonPerformance(raw json.RawMessage) *betting.SeasonPerformance {
	perf := &betting.SeasonPerformance{}
	if err := json.Unmarshal(raw, perf); err != nil {
		c.logger.Debugf("Season performance only partially decoded: %v", err)
		perf = &betting.SeasonPerformance{}
	}
	perf.Raw = append(json.RawMessage(nil), raw...)
	return perf
}

// getJSON performs one GET against the API. found is false when the
// endpoint has no data (404/204 or a non-OK status); err is reserved for
// transport failures.
func (c *ProphetClient) getJSON(ctx context.Context, path string) (body []byte, found bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		c.logger.Debugf("No data at %s (status %d)", path, resp.StatusCode)
		return nil, false, nil
	case resp.StatusCode != http.StatusOK:
		c.logger.Warnf("Unexpected status %d from %s", resp.StatusCode, path)
		return nil, false, nil
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	return body, true, nil
}
