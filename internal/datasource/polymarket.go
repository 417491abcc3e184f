package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/metrics"
)

const (
	polymarketSource = "polymarket"

	// DefaultPNLBaseURL serves the cumulative P&L series.
	DefaultPNLBaseURL = "https://user-pnl-api.polymarket.com"
	// DefaultDataBaseURL serves value, positions, trades and activity.
	DefaultDataBaseURL = "https://data-api.polymarket.com"

	// DefaultCacheTTL is how long a response is reused.
	DefaultCacheTTL = 5 * time.Minute

	positionsLimit = 500
	tradesLimit    = 10000
	ninetyDays     = 90 * 24 * time.Hour
)

// pnlQuery maps a timeframe to the PNL API interval and fidelity parameters.
var pnlQuery = map[Timeframe]struct{ interval, fidelity string }{
	Timeframe7D:  {"1w", "1h"},
	Timeframe30D: {"1m", "1h"},
	Timeframe90D: {"all", "1d"},
}

// PolymarketClient implements MarketData for the Polymarket public APIs.
type PolymarketClient struct {
	httpClient *RateLimitedHTTPClient
	pnlURL     string
	dataURL    string
	cache      *gocache.Cache
	logger     *logrus.Logger
	now        func() time.Time
}

// NewPolymarketClient creates a client; empty base URLs fall back to the
// public endpoints and a non-positive ttl to DefaultCacheTTL.
func NewPolymarketClient(httpClient *RateLimitedHTTPClient, pnlURL, dataURL string, ttl time.Duration, logger *logrus.Logger) *PolymarketClient {
	if pnlURL == "" {
		pnlURL = DefaultPNLBaseURL
	}
	if dataURL == "" {
		dataURL = DefaultDataBaseURL
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PolymarketClient{
		httpClient: httpClient,
		pnlURL:     pnlURL,
		dataURL:    dataURL,
		cache:      gocache.New(ttl, ttl*2),
		logger:     logger,
		now:        time.Now,
	}
}

// Name returns the name of the data source
func (c *PolymarketClient) Name() string {
	return polymarketSource
}

// ClearCache drops every cached response.
func (c *PolymarketClient) ClearCache() {
	c.cache.Flush()
}

// PNL retrieves the P&L series. The 90 day window uses the full history at
// daily fidelity, trimmed to the last 90 days.
func (c *PolymarketClient) PNL(ctx context.Context, address string, timeframe Timeframe) ([]PNLPoint, error) {
	q, ok := pnlQuery[timeframe]
	if !ok {
		return nil, NewDataSourceError(polymarketSource, ErrCodeInvalidData, fmt.Sprintf("unsupported timeframe %d", timeframe), nil)
	}

	params := url.Values{}
	params.Set("user_address", address)
	params.Set("interval", q.interval)
	params.Set("fidelity", q.fidelity)

	var points []PNLPoint
	if err := c.getJSON(ctx, "pnl", c.pnlURL+"/user-pnl?"+params.Encode(), &points); err != nil {
		return nil, err
	}

	if timeframe == Timeframe90D {
		cutoff := c.now().Add(-ninetyDays).Unix()
		filtered := points[:0:0]
		for _, p := range points {
			if p.T >= cutoff {
				filtered = append(filtered, p)
			}
		}
		points = filtered
	}
	return points, nil
}

// PortfolioValue retrieves the current portfolio value, 0 when none is reported.
func (c *PolymarketClient) PortfolioValue(ctx context.Context, address string) (float64, error) {
	var values []struct {
		User  string  `json:"user"`
		Value float64 `json:"value"`
	}
	if err := c.getJSON(ctx, "value", c.dataURL+"/value?user="+url.QueryEscape(address), &values); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	return values[0].Value, nil
}

// Positions retrieves up to 500 positions ordered by percentage P&L.
func (c *PolymarketClient) Positions(ctx context.Context, address string) ([]Position, error) {
	u := fmt.Sprintf("%s/positions?user=%s&limit=%d&sortBy=PERCENTPNL&sortDirection=DESC",
		c.dataURL, url.QueryEscape(address), positionsLimit)

	var positions []Position
	if err := c.getJSON(ctx, "positions", u, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// Trades retrieves as much trade history as the API returns in one page.
func (c *PolymarketClient) Trades(ctx context.Context, address string) ([]Trade, error) {
	u := fmt.Sprintf("%s/trades?user=%s&limit=%d", c.dataURL, url.QueryEscape(address), tradesLimit)

	var trades []Trade
	if err := c.getJSON(ctx, "trades", u, &trades); err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"trader": ShortAddress(address),
		"count":  len(trades),
	}).Debug("Fetched trades")
	return trades, nil
}

// Profile derives display identity from the most recent activity entry.
// Lookup failures degrade to UnknownProfile.
func (c *PolymarketClient) Profile(ctx context.Context, address string) (*Profile, error) {
	u := fmt.Sprintf("%s/activity?user=%s&limit=1", c.dataURL, url.QueryEscape(address))

	var activity []Profile
	if err := c.getJSON(ctx, "activity", u, &activity); err != nil {
		c.logger.WithError(err).WithField("trader", ShortAddress(address)).Warn("Profile lookup failed")
		return UnknownProfile(), nil
	}
	if len(activity) == 0 {
		return UnknownProfile(), nil
	}

	p := activity[0]
	if p.Name == "" {
		p.Name = p.Pseudonym
	}
	if p.Name == "" {
		p.Name = UnknownProfile().Name
	}
	return &p, nil
}

// getJSON fetches u, reusing a cached body when one is fresh, and decodes it into out.
func (c *PolymarketClient) getJSON(ctx context.Context, endpoint, u string, out interface{}) error {
	if cached, found := c.cache.Get(u); found {
		metrics.RecordMarketDataRequest(endpoint, "hit")
		return c.decode(endpoint, cached.([]byte), out)
	}
	metrics.RecordMarketDataRequest(endpoint, "miss")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return NewDataSourceError(polymarketSource, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(polymarketSource, ErrCodeNetworkError, "failed to fetch "+endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewDataSourceError(polymarketSource, ErrCodeNetworkError, "failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(polymarketSource, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(polymarketSource, ErrCodeNotFound, endpoint, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return NewDataSourceError(polymarketSource, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := c.decode(endpoint, body, out); err != nil {
		return err
	}
	c.cache.SetDefault(u, body)
	return nil
}

func (c *PolymarketClient) decode(endpoint string, body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return NewDataSourceError(polymarketSource, ErrCodeInvalidData, "failed to parse "+endpoint+" response", err)
	}
	return nil
}
