package datasource

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/config"
)

// NewMarketData builds the market-data client described by cfg with its own
// rate-limited HTTP client.
func NewMarketData(cfg *config.Config, logger *logrus.Logger) *PolymarketClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.APITimeout()
	httpCfg.RateLimit = cfg.MarketData.RateLimit

	return NewPolymarketClient(
		NewRateLimitedHTTPClient(httpCfg, logger),
		cfg.MarketData.PNLAPIURL,
		cfg.MarketData.DataAPIURL,
		cfg.MarketDataCacheTTL(),
		logger,
	)
}
