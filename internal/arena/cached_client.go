package arena

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/cache"
	"github.com/yourusername/trader-arena/internal/models"
)

// CachedClient serves pool and bet views from a QueryCache, fetching through
// Client on a miss. Mutations go straight to Client.
type CachedClient struct {
	*Client
	views  *cache.QueryCache
	logger *logrus.Logger
}

// NewCachedClient wraps client with views.
func NewCachedClient(client *Client, views *cache.QueryCache, logger *logrus.Logger) *CachedClient {
	return &CachedClient{Client: client, views: views, logger: logger}
}

// Views returns the underlying cache so invalidators can share it.
func (c *CachedClient) Views() *cache.QueryCache {
	return c.views
}

// Pools returns the cached pool list.
func (c *CachedClient) Pools(ctx context.Context) ([]*models.Pool, error) {
	return cache.GetOrFetch(ctx, c.views, cache.PoolsKey, c.Client.ListPools)
}

// ActivePools returns the cached active pool list.
func (c *CachedClient) ActivePools(ctx context.Context) ([]*models.Pool, error) {
	return cache.GetOrFetch(ctx, c.views, cache.ActivePoolsKey, c.Client.ActivePools)
}

// Pool returns one cached pool.
func (c *CachedClient) Pool(ctx context.Context, poolID string) (*models.Pool, error) {
	return cache.GetOrFetch(ctx, c.views, cache.PoolKey(poolID), func(ctx context.Context) (*models.Pool, error) {
		return c.Client.GetPool(ctx, poolID)
	})
}

// PoolBets returns the cached bets on a pool.
func (c *CachedClient) PoolBets(ctx context.Context, poolID string) ([]*models.Bet, error) {
	return cache.GetOrFetch(ctx, c.views, cache.PoolBetsKey(poolID), func(ctx context.Context) ([]*models.Bet, error) {
		return c.Client.PoolBets(ctx, poolID)
	})
}

// UserBets returns the cached bets of a wallet.
func (c *CachedClient) UserBets(ctx context.Context, wallet string) ([]*models.Bet, error) {
	return cache.GetOrFetch(ctx, c.views, cache.UserBetsKey(wallet), func(ctx context.Context) ([]*models.Bet, error) {
		return c.Client.UserBets(ctx, wallet)
	})
}

// UserBetsForPool returns the wallet's bets on one pool and their total stake.
func (c *CachedClient) UserBetsForPool(ctx context.Context, wallet, poolID string) ([]*models.Bet, models.Lamports, error) {
	bets, err := c.UserBets(ctx, wallet)
	if err != nil {
		return nil, 0, err
	}
	return models.BetsForPool(bets, poolID), models.TotalStaked(bets, poolID), nil
}
