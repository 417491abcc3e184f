package arena

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yourusername/trader-arena/internal/models"
)

// ListPools returns every pool.
func (c *Client) ListPools(ctx context.Context) ([]*models.Pool, error) {
	var pools []*models.Pool
	if err := c.do(ctx, call{method: http.MethodGet, path: "/pools", endpoint: "pools.list"}, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

// ActivePools returns the pools currently accepting bets.
func (c *Client) ActivePools(ctx context.Context) ([]*models.Pool, error) {
	var pools []*models.Pool
	if err := c.do(ctx, call{method: http.MethodGet, path: "/pools/active", endpoint: "pools.active"}, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}

// GetPool returns one pool by id.
func (c *Client) GetPool(ctx context.Context, poolID string) (*models.Pool, error) {
	if poolID == "" {
		return nil, fmt.Errorf("%w: pool id is required", models.ErrInvalidInput)
	}

	var pool models.Pool
	req := call{
		method:   http.MethodGet,
		path:     "/pools/" + url.PathEscape(poolID),
		endpoint: "pools.get",
		poolID:   poolID,
	}
	if err := c.do(ctx, req, &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}
