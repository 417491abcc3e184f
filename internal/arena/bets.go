package arena

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/yourusername/trader-arena/internal/models"
)

// SimulateBet asks the backend for a payout preview. Nothing is committed.
func (c *Client) SimulateBet(ctx context.Context, req models.SimulateRequest) (*models.Simulation, error) {
	var sim models.Simulation
	r := call{
		method:   http.MethodPost,
		path:     "/bets/simulate",
		body:     req,
		endpoint: "bets.simulate",
		poolID:   req.PoolID,
	}
	if err := c.do(ctx, r, &sim); err != nil {
		return nil, err
	}
	return &sim, nil
}

// PlaceBet commits a bet. The request is sent exactly once; a transport
// failure is returned to the caller rather than retried.
func (c *Client) PlaceBet(ctx context.Context, req models.PlaceBetRequest) (*models.Bet, error) {
	if req.Amount == 0 {
		return nil, models.ErrInvalidAmount
	}

	var bet models.Bet
	r := call{
		method:   http.MethodPost,
		path:     "/bets",
		body:     req,
		endpoint: "bets.place",
		poolID:   req.PoolID,
		noRetry:  true,
	}
	if err := c.do(ctx, r, &bet); err != nil {
		return nil, err
	}
	if bet.PoolID == "" {
		bet.PoolID = req.PoolID
	}
	return &bet, nil
}

// UserBets lists the bets placed by a wallet.
func (c *Client) UserBets(ctx context.Context, wallet string) ([]*models.Bet, error) {
	if wallet == "" {
		return nil, models.ErrWalletNotConnected
	}
	var bets []*models.Bet
	r := call{method: http.MethodGet, path: "/bets/user/" + url.PathEscape(wallet), endpoint: "bets.user"}
	if err := c.do(ctx, r, &bets); err != nil {
		return nil, err
	}
	return bets, nil
}

// PoolBets lists the bets placed on a pool.
func (c *Client) PoolBets(ctx context.Context, poolID string) ([]*models.Bet, error) {
	var bets []*models.Bet
	r := call{
		method:   http.MethodGet,
		path:     "/bets/pool/" + url.PathEscape(poolID),
		endpoint: "bets.pool",
		poolID:   poolID,
	}
	if err := c.do(ctx, r, &bets); err != nil {
		return nil, err
	}
	return bets, nil
}

// GetBet returns one bet by id.
func (c *Client) GetBet(ctx context.Context, betID string) (*models.Bet, error) {
	if betID == "" {
		return nil, fmt.Errorf("%w: bet id is required", models.ErrInvalidInput)
	}
	var bet models.Bet
	r := call{method: http.MethodGet, path: "/bets/" + url.PathEscape(betID), endpoint: "bets.get"}
	if err := c.do(ctx, r, &bet); err != nil {
		return nil, err
	}
	return &bet, nil
}
