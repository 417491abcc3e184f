package arena

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trader-arena/internal/cache"
	"github.com/yourusername/trader-arena/internal/datasource"
	"github.com/yourusername/trader-arena/internal/logger"
	"github.com/yourusername/trader-arena/internal/models"
)

func writeEnvelope(w http.ResponseWriter, status int, env map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.Discard()
	cfg := datasource.DefaultHTTPClientConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 2 * time.Millisecond
	cfg.RateLimit = 1000
	return NewClient(srv.URL+"/api/v1/", "token-123", datasource.NewRateLimitedHTTPClient(cfg, log), log)
}

func TestGetPoolDecodesEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/pools/p1", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id":            "p1",
				"poolNumber":    7,
				"poolATotal":    "6000000000",
				"poolBTotal":    4000000000,
				"totalPoolSize": "10000000000",
				"status":        "active",
			},
		})
	})

	pool, err := client.GetPool(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", pool.ID)
	assert.Equal(t, int64(7), pool.PoolNumber)
	assert.Equal(t, models.Lamports(6_000_000_000), pool.PoolATotal)
	assert.Equal(t, models.Lamports(4_000_000_000), pool.PoolBTotal)
	assert.Equal(t, models.DefaultMinBet, pool.MinBet())
}

func TestListEndpoints(t *testing.T) {
	paths := make(chan string, 8)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true, "data": []interface{}{}})
	})
	ctx := context.Background()

	_, err := client.ListPools(ctx)
	require.NoError(t, err)
	_, err = client.ActivePools(ctx)
	require.NoError(t, err)
	_, err = client.UserBets(ctx, "Wallet111")
	require.NoError(t, err)
	_, err = client.PoolBets(ctx, "p9")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/pools", <-paths)
	assert.Equal(t, "/api/v1/pools/active", <-paths)
	assert.Equal(t, "/api/v1/bets/user/Wallet111", <-paths)
	assert.Equal(t, "/api/v1/bets/pool/p9", <-paths)
}

func TestSimulateBetSendsLamportStrings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/bets/simulate", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"poolId":"p1","amount":"1000000000","traderChoice":1}`, string(body))

		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"amount":          "1000000000",
				"traderChoice":    1,
				"currentOdds":     2.5,
				"potentialPayout": "2200000000",
				"platformFee":     "44000000",
				"netPayout":       "2156000000",
			},
		})
	})

	sim, err := client.SimulateBet(context.Background(), models.SimulateRequest{
		PoolID: "p1", Amount: models.LamportsPerSOL, TraderChoice: models.TraderB,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.5, sim.CurrentOdds)
	assert.Equal(t, models.Lamports(2_156_000_000), sim.NetPayout)
	assert.Equal(t, models.TraderB, sim.TraderChoice)
}

func TestPlaceBetIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusServiceUnavailable, map[string]interface{}{"success": false, "error": "unavailable"})
	})

	_, err := client.PlaceBet(context.Background(), models.PlaceBetRequest{PoolID: "p1", Amount: 1, TraderChoice: models.TraderA})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestReadsAreRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": true, "data": []interface{}{}})
	})

	_, err := client.ListPools(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPlaceBetRejectsZeroAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := client.PlaceBet(context.Background(), models.PlaceBetRequest{PoolID: "p1"})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		check  func(t *testing.T, err error)
	}{
		{
			name: "insufficient funds", status: http.StatusBadRequest, code: ErrorInsufficientFunds,
			check: func(t *testing.T, err error) {
				var target *InsufficientFundsError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name: "betting closed", status: http.StatusConflict, code: ErrorBettingClosed,
			check: func(t *testing.T, err error) {
				var target *BettingClosedError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "p1", target.PoolID)
			},
		},
		{
			name: "pool not found by status", status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var target *PoolNotFoundError
				assert.ErrorAs(t, err, &target)
			},
		},
		{
			name: "unauthorized", status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnauthorized)
			},
		},
		{
			name: "generic", status: http.StatusBadRequest, code: "SOMETHING",
			check: func(t *testing.T, err error) {
				var target *APIError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "backend says no", Reason(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, map[string]interface{}{
					"success": false,
					"error":   tt.code,
					"message": "backend says no",
				})
			})
			_, err := client.PlaceBet(context.Background(), models.PlaceBetRequest{PoolID: "p1", Amount: 5})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSuccessFalseWithOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]interface{}{"success": false, "error": "nope"})
	})
	_, err := client.GetBet(context.Background(), "b1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "nope", apiErr.Message)
}

func TestCachedClient(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"id": "b1", "poolId": "p1", "amount": "100", "traderChoice": 0},
				{"id": "b2", "poolId": "p2", "amount": "50", "traderChoice": 1},
				{"id": "b3", "poolId": "p1", "amount": "25", "traderChoice": 1},
			},
		})
	})

	views := cache.NewQueryCache(time.Minute)
	cached := NewCachedClient(client, views, logger.Discard())
	ctx := context.Background()

	bets, total, err := cached.UserBetsForPool(ctx, "W1", "p1")
	require.NoError(t, err)
	assert.Len(t, bets, 2)
	assert.Equal(t, models.Lamports(125), total)

	_, err = cached.UserBets(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	views.Invalidate(cache.UserBetsKey("W1"))
	_, err = cached.UserBets(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
