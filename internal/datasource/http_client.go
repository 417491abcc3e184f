package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // max consecutive failures before circuit break
	// CircuitBreakerCooldown is how long an open circuit refuses requests
	// before letting a single trial request through.
	CircuitBreakerCooldown time.Duration
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         10.0,
		CircuitBreakerMax: 5,

		CircuitBreakerCooldown: DefaultCircuitBreakerCooldown,
	}
}

// DefaultCircuitBreakerCooldown is applied when the config leaves it unset.
const DefaultCircuitBreakerCooldown = 30 * time.Second

type noRetryKey struct{}

// WithoutRetry marks requests made with ctx as non-idempotent: the client
// sends them exactly once.
func WithoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

func retryDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(noRetryKey{}).(bool)
	return v
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting and circuit breaker
type RateLimitedHTTPClient struct {
	client            *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	cooldown          time.Duration
	logger            *logrus.Logger

	mu                sync.Mutex
	consecutiveErrors int
	isOpen            bool
	openedAt          time.Time
	trialInFlight     bool
	lastError         error
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	retryClient.Logger = nil
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.WithFields(logrus.Fields{
				"method":  req.Method,
				"url":     req.URL.String(),
				"attempt": attempt,
			}).Debug("Retrying HTTP request")
		}
	}

	if cfg.CircuitBreakerMax <= 0 {
		cfg.CircuitBreakerMax = 5
	}
	if cfg.CircuitBreakerCooldown <= 0 {
		cfg.CircuitBreakerCooldown = DefaultCircuitBreakerCooldown
	}

	return &RateLimitedHTTPClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		cooldown:          cfg.CircuitBreakerCooldown,
		logger:            logger,
	}
}

// Do executes an HTTP request with rate limiting and circuit breaker. Once
// the cooldown has passed, an open circuit lets one trial request through; its
// outcome closes the circuit or restarts the cooldown.
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	trial, err := c.admit()
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.abortTrial(trial)
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	retryReq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		c.abortTrial(trial)
		return nil, fmt.Errorf("failed to wrap request: %w", err)
	}

	resp, err := c.client.Do(retryReq)

	c.mu.Lock()
	defer c.mu.Unlock()

	if trial {
		c.trialInFlight = false
	}

	if err != nil {
		c.consecutiveErrors++
		c.lastError = err
		if trial || c.consecutiveErrors >= c.circuitBreakerMax {
			if !c.isOpen {
				c.logger.WithError(err).WithField("consecutive_errors", c.consecutiveErrors).
					Warn("Circuit breaker opened")
			}
			c.isOpen = true
			c.openedAt = time.Now()
		}
		return nil, err
	}

	if resp.StatusCode < 500 {
		if c.isOpen {
			c.logger.Info("Circuit breaker closed")
		}
		c.consecutiveErrors = 0
		c.isOpen = false
	} else if trial {
		c.openedAt = time.Now()
	}

	return resp, nil
}

// admit reports whether the request may proceed and whether it is the trial
// request of an open circuit.
func (c *RateLimitedHTTPClient) admit() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isOpen {
		return false, nil
	}
	if c.trialInFlight || time.Since(c.openedAt) < c.cooldown {
		return false, fmt.Errorf("circuit breaker open: %v", c.lastError)
	}
	c.trialInFlight = true
	return true, nil
}

// abortTrial releases the trial slot when the request never reached the server.
func (c *RateLimitedHTTPClient) abortTrial(trial bool) {
	if !trial {
		return
	}
	c.mu.Lock()
	c.trialInFlight = false
	c.mu.Unlock()
}

// ResetCircuit closes the circuit breaker after an operator intervention.
func (c *RateLimitedHTTPClient) ResetCircuit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutiveErrors = 0
	c.isOpen = false
	c.trialInFlight = false
	c.lastError = nil
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Post executes a POST request
func (c *RateLimitedHTTPClient) Post(ctx context.Context, url string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if retryDisabled(ctx) {
			return false, err
		}

		if err != nil {
			// Retry on network errors
			return true, err
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}

		return false, nil
	}
}
