// Package arena is the REST client for the pool and bet backend.
package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/trader-arena/internal/config"
	"github.com/yourusername/trader-arena/internal/datasource"
	"github.com/yourusername/trader-arena/internal/metrics"
)

// envelope is the backend's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Client talks to the backend REST API
type Client struct {
	httpClient *datasource.RateLimitedHTTPClient
	baseURL    string
	authToken  string
	logger     *logrus.Logger
}

// NewClient creates a new backend client
func NewClient(baseURL, authToken string, httpClient *datasource.RateLimitedHTTPClient, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), logger)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		logger:     logger,
	}
}

// NewClientFromConfig builds a client from the api section of cfg.
func NewClientFromConfig(cfg *config.Config, logger *logrus.Logger) *Client {
	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.APITimeout()
	httpCfg.MaxRetries = cfg.API.MaxRetries
	httpCfg.RateLimit = cfg.API.RateLimit
	return NewClient(cfg.API.BaseURL, cfg.API.AuthToken, datasource.NewRateLimitedHTTPClient(httpCfg, logger), logger)
}

// call is one request to the backend.
type call struct {
	method   string
	path     string
	body     interface{}
	endpoint string // metrics label
	poolID   string // pool the request concerns, for error mapping
	noRetry  bool
}

// do performs c and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, req call, out interface{}) error {
	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	if req.noRetry {
		ctx = datasource.WithoutRetry(ctx)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	log := c.logger.WithFields(logrus.Fields{
		"method":     req.method,
		"path":       req.path,
		"request_id": requestID,
	})
	log.Debug("Arena API request")

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, httpReq)
	metrics.RecordAPIRequest(req.endpoint, time.Since(start).Seconds())
	if err != nil {
		log.WithError(err).Warn("Arena API request failed")
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	if resp.StatusCode >= 300 || !env.Success {
		message := env.Message
		if message == "" {
			message = env.Error
		}
		return MapAPIError(resp.StatusCode, env.Error, message, req.poolID, c.logger)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", req.endpoint, err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.httpClient.Close()
}
