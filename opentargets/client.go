// Package opentargets is a small client for the Open Targets Platform GraphQL
// API covering the disease, target and drug lookups the agents use.
package opentargets

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/cache"
	"github.com/SaiNageswarS/opentargets-agent/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultURL   = "https://api.platform.opentargets.org/api/v4/graphql"
	DefaultLimit = 10
)

var ErrNotFound = errors.New("not found")

type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// QueryError is returned when the API answered but reported GraphQL errors.
type QueryError struct {
	Operation string
	Errors    []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return fmt.Sprintf("open targets %s: %s", e.Operation, strings.Join(msgs, "; "))
}

type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

type Option func(*Client)

func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests; rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithCache(ch cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = ch
		c.cacheTTL = ttl
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		url:        DefaultURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		cache:      cache.NoopCache{},
		cacheTTL:   time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// query posts one GraphQL operation and decodes its data into out.
func (c *Client) query(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("error marshaling %s request: %w", operation, err)
	}

	sum := sha256.Sum256(payload)
	key := hex.EncodeToString(sum[:])
	if data, ok := c.cache.Get(ctx, key); ok {
		metrics.OpenTargetsRequestsTotal.WithLabelValues(operation, "cached").Inc()
		return json.Unmarshal(data, out)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("open targets %s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error creating %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.OpenTargetsRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OpenTargetsRequestsTotal.WithLabelValues(operation, "http_error").Inc()
		return fmt.Errorf("open targets %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("open targets %s: error reading response: %w", operation, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.OpenTargetsRequestsTotal.WithLabelValues(operation, "http_error").Inc()
		return fmt.Errorf("open targets %s: status %d: %s", operation, resp.StatusCode, truncate(string(body), 300))
	}

	var gr graphQLResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return fmt.Errorf("open targets %s: error unmarshaling response: %w", operation, err)
	}

	if len(gr.Errors) > 0 {
		metrics.OpenTargetsRequestsTotal.WithLabelValues(operation, "graphql_error").Inc()
		logger.Error("Open Targets query returned errors", zap.String("operation", operation), zap.Any("variables", vars), zap.Int("errors", len(gr.Errors)))
		return &QueryError{Operation: operation, Errors: gr.Errors}
	}

	metrics.OpenTargetsRequestsTotal.WithLabelValues(operation, "ok").Inc()
	c.cache.Set(ctx, key, gr.Data, c.cacheTTL)

	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("open targets %s: error decoding data: %w", operation, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
