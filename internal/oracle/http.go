// internal/oracle/http.go
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// Client queries an HTTP price feed. Transient failures are retried with
// exponential backoff; validation failures are not.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient creates an HTTP oracle client.
func NewClient(baseURL string, maxRetries int, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: maxRetries,
		retryDelay: 500 * time.Millisecond,
		logger:     logger.Named("oracle"),
	}
}

// quoteResponse is the feed's wire format.
type quoteResponse struct {
	Price     string `json:"price"`    // decimal string
	Decimals  uint8  `json:"decimals"` // scale of Price
	Timestamp int64  `json:"timestamp"`
}

// GetPrice fetches and validates the current quote for an asset.
func (c *Client) GetPrice(ctx context.Context, asset string) (Quote, error) {
	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = c.retryDelay
	backoffPolicy.MaxInterval = c.retryDelay * 10

	notify := func(err error, duration time.Duration) {
		c.logger.Info("Retrying oracle request after error",
			zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (Quote, error) {
		return c.fetchQuote(ctx, asset)
	}

	maxTries := uint(c.maxRetries)
	if maxTries == 0 {
		maxTries = 1
	}
	quote, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		c.logger.Error("Oracle request failed after all retries",
			zap.String("asset", asset), zap.Error(err))
		return Quote{}, err
	}
	return quote, nil
}

func (c *Client) fetchQuote(ctx context.Context, asset string) (Quote, error) {
	endpoint := fmt.Sprintf("%s/price?asset=%s", c.baseURL, url.QueryEscape(asset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, backoff.Permanent(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("oracle: unexpected status %d", resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("oracle: decode response: %w", err)
	}

	price, err := uint256.FromDecimal(body.Price)
	if err != nil {
		return Quote{}, backoff.Permanent(fmt.Errorf("oracle: bad price %q: %w", body.Price, err))
	}

	quote := Quote{
		Price:     price,
		Decimals:  body.Decimals,
		Timestamp: time.Unix(body.Timestamp, 0).UTC(),
	}
	if err := quote.Validate(); err != nil {
		return Quote{}, backoff.Permanent(err)
	}
	return quote, nil
}
