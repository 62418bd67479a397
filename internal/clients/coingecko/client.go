// Package coingecko wraps the CoinGecko REST API for market data.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Market is one coin's market snapshot from the /coins/markets endpoint
type Market struct {
	ID         string   `json:"id"`
	Symbol     string   `json:"symbol"`
	Name       string   `json:"name"`
	Price      float64  `json:"current_price"`
	MarketCap  float64  `json:"market_cap"`
	Volume24h  float64  `json:"total_volume"`
	MarketRank int      `json:"market_cap_rank"`
	Change7d   *float64 `json:"price_change_percentage_7d_in_currency,omitempty"`
}

// Client is a CoinGecko API client. All requests go through a circuit
// breaker so a provider outage fails fast instead of stacking up
// timeouts; 429 and 5xx responses are retried with backoff.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewClient creates a CoinGecko client. apiKey may be empty for the
// public rate-limited tier.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "coingecko",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		log: log.With().Str("client", "coingecko").Logger(),
	}
}

// TopMarkets returns the top coins by market cap, one page
func (c *Client) TopMarkets(ctx context.Context, perPage int) ([]Market, error) {
	url := fmt.Sprintf(
		"%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1&price_change_percentage=7d",
		c.baseURL, perPage,
	)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var markets []Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("failed to decode markets response: %w", err)
	}
	return markets, nil
}

// MarketsByID returns market snapshots for specific coin ids
func (c *Client) MarketsByID(ctx context.Context, ids string) ([]Market, error) {
	url := fmt.Sprintf(
		"%s/coins/markets?vs_currency=usd&ids=%s&price_change_percentage=7d",
		c.baseURL, ids,
	)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var markets []Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("failed to decode markets response: %w", err)
	}
	return markets, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var body []byte

		operation := func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return backoff.Permanent(err)
			}
			if c.apiKey != "" {
				req.Header.Set("x-cg-demo-api-key", c.apiKey)
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("coingecko returned %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return backoff.Permanent(fmt.Errorf("coingecko returned %d", resp.StatusCode))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			return nil
		}

		b := backoff.NewExponentialBackOff()
		b.InitialInterval = time.Second
		b.MaxInterval = 30 * time.Second

		if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, 3), ctx)); err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
