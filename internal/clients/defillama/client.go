// Package defillama wraps the DefiLlama API for protocol TVL and fees.
package defillama

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

const defaultBaseURL = "https://api.llama.fi"

// Protocol is the subset of the protocol response the pipeline uses
type Protocol struct {
	Name string  `json:"name"`
	TVL  float64 `json:"tvl"`
}

// FeesSummary is the subset of the fees overview the pipeline uses
type FeesSummary struct {
	Total24h   *float64 `json:"total24h,omitempty"`
	Revenue24h *float64 `json:"totalRevenue24h,omitempty"`
}

// Client is a DefiLlama API client behind a circuit breaker
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewClient creates a DefiLlama client. The API needs no key.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "defillama",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		log: log.With().Str("client", "defillama").Logger(),
	}
}

// ProtocolTVL returns the current TVL for a protocol slug
func (c *Client) ProtocolTVL(ctx context.Context, slug string) (*Protocol, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/protocol/%s", c.baseURL, slug))
	if err != nil {
		return nil, err
	}

	// The protocol endpoint nests current TVL under currentChainTvls;
	// the flat `tvl` field is a history array. Sum the chains.
	var payload struct {
		Name             string             `json:"name"`
		CurrentChainTVLs map[string]float64 `json:"currentChainTvls"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode protocol response: %w", err)
	}

	var total float64
	for chain, tvl := range payload.CurrentChainTVLs {
		// Borrowed and staking buckets double-count deposits
		if chain == "borrowed" || chain == "staking" || chain == "pool2" {
			continue
		}
		total += tvl
	}

	return &Protocol{Name: payload.Name, TVL: total}, nil
}

// ProtocolFees returns the trailing 24h fees and revenue for a slug
func (c *Client) ProtocolFees(ctx context.Context, slug string) (*FeesSummary, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/summary/fees/%s", c.baseURL, slug))
	if err != nil {
		return nil, err
	}

	var summary FeesSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode fees response: %w", err)
	}
	return &summary, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var body []byte

		operation := func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return backoff.Permanent(err)
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("defillama returned %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return backoff.Permanent(fmt.Errorf("defillama returned %d", resp.StatusCode))
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
