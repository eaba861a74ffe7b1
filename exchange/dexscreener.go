// Package exchange provides market data sources for the watcher.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/raykavin/tokensentry/core"
)

const defaultTimeout = 10 * time.Second

// DexScreener reads the USD price of a single pair from the dexscreener
// pair endpoint. It implements core.PriceFeeder.
type DexScreener struct {
	url    string
	client *http.Client
}

// Option is a function that configures a DexScreener instance
type Option func(*DexScreener)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *DexScreener) {
		d.client = client
	}
}

// NewDexScreener creates a feeder for the given pair endpoint.
func NewDexScreener(url string, options ...Option) *DexScreener {
	feeder := &DexScreener{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
	}

	for _, option := range options {
		option(feeder)
	}

	return feeder
}

// Name implements core.PriceFeeder.
func (d *DexScreener) Name() string {
	return "dexscreener"
}

// pairResponse mirrors the fragment of the dexscreener payload we read.
// The price arrives as a numeric string.
type pairResponse struct {
	Pair struct {
		PriceUSD string `json:"priceUsd"`
	} `json:"pair"`
}

// LastPrice issues a single request to the pair endpoint and decodes
// the current USD price. Every failure wraps core.ErrPriceUnavailable;
// the caller skips the tick and the next scheduled tick retries
// implicitly, so there is no retry here.
func (d *DexScreener) LastPrice(ctx context.Context) (core.PriceSample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return core.PriceSample{}, fmt.Errorf("%w: build request: %v", core.ErrPriceUnavailable, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return core.PriceSample{}, fmt.Errorf("%w: %v", core.ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.PriceSample{}, fmt.Errorf("%w: unexpected status %d", core.ErrPriceUnavailable, resp.StatusCode)
	}

	var payload pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return core.PriceSample{}, fmt.Errorf("%w: decode response: %v", core.ErrPriceUnavailable, err)
	}

	if payload.Pair.PriceUSD == "" {
		return core.PriceSample{}, fmt.Errorf("%w: missing priceUsd field", core.ErrPriceUnavailable)
	}

	value, err := strconv.ParseFloat(payload.Pair.PriceUSD, 64)
	if err != nil {
		return core.PriceSample{}, fmt.Errorf("%w: parse priceUsd %q: %v", core.ErrPriceUnavailable, payload.Pair.PriceUSD, err)
	}

	if value <= 0 {
		return core.PriceSample{}, fmt.Errorf("%w: non-positive price %f", core.ErrPriceUnavailable, value)
	}

	return core.PriceSample{Value: value, ObservedAt: time.Now()}, nil
}
