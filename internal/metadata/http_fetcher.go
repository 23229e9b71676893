package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// HTTPFetcher fetches token metadata from a JSON HTTP endpoint of the
// shape GET {baseURL}/{mint} -> 200 with a body, or 404 for "no
// record".
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with the given base URL and
// per-request timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type httpMetadataResponse struct {
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	Decimals        int      `json:"decimals"`
	PriceUSD        *float64 `json:"price_usd"`
	MarketCap       *float64 `json:"market_cap"`
	TokenAgeSeconds *int64   `json:"token_age_seconds"`
}

// Fetch issues GET {baseURL}/{mint}. A 404 is treated as "no record",
// not an error; any other non-200 status or transport failure is
// returned as an error and logged by the caller.
func (f *HTTPFetcher) Fetch(ctx context.Context, mint string) (*TokenMetadata, bool, error) {
	url := fmt.Sprintf("%s/%s", f.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("metadata: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("metadata: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("metadata: unexpected status %d for mint %s", resp.StatusCode, mint)
	}

	var body httpMetadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("metadata: decode: %w", err)
	}

	log.Debug().Str("mint", mint).Str("symbol", body.Symbol).Msg("fetched token metadata")

	return &TokenMetadata{
		Mint:            mint,
		Symbol:          body.Symbol,
		Name:            body.Name,
		Decimals:        body.Decimals,
		PriceUSD:        body.PriceUSD,
		MarketCap:       body.MarketCap,
		TokenAgeSeconds: body.TokenAgeSeconds,
		FetchedAt:       time.Now(),
	}, true, nil
}
