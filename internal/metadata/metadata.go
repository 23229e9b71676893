// Package metadata fetches the boundary token-metadata record used to
// enrich a mint with symbol/name/price. The fetch itself is an
// external collaborator the core only depends on by interface; no
// fetch result feeds back into rolling state or signal evaluation.
package metadata

import (
	"context"
	"time"
)

// TokenMetadata is the boundary record, fetched externally; the ingest
// pipeline hands it to the write queue for the token_metadata table.
type TokenMetadata struct {
	Mint            string
	Symbol          string
	Name            string
	Decimals        int
	PriceUSD        *float64
	MarketCap       *float64
	TokenAgeSeconds *int64
	FetchedAt       time.Time
}

// Fetcher retrieves a TokenMetadata record for a mint. The bool return
// reports whether a record was found at all — a metadata source may
// legitimately have nothing for a brand-new mint, which is not an
// error.
type Fetcher interface {
	Fetch(ctx context.Context, mint string) (*TokenMetadata, bool, error)
}

// StubFetcher always reports absence. It grounds the boundary
// interface when no metadata source is configured, so callers never
// need a nil check on the Fetcher itself.
type StubFetcher struct{}

// Fetch always returns (nil, false, nil).
func (StubFetcher) Fetch(_ context.Context, _ string) (*TokenMetadata, bool, error) {
	return nil, false, nil
}
