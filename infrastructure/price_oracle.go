package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// PriceOracle caches the SOL/USD spot price from an HTTP quote endpoint.
// When no quote fresher than the TTL is available it answers with the
// configured worst-case price, which overstates the lamports owed and so
// never under-charges a purchase.
type PriceOracle struct {
	endpoint       string
	client         *http.Client
	ttl            time.Duration
	worstCasePrice float64

	mu        sync.RWMutex
	price     float64
	fetchedAt time.Time
}

// NewPriceOracle creates an oracle. endpoint must answer GET with a JSON
// body containing {"solana": {"usd": <price>}}.
func NewPriceOracle(endpoint string, ttl time.Duration, worstCasePrice float64) *PriceOracle {
	return &PriceOracle{
		endpoint:       endpoint,
		client:         &http.Client{Timeout: 10 * time.Second},
		ttl:            ttl,
		worstCasePrice: worstCasePrice,
	}
}

// PriceUsd returns the cached price, refreshing it when stale. Falls back to
// the worst-case price when no fresh quote can be obtained.
func (o *PriceOracle) PriceUsd(ctx context.Context) float64 {
	o.mu.RLock()
	price, fetchedAt := o.price, o.fetchedAt
	o.mu.RUnlock()

	if price > 0 && time.Since(fetchedAt) < o.ttl {
		return price
	}

	fresh, err := o.fetch(ctx)
	if err != nil {
		log.WithError(err).Warn("Price fetch failed, using fallback price")
		if price > 0 {
			return price
		}
		return o.worstCasePrice
	}

	o.mu.Lock()
	o.price = fresh
	o.fetchedAt = time.Now()
	o.mu.Unlock()

	return fresh
}

func (o *PriceOracle) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create price request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		Solana struct {
			Usd float64 `json:"usd"`
		} `json:"solana"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode price response: %w", err)
	}
	if body.Solana.Usd <= 0 {
		return 0, fmt.Errorf("price endpoint returned non-positive price %f", body.Solana.Usd)
	}

	return body.Solana.Usd, nil
}
