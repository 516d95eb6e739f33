package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// maxResponseBytes bounds catalog response reads.
const maxResponseBytes = 8 << 20

// Fetcher pulls the product list from the commerce catalog API.
// Params: configured base URL, shop id, and bearer token.
// Returns: normalized product records per tick.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	shopID    string
	authToken string
	urlBase   string
}

// NewFetcher builds a catalog fetcher from runtime config.
// Params: cfg catalog section.
// Returns: ready fetcher with bounded request timeout.
func NewFetcher(cfg config.CatalogConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		shopID:    cfg.ShopID,
		authToken: cfg.AuthToken,
		urlBase:   cfg.ProductURLBase,
	}
}

// Fetch lists shop products from the catalog API.
// Params: ctx bounds the request lifetime.
// Returns: normalized product records or transport/decode error.
func (f *Fetcher) Fetch(ctx context.Context) ([]domain.ProductRecord, error) {
	endpoint := fmt.Sprintf("%s/v1/shops/%s/products", f.baseURL, f.shopID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.authToken)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog responded with status %d", resp.StatusCode)
	}

	records, err := domain.DecodeProducts(body, f.urlBase)
	if err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return records, nil
}
