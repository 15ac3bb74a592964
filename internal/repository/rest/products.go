// Package rest reads the product catalog from a hosted PostgREST-style
// database API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
)

const upstream = "product-api"

// Config configures the hosted product API.
type Config struct {
	BaseURL string
	APIKey  string
	Table   string
	Timeout time.Duration
	// Registerer receives the circuit breaker metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// ProductSource fetches products over HTTP. Requests are not retried; a
// circuit breaker stops hammering an upstream that keeps failing.
type ProductSource struct {
	client   httpclient.Doer
	endpoint string
}

// NewProductSource creates a REST product source.
func NewProductSource(cfg Config, l *slog.Logger) (*ProductSource, error) {
	if cfg.BaseURL == "" {
		return nil, apperrors.InvalidInput("product api base url is required")
	}
	if cfg.Table == "" {
		cfg.Table = "products"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	endpoint, err := productsURL(cfg.BaseURL, cfg.Table)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["apikey"] = cfg.APIKey
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}

	base := httpclient.New(httpclient.Config{
		Timeout:         cfg.Timeout,
		MaxConnsPerHost: 10,
		Headers:         headers,
	})

	cbCfg := httpclient.DefaultCircuitBreakerConfig(upstream)
	cbCfg.Registerer = cfg.Registerer

	return &ProductSource{
		client:   httpclient.NewCircuitBreakerClient(base, cbCfg, l),
		endpoint: endpoint,
	}, nil
}

func productsURL(base, table string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", apperrors.InvalidInput(fmt.Sprintf("invalid product api base url %q", base))
	}
	u = u.JoinPath("rest", "v1", table)
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchProducts returns every product, newest first.
func (s *ProductSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create products request: %w", err)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Unavailable("product api request failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp, upstream)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Unavailable("read product api response", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, apperrors.Corrupt("product api response", err)
	}
	return domain.Identified(products), nil
}

// Ping requests a single row.
func (s *ProductSource) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"&limit=1", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("product api unreachable: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, upstream)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}
