package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nikolayk812/cafe-cart/internal/domain"
	"github.com/nikolayk812/cafe-cart/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// productDTO mirrors GET /api/products/{id} of the catalog service.
type productDTO struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available *bool           `json:"available"`
}

type httpLookup struct {
	baseURL *url.URL
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTP returns a lookup that asks the catalog service synchronously.
// Calls are never retried; deadlines come from the caller's context.
func NewHTTP(baseURL string, client *http.Client, logger *zap.Logger) (port.ProductLookup, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("product service url[%s] is not absolute", baseURL)
	}

	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &httpLookup{
		baseURL: u,
		client:  client,
		logger:  logger.Named("lookup.http"),
	}, nil
}

func (l *httpLookup) GetSnapshot(ctx context.Context, productID int64) (domain.ProductSnapshot, error) {
	endpoint := l.baseURL.JoinPath("api", "products", strconv.FormatInt(productID, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("product service call failed", zap.Int64("product_id", productID), zap.Error(err))
		return domain.ProductSnapshot{}, fmt.Errorf("%w: product service: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ProductSnapshot{}, notPurchasable(productID)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		l.logger.Warn("product service unexpected status",
			zap.Int64("product_id", productID),
			zap.Int("status", resp.StatusCode),
		)
		return domain.ProductSnapshot{}, fmt.Errorf("%w: product service returned status %d",
			domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("%w: read product response: %w", domain.ErrUpstreamUnavailable, err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return domain.ProductSnapshot{}, notPurchasable(productID)
	}

	var p productDTO
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("%w: decode product response: %w", domain.ErrUpstreamUnavailable, err)
	}

	if p.Available != nil && !*p.Available {
		return domain.ProductSnapshot{}, notPurchasable(productID)
	}

	id := p.ID
	if id == 0 {
		id = productID
	}

	return domain.ProductSnapshot{
		ID:    id,
		Name:  p.Name,
		Price: domain.Money{Amount: p.Price, Currency: domain.DefaultCurrency},
	}, nil
}

func notPurchasable(productID int64) error {
	return fmt.Errorf("%w: product %d is missing or not purchasable", domain.ErrNotFound, productID)
}
