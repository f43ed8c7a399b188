// Package tiendanube implements the Tienda Nube API client. Tienda Nube
// is the target side of the sync: its catalog is fetched and its prices
// are updated toward the source.
package tiendanube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/lucab3/ml-tn-sync/internal/transport"
	"github.com/lucab3/ml-tn-sync/pkg/catalog"
	"github.com/lucab3/ml-tn-sync/pkg/errors"
)

const (
	// DefaultBaseURL is the production Tienda Nube API endpoint; the store
	// ID is appended per request.
	DefaultBaseURL = "https://api.tiendanube.com/v1"

	platformName = string(catalog.PlatformTiendaNube)
)

// Config holds the Tienda Nube credentials and fetch settings.
type Config struct {
	AccessToken string
	StoreID     string

	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string

	// PerPage is the page size for the product listing.
	PerPage int

	// Delay is the minimum pause between API requests.
	Delay time.Duration
}

// Validate checks that all required credentials are present.
func (c Config) Validate() error {
	if c.AccessToken == "" {
		return errors.NewConfigError(platformName, "missing access_token", errors.ErrCredentialsRequired)
	}
	if c.StoreID == "" {
		return errors.NewConfigError(platformName, "missing store_id", errors.ErrCredentialsRequired)
	}
	return nil
}

// Client fetches and updates the store catalog on Tienda Nube.
type Client struct {
	cfg  Config
	base string
	http *transport.Client
}

// New creates a Tienda Nube client.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	return &Client{
		cfg:  cfg,
		base: strings.TrimSuffix(base, "/") + "/" + cfg.StoreID,
		// Tienda Nube uses a non-standard Authentication header with a
		// lowercase bearer scheme.
		http: transport.New(&transport.HeaderAuth{
			Header: "Authentication",
			Prefix: "bearer ",
			Token:  cfg.AccessToken,
		}),
	}, nil
}

// Platform implements reconcile.Fetcher.
func (c *Client) Platform() catalog.Platform {
	return catalog.PlatformTiendaNube
}

// money accepts the price encodings Tienda Nube has been observed to emit:
// JSON numbers, decimal strings, and null.
type money float64

// UnmarshalJSON implements json.Unmarshaler.
func (m *money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*m = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", s, err)
	}
	*m = money(v)
	return nil
}

// variantResponse is one product variant in the listing payload.
type variantResponse struct {
	ID    json.Number `json:"id"`
	SKU   string      `json:"sku"`
	Price money       `json:"price"`
}

// productResponse is one product in the listing payload, reduced to the
// fields the sync needs. Name is a locale-keyed map.
type productResponse struct {
	ID       json.Number       `json:"id"`
	Name     map[string]string `json:"name"`
	SKU      string            `json:"sku"`
	Price    money             `json:"price"`
	Variants []variantResponse `json:"variants"`
}

// FetchCatalog retrieves the complete store catalog, walking page/per_page
// pagination until the first empty page. Variant-bearing products are
// flattened to one record per variant so that reconciliation operates on
// variant SKUs and prices.
func (c *Client) FetchCatalog(ctx context.Context) ([]catalog.Product, error) {
	if c.cfg.PerPage <= 0 {
		return nil, errors.NewFetchError(platformName, 0,
			fmt.Sprintf("invalid page size %d", c.cfg.PerPage), errors.ErrInvalidInput)
	}

	var products []catalog.Product
	for page := 1; ; page++ {
		if page > 1 {
			if err := c.wait(ctx); err != nil {
				return nil, errors.NewFetchError(platformName, page, "canceled", err)
			}
		}

		params := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.cfg.PerPage)},
		}

		resp, err := c.http.Get(ctx, c.base+"/products", params)
		if err != nil {
			return nil, errors.NewFetchError(platformName, page, "page request failed", err)
		}

		var batch []productResponse
		if err := transport.DecodeResponse(platformName, resp, &batch); err != nil {
			return nil, errors.NewFetchError(platformName, page, "page response invalid", err)
		}

		if len(batch) == 0 {
			break
		}
		if len(batch) > c.cfg.PerPage {
			return nil, errors.NewFetchError(platformName, page,
				fmt.Sprintf("server returned %d records for page size %d", len(batch), c.cfg.PerPage),
				errors.ErrInvalidInput)
		}

		for _, p := range batch {
			products = append(products, flatten(p)...)
		}
	}

	return products, nil
}

// flatten maps one product payload to platform-agnostic records, one per
// variant when variants are present.
func flatten(p productResponse) []catalog.Product {
	name := displayName(p.Name)

	if len(p.Variants) == 0 {
		return []catalog.Product{{
			SKU:      p.SKU,
			NativeID: p.ID.String(),
			Name:     name,
			Price:    float64(p.Price),
		}}
	}

	records := make([]catalog.Product, 0, len(p.Variants))
	for _, v := range p.Variants {
		records = append(records, catalog.Product{
			SKU:       v.SKU,
			NativeID:  p.ID.String(),
			VariantID: v.ID.String(),
			Name:      name,
			Price:     float64(v.Price),
		})
	}
	return records
}

// localePreferences orders the display locales: the stores this tool is
// built for are Spanish-language, with English as a fallback.
var localePreferences = []language.Tag{language.Spanish, language.English}

// displayName picks one human-readable name out of the locale map using
// language matching, falling back to the lexically first locale.
func displayName(names map[string]string) string {
	if len(names) == 0 {
		return ""
	}

	locales := make([]string, 0, len(names))
	for locale := range names {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	available := make([]language.Tag, len(locales))
	for i, locale := range locales {
		available[i] = language.Make(locale)
	}

	matcher := language.NewMatcher(available)
	if _, idx, conf := matcher.Match(localePreferences...); conf > language.No {
		return names[locales[idx]]
	}
	return names[locales[0]]
}

// priceUpdate is the request body for price update calls.
type priceUpdate struct {
	Price float64 `json:"price"`
}

// UpdatePrice implements reconcile.PriceUpdater. Variant records are
// routed to the variant endpoint, simple products to the product endpoint.
func (c *Client) UpdatePrice(ctx context.Context, product catalog.Product, price float64) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	endpoint := c.base + "/products/" + product.NativeID
	if product.IsVariant() {
		endpoint += "/variants/" + product.VariantID
	}

	resp, err := c.http.Put(ctx, endpoint, priceUpdate{Price: price})
	if err != nil {
		return err
	}
	return transport.DecodeResponse(platformName, resp, nil)
}

// wait pauses between requests to respect the platform rate limit.
func (c *Client) wait(ctx context.Context) error {
	if c.cfg.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
