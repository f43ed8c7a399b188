// Package mercadolibre implements the Mercado Libre API client. Mercado
// Libre is the source side of the sync: its catalog is fetched, never
// written to.
package mercadolibre

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/lucab3/ml-tn-sync/internal/transport"
	"github.com/lucab3/ml-tn-sync/pkg/catalog"
	"github.com/lucab3/ml-tn-sync/pkg/errors"
)

const (
	// DefaultBaseURL is the production Mercado Libre API endpoint.
	DefaultBaseURL = "https://api.mercadolibre.com"

	// sellerSKUAttribute is the item attribute carrying the seller's SKU.
	sellerSKUAttribute = "SELLER_SKU"

	// statusActive marks listings that participate in the sync.
	statusActive = "active"

	platformName = string(catalog.PlatformMercadoLibre)
)

// Config holds the Mercado Libre credentials and fetch settings.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	UserID       string

	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string

	// PerPage is the page size for the items listing.
	PerPage int

	// Delay is the minimum pause between API requests, to stay under the
	// platform rate limit.
	Delay time.Duration
}

// Validate checks that all required credentials are present.
func (c Config) Validate() error {
	for _, field := range []struct {
		name, value string
	}{
		{"client_id", c.ClientID},
		{"client_secret", c.ClientSecret},
		{"refresh_token", c.RefreshToken},
		{"user_id", c.UserID},
	} {
		if field.value == "" {
			return errors.NewConfigError(platformName, "missing "+field.name, errors.ErrCredentialsRequired)
		}
	}
	return nil
}

// Client fetches the seller's catalog from Mercado Libre.
type Client struct {
	cfg  Config
	base string
	http *transport.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// New creates a Mercado Libre client. Credentials are validated here;
// the OAuth token exchange happens lazily on the first fetch.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	c := &Client{
		cfg:          cfg,
		base:         base,
		refreshToken: cfg.RefreshToken,
	}
	c.http = transport.New(&transport.TokenSource{Get: c.token})
	return c, nil
}

// Platform implements reconcile.Fetcher.
func (c *Client) Platform() catalog.Platform {
	return catalog.PlatformMercadoLibre
}

// token returns the current access token for the transport authenticator.
func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// tokenResponse is the OAuth token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// authenticate exchanges the refresh token for an access token. Mercado
// Libre rotates the refresh token on every exchange; the new one is kept
// for the remainder of the run.
func (c *Client) authenticate(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {c.refreshToken},
	}

	resp, err := c.http.PostForm(ctx, c.base+"/oauth/token", form)
	if err != nil {
		return errors.NewAuthenticationError(platformName, "oauth", "token request failed", err)
	}

	var token tokenResponse
	if err := transport.DecodeResponse(platformName, resp, &token); err != nil {
		return errors.NewAuthenticationError(platformName, "oauth", "token refresh rejected", err)
	}
	if token.AccessToken == "" {
		return errors.NewAuthenticationError(platformName, "oauth", "empty access token in response", nil)
	}

	c.mu.Lock()
	c.accessToken = token.AccessToken
	if token.RefreshToken != "" {
		c.refreshToken = token.RefreshToken
	}
	c.mu.Unlock()

	return nil
}

// searchResponse is one page of the seller items listing.
type searchResponse struct {
	Results []string `json:"results"`
	Paging  struct {
		Total int `json:"total"`
	} `json:"paging"`
}

// itemAttribute is one entry of an item's attributes array.
type itemAttribute struct {
	ID        string `json:"id"`
	ValueName string `json:"value_name"`
}

// itemResponse is the item details payload, reduced to the fields the
// sync needs.
type itemResponse struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Price      float64         `json:"price"`
	CurrencyID string          `json:"currency_id"`
	Status     string          `json:"status"`
	Attributes []itemAttribute `json:"attributes"`
}

// FetchCatalog retrieves the complete seller catalog: the item listing is
// walked page by page until an empty page, then details are fetched per
// item. Any failure aborts the fetch; partial results are discarded.
func (c *Client) FetchCatalog(ctx context.Context) ([]catalog.Product, error) {
	if c.cfg.PerPage <= 0 {
		return nil, errors.NewFetchError(platformName, 0,
			fmt.Sprintf("invalid page size %d", c.cfg.PerPage), errors.ErrInvalidInput)
	}

	if c.token() == "" {
		if err := c.authenticate(ctx); err != nil {
			return nil, errors.NewFetchError(platformName, 0, "authentication failed", err)
		}
	}

	itemIDs, err := c.listItemIDs(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(itemIDs))
	for _, id := range itemIDs {
		if err := c.wait(ctx); err != nil {
			return nil, errors.NewFetchError(platformName, 0, "canceled", err)
		}
		item, err := c.fetchItem(ctx, id)
		if err != nil {
			// An unreadable item means the catalog is incomplete, which
			// must abort the whole fetch.
			return nil, errors.NewFetchError(platformName, 0, "item "+id, err)
		}
		if item.Status != statusActive {
			continue
		}
		products = append(products, toProduct(item))
	}

	return products, nil
}

// listItemIDs pages through the seller items search until exhaustion.
func (c *Client) listItemIDs(ctx context.Context) ([]string, error) {
	searchURL := fmt.Sprintf("%s/users/%s/items/search", c.base, c.cfg.UserID)

	var ids []string
	for page := 1; ; page++ {
		if page > 1 {
			if err := c.wait(ctx); err != nil {
				return nil, errors.NewFetchError(platformName, page, "canceled", err)
			}
		}

		offset := (page - 1) * c.cfg.PerPage
		params := url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(c.cfg.PerPage)},
		}

		resp, err := c.http.Get(ctx, searchURL, params)
		if err != nil {
			return nil, errors.NewFetchError(platformName, page, "page request failed", err)
		}

		var result searchResponse
		if err := transport.DecodeResponse(platformName, resp, &result); err != nil {
			return nil, errors.NewFetchError(platformName, page, "page response invalid", err)
		}

		if len(result.Results) == 0 {
			break
		}
		if len(result.Results) > c.cfg.PerPage {
			return nil, errors.NewFetchError(platformName, page,
				fmt.Sprintf("server returned %d records for page size %d", len(result.Results), c.cfg.PerPage),
				errors.ErrInvalidInput)
		}

		ids = append(ids, result.Results...)
	}

	return ids, nil
}

// fetchItem retrieves the details of one listing.
func (c *Client) fetchItem(ctx context.Context, itemID string) (*itemResponse, error) {
	resp, err := c.http.Get(ctx, c.base+"/items/"+itemID, nil)
	if err != nil {
		return nil, err
	}
	var item itemResponse
	if err := transport.DecodeResponse(platformName, resp, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// toProduct maps an item payload into the platform-agnostic record,
// pulling the SKU out of the attributes array.
func toProduct(item *itemResponse) catalog.Product {
	var sku string
	for _, attr := range item.Attributes {
		if attr.ID == sellerSKUAttribute {
			sku = attr.ValueName
			break
		}
	}
	return catalog.Product{
		SKU:      sku,
		NativeID: item.ID,
		Name:     item.Title,
		Price:    item.Price,
		Currency: item.CurrencyID,
	}
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
