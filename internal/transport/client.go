// Package transport provides the authenticated HTTP client shared by the
// platform API clients.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lucab3/ml-tn-sync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// UserAgent identifies this tool to the platform APIs.
const UserAgent = "ml-tn-sync/1.0"

// Client provides HTTP client functionality with authentication.
type Client struct {
	http *http.Client
	auth Authenticator
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator) *Client {
	return &Client{
		http: &http.Client{Timeout: DefaultHTTPTimeout},
		auth: auth,
	}
}

// Do performs an HTTP request with authentication and common headers applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.auth != nil {
		c.auth.Apply(req)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
	}

	return c.http.Do(req)
}

// Get performs a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.WrapValidation("url", err)
	}
	if len(params) > 0 {
		query := req.URL.Query()
		for key, values := range params {
			for _, v := range values {
				query.Add(key, v)
			}
		}
		req.URL.RawQuery = query.Encode()
	}
	return c.Do(req)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, rawURL string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WrapParse("json", "request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.WrapValidation("url", err)
	}
	return c.Do(req)
}

// PostForm performs a POST request with a form-encoded body. Used by the
// Mercado Libre OAuth token endpoint.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader([]byte(form.Encode())))
	if err != nil {
		return nil, errors.WrapValidation("url", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(req)
}

// DecodeResponse decodes a JSON response into the target structure. Non-2xx
// responses are returned as an APIError carrying the body.
func DecodeResponse(platform string, resp *http.Response, target any) error {
	defer resp.Body.Close() //nolint:errcheck // Read error takes precedence

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapAPI(platform, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			Platform:   platform,
			StatusCode: resp.StatusCode,
			Endpoint:   resp.Request.URL.String(),
			Message:    string(body),
		}
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}
