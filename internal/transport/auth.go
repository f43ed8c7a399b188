package transport

import "net/http"

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {
	// No authentication applied
}

// BearerAuth implements standard Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// HeaderAuth implements custom header authentication. Tienda Nube uses a
// non-standard "Authentication: bearer <token>" header.
type HeaderAuth struct {
	Header string
	Prefix string
	Token  string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	req.Header.Set(a.Header, a.Prefix+a.Token)
}

// TokenSource supplies a token resolved at request time, for credentials
// that are refreshed during the client's lifetime.
type TokenSource struct {
	Get func() string
}

// Apply implements the Authenticator interface for TokenSource.
func (a *TokenSource) Apply(req *http.Request) {
	if token := a.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
