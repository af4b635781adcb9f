package auth

import (
	"context"
	"errors"
	"net/http"
)

// APIKeyAuthorizer authorizes requests with a Data API key. Only public
// resources can be read this way.
type APIKeyAuthorizer struct {
	Key string
	// Base is the underlying transport. Nil means http.DefaultTransport.
	Base http.RoundTripper
}

// Client returns a client that adds the key to every request.
func (a *APIKeyAuthorizer) Client(ctx context.Context) (*http.Client, error) {
	if a.Key == "" {
		return nil, &AuthorizationError{Op: "api key", Err: errors.New("empty api key")}
	}
	base := a.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{Transport: &apiKeyTransport{key: a.Key, base: base}}, nil
}

type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	q := req.URL.Query()
	q.Set("key", t.key)
	req.URL.RawQuery = q.Encode()
	return t.base.RoundTrip(req)
}
