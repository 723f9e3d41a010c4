package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
//	client := utils.NewHTTPClient(utils.WithBaseURL("https://api.resend.com"))
//	resp, err := client.R().Get("/emails")
type HTTPClient struct {
	*resty.Client
}

// HTTPClientOption customizes the underlying resty client.
type HTTPClientOption func(*resty.Client)

// WithBaseURL sets the base URL prepended to relative request paths.
func WithBaseURL(url string) HTTPClientOption {
	return func(c *resty.Client) { c.SetBaseURL(url) }
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) HTTPClientOption {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithAuthToken sets a bearer token on every request.
func WithAuthToken(token string) HTTPClientOption {
	return func(c *resty.Client) {
		if token != "" {
			c.SetAuthToken(token)
		}
	}
}

// NewHTTPClient creates a new HTTPClient with its own configuration,
// connection pool and state.
func NewHTTPClient(opts ...HTTPClientOption) *HTTPClient {
	c := resty.New()
	for _, opt := range opts {
		opt(c)
	}
	return &HTTPClient{Client: c}
}
