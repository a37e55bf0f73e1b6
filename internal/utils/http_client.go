package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around resty.Client used for outbound calls to
// federated identity providers. It embeds *resty.Client to expose all of
// its methods directly.
//
//	client := utils.NewHTTPClient(10 * time.Second)
//	resp, err := client.R().SetAuthToken(accessToken).Get("https://api.github.com/user")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates a client that expects JSON responses and gives up
// after timeout. A non-positive timeout leaves the resty default (none).
//
// Each call returns an independent client with its own connection pool.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}
