package remote

import (
	"net/http"
	"time"
)

// newHTTPClient returns the client shared by all requests of one planner
// instance.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// destroyHTTPClient releases pooled connections.
func destroyHTTPClient(client *http.Client) {
	client.CloseIdleConnections()
}
