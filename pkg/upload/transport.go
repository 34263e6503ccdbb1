package upload

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// newHTTPClient builds the client used for analysis requests.
//
// Rules:
//   - timeout 0 waits for the server indefinitely
//   - proxyURL non-empty: every request goes through it
//   - no retries: the body is a one-shot multipart upload
func newHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        4,
		IdleConnTimeout:     30 * time.Second,
	}

	if proxyURL = strings.TrimSpace(proxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
	}

	return &http.Client{
		Transport: base,
		Timeout:   timeout,
	}, nil
}
