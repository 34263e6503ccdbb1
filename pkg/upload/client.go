package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sdejongh/simnorris/pkg/logging"
	"github.com/sdejongh/simnorris/pkg/models"
	"github.com/sdejongh/simnorris/pkg/ratelimit"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 32 << 20

// Options configures a Client
type Options struct {
	ServerURL string
	Endpoint  string

	// Timeout for the whole exchange; 0 waits forever
	Timeout time.Duration

	// Proxy URL, empty for direct connections (or HTTP_PROXY from env)
	Proxy string

	// BandwidthLimit in bytes per second for the request body, 0 = unlimited
	BandwidthLimit int64

	Logger logging.Logger
}

// Client posts file selections to the analysis endpoint
type Client struct {
	url     string
	http    *http.Client
	limiter *ratelimit.Limiter
	logger  logging.Logger
}

// NewClient creates a new upload client
func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = models.DefaultEndpoint
	}

	op := models.AnalysisOperation{ServerURL: opts.ServerURL, Endpoint: opts.Endpoint}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	httpClient, err := newHTTPClient(opts.Proxy, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	return &Client{
		url:     op.URL(),
		http:    httpClient,
		limiter: ratelimit.NewLimiter(opts.BandwidthLimit),
		logger:  logger,
	}, nil
}

// URL returns the endpoint requests are posted to
func (c *Client) URL() string {
	return c.url
}

// Analyze sends the selection as one multipart POST and decodes the reply.
// The body is decoded whatever the HTTP status, since the server reports
// failures as {"error": ...} with 4xx/5xx codes. Failures to send, read or
// decode come back as *models.TransportError. There is no retry.
func (c *Client) Analyze(ctx context.Context, sel *models.FileSelection) (*models.AnalysisResponse, error) {
	body, err := BuildBody(ctx, sel)
	if err != nil {
		return nil, &models.TransportError{Op: "request", Err: err}
	}

	size := int64(body.Data.Len())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url,
		ratelimit.NewReader(ctx, body.Data, c.limiter))
	if err != nil {
		return nil, &models.TransportError{Op: "request", Err: err}
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", body.ContentType)

	c.logger.Info(ctx, "posting analysis request", logging.Fields{
		"url":   c.url,
		"parts": body.Parts,
		"bytes": size,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &models.TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &models.TransportError{Op: "read", StatusCode: resp.StatusCode, Err: err}
	}
	if len(data) > maxResponseBytes {
		return nil, &models.TransportError{
			Op:         "read",
			StatusCode: resp.StatusCode,
			Err:        errors.New("response body exceeds 32 MiB"),
		}
	}

	c.logger.Info(ctx, "analysis response received", logging.Fields{
		"status":   resp.StatusCode,
		"bytes":    len(data),
		"duration": time.Since(start).Round(time.Millisecond).String(),
	})

	result, err := models.DecodeResponse(data)
	if err != nil {
		return nil, &models.TransportError{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}

	return result, nil
}
