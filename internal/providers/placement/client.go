package placement

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ClientConfig configures a remote placement service client.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit caps requests per second; zero means unlimited.
	RateLimit float64
}

// DefaultClientConfig returns production defaults for baseURL.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:      baseURL,
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
	}
}

type candidatesRequest struct {
	Road    string  `json:"road"`
	Anchor  Anchor  `json:"anchor"`
	Density float64 `json:"density"`
}

type candidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Client is a Source backed by a remote placement service.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
}

// NewClient builds a client. Transient failures (connection errors, 5xx)
// are retried by the transport; the last failure is returned.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("placement service URL is required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "ScenarioForge-Placement/1.0").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}

	return &Client{resty: restyClient, limiter: limiter}, nil
}

// Candidates posts the request to /candidates. Indices are assigned from
// list position, as in the catalog; any index sent by the service is ignored.
func (c *Client) Candidates(ctx context.Context, road string, anchor Anchor, density float64) ([]Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	var out candidatesResponse
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(candidatesRequest{Road: road, Anchor: anchor, Density: density}).
		SetResult(&out).
		Post("/candidates")
	if err != nil {
		return nil, fmt.Errorf("placement request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("placement service returned %s", resp.Status())
	}
	if out.Candidates == nil {
		return []Candidate{}, nil
	}
	for i := range out.Candidates {
		out.Candidates[i].Index = i
	}
	return out.Candidates, nil
}
