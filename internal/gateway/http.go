package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"walletid/internal/domain"
)

// Config configures an HTTP gateway client.
type Config struct {
	BaseURL       string        // API base, e.g. https://gateway.example/
	PublicURL     string        // optional; defaults to BaseURL + "/ipfs"
	Token         string        // bearer credential, required
	RatePerSecond float64       // uploads per second; <= 0 disables pacing
	Burst         int           // token bucket size; defaults to 1
	Timeout       time.Duration // per-request timeout; defaults to 30s
	HTTP          *http.Client  // optional; defaults to a client with Timeout
}

// HTTP talks to a storage gateway over HTTP.
type HTTP struct {
	base    string
	public  string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewHTTP validates cfg and returns a client.
func NewHTTP(cfg Config) (*HTTP, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, domain.ErrMissingCredential
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("gateway base url %q: %w", cfg.BaseURL, domain.ErrInvalidFormat)
	}
	public := strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/")
	if public == "" {
		public = base + "/ipfs"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := cfg.HTTP
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return &HTTP{
		base:    base,
		public:  public,
		token:   cfg.Token,
		http:    client,
		limiter: limiter,
	}, nil
}

type uploadResponse struct {
	CID string `json:"cid"`
}

// Upload stores data under name and returns its content identifier.
func (c *HTTP) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	path := "/api/v0/upload?name=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("gateway post %s: %s", "/api/v0/upload", resp.Status)
	}
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gateway upload response: %w", err)
	}
	if out.CID == "" {
		return "", fmt.Errorf("gateway upload response: empty cid: %w", domain.ErrInvalidFormat)
	}
	return out.CID, nil
}

// GatewayURL returns the public URL that serves cid.
func (c *HTTP) GatewayURL(cid string) string {
	return c.public + "/" + url.PathEscape(cid)
}

// Compile-time assertion that HTTP implements domain.Uploader.
var _ domain.Uploader = (*HTTP)(nil)
