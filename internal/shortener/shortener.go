package shortener

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client shortens share links through a TinyURL-compatible api-create
// endpoint. Shortening is strictly best-effort: on any failure the caller
// gets the long URL back unchanged, never an error.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

// New creates a Client. An empty endpoint disables shortening entirely.
func New(endpoint string, log zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 5 * time.Second},
		log:      log.With().Str("component", "shortener").Logger(),
	}
}

// Shorten returns the short URL for longURL, or longURL itself when the
// service is disabled, unreachable, or answers anything but a plausible URL.
func (c *Client) Shorten(ctx context.Context, longURL string) string {
	if c.endpoint == "" {
		return longURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?url="+url.QueryEscape(longURL), nil)
	if err != nil {
		return longURL
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("Shortener unreachable, using long URL")
		return longURL
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("Shortener rejected URL, using long URL")
		return longURL
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if err != nil {
		return longURL
	}

	short := strings.TrimSpace(string(body))
	if !strings.HasPrefix(short, "http://") && !strings.HasPrefix(short, "https://") {
		return longURL
	}
	return short
}
