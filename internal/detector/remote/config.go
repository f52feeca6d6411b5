package remote

import (
	"log/slog"
	"net/http"
	"time"
)

type Option func(*Client)

func WithClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithConcurrency bounds the number of pages analyzed at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithAttempts sets how often a page request is tried before it is skipped.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = uint(n)
		}
	}
}

func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}
