// Package tmdb wraps the TMDB API for listings, search, details and images.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	DefaultBaseURL   = "https://api.themoviedb.org/3"
	DefaultImageBase = "https://image.tmdb.org/t/p"
	DefaultLanguage  = "en-US"

	// MaxPages is the deepest page TMDB will serve for any listing.
	MaxPages = 500
)

var ErrInvalidMediaType = errors.New("invalid media type")

type MediaType string

const (
	Movie MediaType = "movie"
	TV    MediaType = "tv"
)

func (m MediaType) Valid() bool {
	return m == Movie || m == TV
}

type Client struct {
	apiKey     string
	readToken  string
	baseURL    string
	language   string
	http       *http.Client
	attempts   uint
	retryDelay time.Duration
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

func WithDefaultLanguage(lang string) Option {
	return func(c *Client) {
		if lang = strings.TrimSpace(lang); lang != "" {
			c.language = lang
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetry sets how many times an idempotent GET is attempted and the
// initial back-off between attempts.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts == 0 {
			attempts = 1
		}
		c.attempts = attempts
		c.retryDelay = delay
	}
}

func New(apiKey, readToken string, opts ...Option) *Client {
	if strings.TrimSpace(readToken) == "" && looksLikeJWT(apiKey) {
		readToken = apiKey
		apiKey = ""
	}
	c := &Client{
		apiKey:    strings.TrimSpace(apiKey),
		readToken: strings.TrimSpace(readToken),
		baseURL:   DefaultBaseURL,
		language:  DefaultLanguage,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		attempts:   3,
		retryDelay: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET against path, retrying transport failures, 429 and 5xx.
func (c *Client) get(ctx context.Context, path string, values url.Values, dst any) error {
	if values == nil {
		values = url.Values{}
	}
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}
	if lang := LanguageFrom(ctx, c.language); lang != "" {
		values.Set("language", lang)
	}
	endpoint := c.baseURL + path + "?" + values.Encode()

	return retry.Do(
		func() error { return c.fetch(ctx, endpoint, path, dst) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
}

func (c *Client) fetch(ctx context.Context, endpoint, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.applyAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		statusErr := &StatusError{Status: resp.StatusCode, Endpoint: path}
		if cerr := resp.Body.Close(); cerr != nil {
			return errors.Join(statusErr, cerr)
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		err = fmt.Errorf("tmdb %s: decode: %w", path, err)
		if cerr := resp.Body.Close(); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}
	return resp.Body.Close()
}

func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status == http.StatusTooManyRequests || statusErr.Status >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) applyAuth(req *http.Request) {
	if c.readToken == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.readToken)
}

func looksLikeJWT(token string) bool {
	parts := strings.Split(strings.TrimSpace(token), ".")
	return len(parts) == 3 && len(token) > 80
}
