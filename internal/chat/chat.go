// Package chat relays single-turn questions to an OpenAI-compatible
// chat-completion API. Upstream problems never reach the caller as errors:
// they come back as a canned assistant reply.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/handsomefox/reelscout/internal/logger"
)

var ErrEmptyMessage = errors.New("message is required")

const (
	DefaultTimeout = 30 * time.Second

	maxTokens   = 500
	temperature = 0.7

	basePrompt = "You are a helpful movie assistant. You can recommend movies, provide information about actors, " +
		"directors, genres, and answer any movie-related questions. Keep your responses concise and engaging."
	mirrorPrompt = " Answer in Arabic if the user asks in Arabic. Otherwise reply in the language the user writes in."
)

const (
	ReplyNoKey = "Hi! I'm a movie AI assistant, but I need an API key to work properly. " +
		"Please add DEEPSEEK_API_KEY or OPENAI_API_KEY to your environment variables."
	ReplyTimeout      = "Sorry, the assistant took too long to respond. Please try again."
	ReplyInvalidKey   = "Invalid API key. Please check your API key configuration."
	ReplyUnavailable  = "Sorry, I'm having trouble connecting to the AI service right now. Please try again later."
	ReplyError        = "Sorry, I encountered an error. Please try again later."
	ReplyNoCompletion = "Sorry, I could not generate a response."
)

type Config struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	MirrorLanguage bool

	// OpenRouter attribution.
	SiteURL  string
	SiteName string
}

type Proxy struct {
	provider Provider
	apiKey   string
	endpoint string
	model    string
	timeout  time.Duration
	prompt   string
	siteURL  string
	siteName string
	http     *http.Client
}

type Option func(*Proxy)

func WithHTTPClient(hc *http.Client) Option {
	return func(p *Proxy) {
		if hc != nil {
			p.http = hc
		}
	}
}

func New(cfg Config, opts ...Option) *Proxy {
	provider := LookupProvider(cfg.Provider)
	p := &Proxy{
		provider: provider,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: provider.Endpoint,
		model:    provider.Model,
		timeout:  cfg.Timeout,
		prompt:   basePrompt,
		siteURL:  cfg.SiteURL,
		siteName: cfg.SiteName,
		http:     &http.Client{},
	}
	if cfg.BaseURL != "" {
		p.endpoint = cfg.BaseURL
	}
	if cfg.Model != "" {
		p.model = cfg.Model
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if cfg.MirrorLanguage {
		p.prompt += mirrorPrompt
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Proxy) Configured() bool { return p.apiKey != "" }

func (p *Proxy) ProviderName() string { return p.provider.Name }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("chat upstream: status %d: %s", e.status, e.body)
}

// Reply returns the assistant's answer to msg. The only error is
// ErrEmptyMessage.
func (p *Proxy) Reply(ctx context.Context, msg string) (string, error) {
	if strings.TrimSpace(msg) == "" {
		return "", ErrEmptyMessage
	}
	if !p.Configured() {
		return ReplyNoKey, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.complete(ctx, msg)
	if err == nil {
		return text, nil
	}

	var statusErr *statusError
	switch {
	case errors.As(err, &statusErr) && statusErr.status == http.StatusUnauthorized:
		slog.Warn("chat: upstream rejected credentials", slog.String("provider", p.provider.Name))
		return ReplyInvalidKey, nil
	case errors.As(err, &statusErr):
		slog.Warn("chat: upstream failure", slog.String("provider", p.provider.Name), logger.Error(err))
		return ReplyUnavailable, nil
	case errors.Is(err, context.DeadlineExceeded):
		slog.Warn("chat: upstream timed out", slog.String("provider", p.provider.Name), slog.Duration("timeout", p.timeout))
		return ReplyTimeout, nil
	default:
		slog.Error("chat: request failed", slog.String("provider", p.provider.Name), logger.Error(err))
		return ReplyError, nil
	}
}

func (p *Proxy) complete(ctx context.Context, msg string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model: p.model,
		Messages: []message{
			{Role: "system", Content: p.prompt},
			{Role: "user", Content: msg},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if p.provider.Attribution {
		if p.siteURL != "" {
			req.Header.Set("HTTP-Referer", p.siteURL)
		}
		if p.siteName != "" {
			req.Header.Set("X-Title", p.siteName)
		}
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Debug("chat: close body", logger.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return ReplyNoCompletion, nil
	}
	return out.Choices[0].Message.Content, nil
}
