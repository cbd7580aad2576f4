package llm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ppiankov/disclose/internal/cache"
	"github.com/ppiankov/disclose/internal/worker"
)

// Request is one generation call as seen by the matcher
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Result never carries a Go error: failures are reported as Success=false
// with the message in Error, so a failed call still yields a result.
type Result struct {
	Success    bool
	Content    string
	Error      string
	Model      string
	TokensUsed int
	Cached     bool
}

// Client wraps a Provider with response caching and request pacing
type Client struct {
	provider Provider
	model    string
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *worker.Limiter
	limitKey string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithCache stores successful completions keyed by model and messages
func WithCache(c cache.Cache, ttl time.Duration) ClientOption {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithLimiter paces calls through l, bucketed by the provider endpoint
func WithLimiter(l *worker.Limiter) ClientOption {
	return func(cl *Client) {
		cl.limiter = l
	}
}

// NewClient builds the provider named by config. It returns ErrDisabled
// when no provider is configured.
func NewClient(config Config, opts ...ClientOption) (*Client, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrDisabled
	}

	c := NewClientWithProvider(provider, opts...)
	c.model = config.Model
	if config.BaseURL != "" {
		c.limitKey = config.BaseURL
	}
	return c, nil
}

// NewClientWithProvider wraps an existing provider
func NewClientWithProvider(provider Provider, opts ...ClientOption) *Client {
	c := &Client{provider: provider, limitKey: provider.Name()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProviderName returns the name of the configured provider
func (c *Client) ProviderName() string {
	if c == nil || c.provider == nil {
		return ""
	}
	return c.provider.Name()
}

// IsAvailable reports whether the provider answers
func (c *Client) IsAvailable(ctx context.Context) bool {
	return c != nil && c.provider != nil && c.provider.IsAvailable(ctx)
}

// Generate runs one completion. Cache hits skip the limiter and the provider.
func (c *Client) Generate(ctx context.Context, req Request) Result {
	if c == nil || c.provider == nil {
		return Result{Error: ErrDisabled.Error()}
	}

	key := c.cacheKey(req)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			return Result{Success: true, Content: string(data), Model: c.model, Cached: true}
		}
	}

	if err := c.limiter.Wait(ctx, c.limitKey); err != nil {
		return Result{Error: fmt.Sprintf("rate limit wait: %v", err)}
	}

	resp, err := c.provider.Complete(ctx, CompletionRequest{
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return Result{Error: err.Error()}
	}

	if c.cache != nil {
		_ = c.cache.Set(key, []byte(resp.Content), c.cacheTTL)
	}

	return Result{
		Success:    true,
		Content:    resp.Content,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
	}
}

func (c *Client) cacheKey(req Request) string {
	parts := []string{c.provider.Name(), c.model, strconv.FormatFloat(req.Temperature, 'f', -1, 64), strconv.Itoa(req.MaxTokens)}
	for _, m := range req.Messages {
		parts = append(parts, m.Role, m.Content)
	}
	return cache.Key(parts...)
}
