// Package gemini implements the den language-model collaborators on top of
// Google Gemini: concept extraction, similarity scoring, deduplication and
// summarization.
package gemini

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/isaacchacko/den"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator produces a text response to a single-turn prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

// GenerateFunc adapts a function to the Generator interface.
type GenerateFunc func(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)

// Generate calls f.
func (f GenerateFunc) Generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	return f(ctx, prompt, config)
}

var _ Generator = (*Client)(nil)

// Client is a Generator backed by the Gemini API. Calls go through a circuit
// breaker shared by every collaborator built on the same Client.
type Client struct {
	client  *genai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
}

// BreakerConfig configures the circuit breaker around Gemini calls.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the default circuit breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	model   string
	breaker BreakerConfig
	logger  *slog.Logger
}

// WithModel sets the Gemini model name.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBreaker sets the circuit breaker configuration.
func WithBreaker(cfg BreakerConfig) ClientOption {
	return func(c *clientConfig) {
		c.breaker = cfg
	}
}

// WithLogger sets the logger for circuit breaker state changes.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// NewClient wraps a genai client.
func NewClient(client *genai.Client, opts ...ClientOption) *Client {
	cfg := clientConfig{
		model:   DefaultModel,
		breaker: DefaultBreakerConfig(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		client:  client,
		model:   cfg.model,
		breaker: newBreaker("gemini", cfg.breaker, cfg.logger),
	}
}

func newBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
		// Cancellation does not count against the API.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Generate sends prompt to the model and returns the response text.
// Returns ECOLLABORATOR when the circuit breaker is open.
func (c *Client) Generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		result, err := c.client.Models.GenerateContent(ctx, c.model,
			[]*genai.Content{{
				Parts: []*genai.Part{{Text: prompt}},
			}},
			config,
		)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, den.Errorf(den.EINTERNAL, "gemini returned nil result")
		}
		return result.Text(), nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", den.Errorf(den.ECOLLABORATOR, "gemini unavailable: %v", err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
