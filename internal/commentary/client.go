package commentary

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/lox/rpsduel/internal/move"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	// DefaultModel matches the model the game was designed against.
	DefaultModel = "gemini-2.5-flash"
)

// Config configures a Client. A zero Temperature is sent as the smallest
// non-zero value because the request encoder omits zero.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Locale      move.Locale
	Temperature float32
	MaxTokens   int
	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// Client asks an OpenAI-compatible chat-completions endpoint for a remark.
type Client struct {
	api         *openai.Client
	model       string
	locale      move.Locale
	temperature float32
	maxTokens   int
	logger      *log.Logger
}

// NewClient creates a Client. The API key is required; the remaining fields
// fall back to the Gemini defaults.
func NewClient(cfg Config, logger *log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrGenerationFailed)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Locale == "" {
		cfg.Locale = move.DefaultLocale
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		locale:      cfg.Locale,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.WithPrefix("commentary").With("model", cfg.Model),
	}, nil
}

// Generate implements Provider. The deadline is taken from ctx.
func (c *Client) Generate(ctx context.Context, round Round) (string, error) {
	prompt := BuildPrompt(round, c.locale)

	temperature := c.temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   c.maxTokens,
	})
	duration := time.Since(start)
	requestDuration.WithLabelValues(c.model).Observe(duration.Seconds())

	if err != nil {
		status := statusError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			status = statusTimeout
		}
		requestsTotal.WithLabelValues(c.model, status).Inc()
		c.logger.Debug("Commentary request failed", "duration", duration, "error", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	for _, choice := range resp.Choices {
		if text := firstLine(choice.Message.Content); text != "" {
			requestsTotal.WithLabelValues(c.model, statusSuccess).Inc()
			c.logger.Debug("Commentary received", "duration", duration, "text", text)
			return text, nil
		}
	}

	requestsTotal.WithLabelValues(c.model, statusEmpty).Inc()
	return "", fmt.Errorf("%w: %w", ErrGenerationFailed, ErrEmptyResponse)
}
