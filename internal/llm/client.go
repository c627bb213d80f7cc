package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/codesage-ai/codesage/internal/config"
)

// Client sends a prompt to a generative-AI backend and returns the raw text.
// Implementations perform no retries and no timeout handling of their own;
// both live in the caller.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewClient creates the model client for the configured provider.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Client, error) {
	switch cfg.LLMProvider {
	case "gemini":
		logger.Info("using Gemini LLM provider", "model", cfg.ModelName)
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set in environment for gemini provider")
		}
		model, err := gemini.New(ctx,
			gemini.WithModel(cfg.ModelName),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return &goframeClient{model: model}, nil

	case "ollama":
		logger.Info("using Ollama LLM provider", "model", cfg.ModelName, "host", cfg.OllamaHost)
		model, err := ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithModel(cfg.ModelName),
			ollama.WithHTTPClient(newOllamaHTTPClient()),
			ollama.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return &goframeClient{model: model}, nil

	case "openai":
		logger.Info("using OpenAI LLM provider", "model", cfg.ModelName)
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set in environment for openai provider")
		}
		return &openaiClient{
			client: openai.NewClient(cfg.OpenAIAPIKey),
			model:  cfg.ModelName,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// goframeClient adapts a goframe llms.Model (gemini, ollama) to Client.
type goframeClient struct {
	model llms.Model
}

func (c *goframeClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.model.Call(ctx, prompt)
}

// openaiClient adapts the go-openai chat completion API to Client.
type openaiClient struct {
	client *openai.Client
	model  string
}

func (c *openaiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// newOllamaHTTPClient creates an HTTP client with longer timeouts for Ollama
// requests. Local models can take a while to process a full-file review.
func newOllamaHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}

// IsQuotaError reports whether err signals upstream rate-limit or quota
// exhaustion. Providers surface this differently: go-openai carries a typed
// APIError, Gemini errors mention the 429 code or RESOURCE_EXHAUSTED.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	msg := err.Error()
	for _, marker := range []string{"429", "RESOURCE_EXHAUSTED", "quota", "rate limit"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
