// Package review implements the request pipeline around the model client:
// input validation, prompt construction, the timeout race against the
// upstream call, schema enforcement, and the mapping of every failure mode
// to a user-facing error.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codesage-ai/codesage/internal/config"
	"github.com/codesage-ai/codesage/internal/core"
	"github.com/codesage-ai/codesage/internal/llm"
)

// User-facing messages. The timeout and the generic failure deliberately read
// differently so the two stay diagnosable, even though both require the user
// to resubmit.
const (
	msgEmptyInput     = "Code cannot be empty"
	msgTimeout        = "AI took too long to respond. Please try again."
	msgUpstreamFailed = "AI service failed. Please try again later."
	msgQuotaExceeded  = "You are sending requests too fast. Please wait a minute."
)

// Service orchestrates a single code review request.
type Service struct {
	cfg     *config.Config
	client  llm.Client
	prompts *llm.PromptBuilder
	logger  *slog.Logger
}

// NewService creates a review service.
func NewService(cfg *config.Config, client llm.Client, prompts *llm.PromptBuilder, logger *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		client:  client,
		prompts: prompts,
		logger:  logger,
	}
}

// Review validates the submitted code, dispatches it to the model under the
// configured timeout, and returns the normalized review output.
//
// Failure mapping:
//   - empty or oversized input: 400, reported before any model call
//   - timer wins the race: 504
//   - upstream quota/429: 429 with its own message
//   - any other upstream or parse failure: 500
//
// A malformed model response is retried within the same deadline up to the
// configured budget before the request fails. If a retry starts with the
// deadline already spent, the request reports the timeout rather than the
// parse failure: once the timer wins, 504 is the answer regardless of what
// the model managed to send before it.
func (s *Service) Review(ctx context.Context, code string) (*core.ReviewOutput, error) {
	if strings.TrimSpace(code) == "" {
		return nil, core.NewError(http.StatusBadRequest, msgEmptyInput)
	}
	if len(code) > s.cfg.MaxCodeLength {
		return nil, core.NewError(http.StatusBadRequest,
			fmt.Sprintf("Code is too long. Maximum allowed length is %d characters.", s.cfg.MaxCodeLength))
	}

	prompt, err := s.prompts.Build(code)
	if err != nil {
		return nil, core.WrapError(err, http.StatusInternalServerError, msgUpstreamFailed)
	}

	// One deadline covers the initial attempt and any parse retries; a
	// retried request never waits longer than a clean one.
	ctx, cancel := context.WithTimeout(ctx, s.cfg.AITimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= s.cfg.AIParseRetries; attempt++ {
		raw, err := s.generateWithTimeout(ctx, prompt)
		if err != nil {
			return nil, s.mapUpstreamError(err)
		}

		out, err := llm.ParseReviewOutput(raw)
		if err == nil {
			return out, nil
		}

		lastErr = err
		s.logger.Warn("model returned malformed review output",
			"attempt", attempt+1,
			"max_attempts", s.cfg.AIParseRetries+1,
			"error", err,
		)
	}

	return nil, core.WrapError(lastErr, http.StatusInternalServerError, msgUpstreamFailed)
}

// generateWithTimeout races the model call against the request deadline.
// The call runs in its own goroutine with a buffered result channel, so a
// late upstream response after the timer wins is discarded rather than
// leaked; context cancellation gives the client a chance to abort early.
func (s *Service) generateWithTimeout(ctx context.Context, prompt string) (string, error) {
	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := s.client.Generate(ctx, prompt)
		select {
		case resultCh <- result{resp, err}:
		case <-ctx.Done():
			// Do not block the goroutine if the caller already gave up.
		}
	}()

	select {
	case res := <-resultCh:
		return res.resp, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// mapUpstreamError translates a model-client failure into the user-facing
// taxonomy.
func (s *Service) mapUpstreamError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("AI request timed out", "timeout", s.cfg.AITimeout)
		return core.WrapError(err, http.StatusGatewayTimeout, msgTimeout)
	case llm.IsQuotaError(err):
		s.logger.Warn("upstream quota exhausted", "error", err)
		return core.WrapError(err, http.StatusTooManyRequests, msgQuotaExceeded)
	default:
		s.logger.Error("AI request failed", "error", err)
		return core.WrapError(err, http.StatusInternalServerError, msgUpstreamFailed)
	}
}

// Timeout exposes the configured upstream deadline, mainly for CLI output.
func (s *Service) Timeout() time.Duration { return s.cfg.AITimeout }
