package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/phrazzld/recruiter-api/internal/metrics"
)

// Default policy values, used when a Config field is left at its zero value.
// Temperature has no default here: zero is a valid sampling temperature.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxAttempts    = 3
	DefaultBackoffBase    = time.Second
)

// Config controls the model and the retry policy of a Client.
type Config struct {
	Model          string
	Temperature    float64
	RequestTimeout time.Duration
	MaxAttempts    int
	BackoffBase    time.Duration
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	return c
}

// Client issues logical generation requests against a Completer. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	completer Completer
	config    Config
	logger    *slog.Logger
	sleep     Sleeper
	metrics   *metrics.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithSleeper replaces the delay primitive used between attempts.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithMetrics records attempt outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client for the given Completer.
func NewClient(completer Completer, cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if completer == nil {
		return nil, fmt.Errorf("%w: completer cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	c := &Client{
		completer: completer,
		config:    cfg.withDefaults(),
		logger:    logger,
		sleep:     TimerSleeper,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate performs one logical generation call.
//
// Each attempt runs under its own deadline. Only transient failures are
// retried, sequentially, with a linear delay between attempts. Upstream
// rejections and invalid responses abort at once; cancellation of ctx aborts
// with the context error. When every attempt fails transiently the result is
// an *ExhaustedRetriesError wrapping the last cause.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	chat := ChatRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		Messages: []Message{
			{Role: RoleSystem, Content: req.SystemPrompt},
			{Role: RoleUser, Content: req.UserPrompt},
		},
	}

	state := newRetryState(c.config.MaxAttempts, c.config.BackoffBase)
	for state.begin() {
		c.logger.InfoContext(ctx, "Making generation call",
			"provider", c.completer.Name(),
			"model", c.config.Model,
			"attempt", state.attempt,
			"max_attempts", state.maxAttempts)

		text, err := c.attempt(ctx, chat)
		if err == nil {
			c.metrics.ObserveAttempt(metrics.OutcomeSuccess)
			c.logger.InfoContext(ctx, "Generation call successful",
				"attempt", state.attempt,
				"response_length", len(text))
			return c.buildResult(ctx, text, req.ExpectStructured), nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) {
			c.metrics.ObserveAttempt(outcomeFor(err))
			c.logger.WarnContext(ctx, "Permanent error occurred, not retrying",
				"attempt", state.attempt,
				"error", err)
			return nil, err
		}

		c.metrics.ObserveAttempt(metrics.OutcomeTransient)
		delay, more := state.fail(err)
		if !more {
			break
		}

		c.logger.WarnContext(ctx, "Transient generation failure, retrying after delay",
			"attempt", state.attempt,
			"timeout", transient.Timeout,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		if err := c.sleep(ctx, delay); err != nil {
			c.logger.WarnContext(ctx, "Generation cancelled during retry delay",
				"attempt", state.attempt,
				"ctx_err", err)
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
	}

	c.logger.ErrorContext(ctx, "Maximum generation attempts reached",
		"attempts", state.attempt,
		"error", state.lastErr)
	return nil, &ExhaustedRetriesError{Attempts: state.attempt, LastCause: state.lastErr}
}

// attempt runs a single completion under the per-attempt deadline and
// classifies its failure. The deadline is released on every path.
func (c *Client) attempt(ctx context.Context, chat ChatRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	text, err := c.completer.Complete(attemptCtx, chat)
	if err != nil {
		return "", classify(ctx, attemptCtx, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}
	return text, nil
}

func (c *Client) buildResult(ctx context.Context, text string, expectStructured bool) *Result {
	result := &Result{RawText: text}
	if !expectStructured {
		return result
	}
	if raw, ok := Extract(text); ok {
		result.Structured = raw
	} else {
		c.logger.WarnContext(ctx, "No structured value found in model output",
			"response_length", len(text))
	}
	return result
}

// classify maps a raw attempt failure onto the error taxonomy.
func classify(parent, attemptCtx context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("generation cancelled: %w", parent.Err())
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) || errors.Is(err, ErrInvalidResponse) {
		return err
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return err
	}

	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Cause: err, Timeout: true}
	}

	if network, timeout := isNetworkError(err); network {
		return &TransientError{Cause: err, Timeout: timeout}
	}
	return err
}

// isNetworkError reports whether err is a DNS, socket or timeout failure, and
// whether it was a timeout.
func isNetworkError(err error) (network bool, timeout bool) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true, true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true, false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true, false
	}
	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF):
		return true, false
	}
	return false, false
}

func outcomeFor(err error) string {
	var upstream *UpstreamError
	switch {
	case errors.As(err, &upstream):
		return metrics.OutcomeUpstream
	case errors.Is(err, ErrInvalidResponse):
		return metrics.OutcomeInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeInvalid
	}
}
