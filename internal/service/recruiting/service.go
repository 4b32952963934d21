package recruiting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/recruiter-api/internal/generation"
	"github.com/phrazzld/recruiter-api/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Operation names, used in logs, errors and metrics.
const (
	OperationPosting = "posting"
	OperationKit     = "kit"
)

// Service generates recruiting content.
type Service interface {
	// GeneratePosting returns an HTML job posting for the input.
	GeneratePosting(ctx context.Context, in PostingInput) (string, error)

	// GenerateKit returns an interview kit for the input. A response that
	// holds no usable JSON yields an empty kit, not an error.
	GenerateKit(ctx context.Context, in KitInput) (*Kit, error)

	// GenerateBundle runs both operations concurrently. A failure of one
	// never cancels the other.
	GenerateBundle(ctx context.Context, posting PostingInput, kit KitInput) *BundleResult
}

// ServiceError wraps a failure of one operation with context.
type ServiceError struct {
	// Operation is the operation that failed ("posting" or "kit")
	Operation string
	// Message is a human-readable description of the failure
	Message string
	// Err is the underlying error
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s generation failed: %s: %v", e.Operation, e.Message, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err. Validation errors are returned unchanged.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr
	}
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

type serviceImpl struct {
	generator generation.Generator
	prompts   *Prompts
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService creates a Service. A nil generator is accepted: every
// generation then fails with generation.ErrNotConfigured, so the server can
// start and report the problem per request.
func NewService(
	generator generation.Generator,
	prompts *Prompts,
	logger *slog.Logger,
	m *metrics.Metrics,
) (Service, error) {
	if prompts == nil {
		return nil, errors.New("prompts cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &serviceImpl{
		generator: generator,
		prompts:   prompts,
		logger:    logger.With("component", "recruiting_service"),
		metrics:   m,
	}, nil
}

func (s *serviceImpl) GeneratePosting(ctx context.Context, in PostingInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	prompt, err := s.prompts.Posting(in)
	if err != nil {
		return "", NewServiceError(OperationPosting, "failed to render prompt", err)
	}

	res, err := s.generate(ctx, OperationPosting, generation.Request{
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
	})
	if err != nil {
		return "", NewServiceError(OperationPosting, "failed to generate posting", err)
	}
	return stripCodeFence(res.RawText), nil
}

func (s *serviceImpl) GenerateKit(ctx context.Context, in KitInput) (*Kit, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	prompt, err := s.prompts.Kit(in)
	if err != nil {
		return nil, NewServiceError(OperationKit, "failed to render prompt", err)
	}

	res, err := s.generate(ctx, OperationKit, generation.Request{
		SystemPrompt:     prompt.System,
		UserPrompt:       prompt.User,
		ExpectStructured: true,
	})
	if err != nil {
		return nil, NewServiceError(OperationKit, "failed to generate kit", err)
	}

	kit, ok := ShapeKit(res.Structured)
	if !ok {
		s.logger.WarnContext(ctx, "kit response held no usable JSON, returning empty kit",
			"role_title", in.RoleTitle,
			"response_length", len(res.RawText))
	}
	return kit, nil
}

func (s *serviceImpl) GenerateBundle(ctx context.Context, posting PostingInput, kit KitInput) *BundleResult {
	result := &BundleResult{}

	// A zero errgroup.Group shares no context, so one failure leaves the
	// other call running.
	var g errgroup.Group
	g.Go(func() error {
		result.Posting, result.PostingErr = s.GeneratePosting(ctx, posting)
		return result.PostingErr
	})
	g.Go(func() error {
		result.Kit, result.KitErr = s.GenerateKit(ctx, kit)
		return result.KitErr
	})
	if err := g.Wait(); err != nil {
		s.logger.InfoContext(ctx, "bundle completed with failures",
			"posting_ok", result.PostingErr == nil,
			"kit_ok", result.KitErr == nil)
	}
	return result
}

func (s *serviceImpl) generate(ctx context.Context, operation string, req generation.Request) (*generation.Result, error) {
	if s.generator == nil {
		return nil, generation.ErrNotConfigured
	}

	start := time.Now()
	res, err := s.generator.Generate(ctx, req)
	s.metrics.ObserveOperation(operation, err == nil, time.Since(start))
	return res, err
}

// ShapeKit converts extracted JSON into a Kit. Missing or malformed
// categories become empty lists and entries without a question are dropped.
// It reports false when raw is absent or is not a JSON object.
func ShapeKit(raw json.RawMessage) (*Kit, bool) {
	kit := EmptyKit()
	if len(raw) == 0 {
		return kit, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return kit, false
	}

	kit.Technical = shapeCategory(fields["technical"])
	kit.Behavioral = shapeCategory(fields["behavioral"])
	kit.Scenario = shapeCategory(fields["scenario"])
	return kit, true
}

func shapeCategory(raw json.RawMessage) []QA {
	out := []QA{}
	if len(raw) == 0 {
		return out
	}
	var items []QA
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		if strings.TrimSpace(item.Q) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// stripCodeFence removes a surrounding markdown fence, which models add
// despite being told not to.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	} else {
		return text
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
