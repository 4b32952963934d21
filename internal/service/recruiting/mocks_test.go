package recruiting

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/phrazzld/recruiter-api/internal/generation"
)

// mockGenerator is a function-field mock of generation.Generator that
// records every request.
type mockGenerator struct {
	GenerateFn func(ctx context.Context, req generation.Request) (*generation.Result, error)

	mu       sync.Mutex
	requests []generation.Request
}

func (m *mockGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.GenerateFn(ctx, req)
}

func (m *mockGenerator) calls() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.requests...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t interface{ Fatalf(string, ...any) }, gen generation.Generator) Service {
	svc, err := NewService(gen, DefaultPrompts(), discardLogger(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}
