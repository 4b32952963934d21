package generation

import (
	"context"
	"encoding/json"
)

// Request is one logical generation call: a system/user prompt pair and
// whether the caller wants a structured value extracted from the reply.
type Request struct {
	SystemPrompt     string
	UserPrompt       string
	ExpectStructured bool
}

// Result carries the raw model output. Structured is nil when extraction was
// not requested or did not find a JSON value; callers decide what absence means.
type Result struct {
	RawText    string
	Structured json.RawMessage
}

// Generator is the boundary between request handling and remote generation.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Message is a single chat message sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles understood by every provider adapter.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatRequest is the provider-neutral shape of one completion attempt.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
}

// Completer performs exactly one completion attempt and returns the generated
// text. Implementations must return *UpstreamError for non-success statuses and
// must release every resource they acquire before returning.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
