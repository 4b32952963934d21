// Package generation provides the resilient client used to talk to remote
// LLM text-generation services. It owns the per-attempt deadline, the retry
// and backoff policy, the classification of failures into transient and
// upstream errors, and the best-effort extraction of JSON from free-form
// model output.
//
// The package does not speak any provider protocol itself. Provider adapters
// (see internal/platform/openai and internal/platform/gemini) implement the
// Completer interface and perform exactly one attempt per call; the Client
// decides whether and when another attempt is made.
package generation
