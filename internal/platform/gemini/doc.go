// Package gemini provides an implementation of the generation.Completer
// interface backed by Google's Gemini API through the google.golang.org/genai
// client library.
//
// This package is an infrastructure adapter: it translates the
// provider-neutral chat request (system prompt, user prompt, temperature)
// into a Gemini GenerateContent call and translates Gemini API errors into
// the generation error taxonomy. It performs exactly one call per Complete;
// timeouts, retries and JSON extraction are handled by the generation client.
package gemini
