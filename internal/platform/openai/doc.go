// Package openai implements generation.Completer against any endpoint that
// speaks the OpenAI chat-completions protocol. Each call is exactly one HTTP
// round trip; retries belong to the generation client.
package openai
