// Package config loads the server and CLI settings: HTTP server options, the
// language model provider and its retry policy, and the per-client rate
// limit. Values come from defaults, an optional YAML file, a dotenv file and
// RECRUITER_* environment variables, and are validated with struct tags.
package config
