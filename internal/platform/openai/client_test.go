package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/recruiter-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatRequest() generation.ChatRequest {
	return generation.ChatRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		Messages: []generation.Message{
			{Role: generation.RoleSystem, Content: "You are an expert recruiter."},
			{Role: generation.RoleUser, Content: "Create a posting."},
		},
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	_, err := NewClient("", "  ")
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	c, err := NewClient("", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, "openai", c.Name())

	c, err = NewClient("http://localhost:1234/v1/", "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1234/v1", c.baseURL)
}

func TestComplete_Success(t *testing.T) {
	t.Parallel()

	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<h2>Role</h2>"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/v1", "sk-test", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	text, err := c.Complete(context.Background(), chatRequest())
	require.NoError(t, err)
	assert.Equal(t, "<h2>Role</h2>", text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestComplete_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}` + "\n"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk-bad", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), chatRequest())
	var upstream *generation.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Equal(t, `{"error":{"message":"Incorrect API key provided"}}`, upstream.Body)
	assert.True(t, upstream.IsCredentialFailure())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

// truncatedResponse returns a response whose body fails after a partial read.
func truncatedResponse(status int, partial string) *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     make(http.Header),
			Body:       io.NopCloser(io.MultiReader(strings.NewReader(partial), failingReader{})),
			Request:    r,
		}, nil
	})}
}

func TestComplete_StatusSurvivesBodyReadFailure(t *testing.T) {
	t.Parallel()

	c, err := NewClient("https://api.example.com/v1", "sk-bad",
		WithHTTPClient(truncatedResponse(http.StatusUnauthorized, `{"error":"Incorrect`)))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), chatRequest())
	var upstream *generation.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Equal(t, `{"error":"Incorrect`, upstream.Body)
	assert.True(t, upstream.IsCredentialFailure())

	// A failed read on a success status is still an error, not empty content.
	c, err = NewClient("https://api.example.com/v1", "sk-test",
		WithHTTPClient(truncatedResponse(http.StatusOK, `{"choices":`)))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), chatRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read response")
}

func TestComplete_InvalidBodies(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"not_json":   `<html>gateway</html>`,
		"no_choices": `{"choices":[]}`,
	}
	for name, body := range bodies {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL, "sk-test", WithHTTPClient(srv.Client()))
			require.NoError(t, err)

			_, err = c.Complete(context.Background(), chatRequest())
			assert.ErrorIs(t, err, generation.ErrInvalidResponse)
		})
	}
}

func TestComplete_DeadlineCancelsRequest(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(srv.URL, "sk-test", WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Complete(ctx, chatRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestComplete_ThroughGenerationClientRetriesConnectionFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, "sk-test")
	require.NoError(t, err)

	var delays []time.Duration
	gen, err := generation.NewClient(c, generation.Config{Model: "gpt-4o-mini"}, discardLogger(),
		generation.WithSleeper(func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), generation.Request{SystemPrompt: "s", UserPrompt: "u"})
	var exhausted *generation.ExhaustedRetriesError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}
