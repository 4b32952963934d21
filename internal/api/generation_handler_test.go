package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/phrazzld/recruiter-api/internal/api/shared"
	"github.com/phrazzld/recruiter-api/internal/generation"
	"github.com/phrazzld/recruiter-api/internal/service/recruiting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRecruitingService is a mock implementation of recruiting.Service.
type MockRecruitingService struct {
	GeneratePostingFn func(ctx context.Context, in recruiting.PostingInput) (string, error)
	GenerateKitFn     func(ctx context.Context, in recruiting.KitInput) (*recruiting.Kit, error)
	GenerateBundleFn  func(ctx context.Context, p recruiting.PostingInput, k recruiting.KitInput) *recruiting.BundleResult
}

func (m *MockRecruitingService) GeneratePosting(ctx context.Context, in recruiting.PostingInput) (string, error) {
	if m.GeneratePostingFn != nil {
		return m.GeneratePostingFn(ctx, in)
	}
	return "", nil
}

func (m *MockRecruitingService) GenerateKit(ctx context.Context, in recruiting.KitInput) (*recruiting.Kit, error) {
	if m.GenerateKitFn != nil {
		return m.GenerateKitFn(ctx, in)
	}
	return recruiting.EmptyKit(), nil
}

func (m *MockRecruitingService) GenerateBundle(
	ctx context.Context,
	p recruiting.PostingInput,
	k recruiting.KitInput,
) *recruiting.BundleResult {
	if m.GenerateBundleFn != nil {
		return m.GenerateBundleFn(ctx, p, k)
	}
	return &recruiting.BundleResult{Kit: recruiting.EmptyKit()}
}

// countingGenerator counts calls and returns a fixed result.
type countingGenerator struct {
	calls  atomic.Int32
	result *generation.Result
	err    error
}

func (g *countingGenerator) Generate(_ context.Context, _ generation.Request) (*generation.Result, error) {
	g.calls.Add(1)
	return g.result, g.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/test", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r = r.WithContext(shared.WithTraceID(r.Context(), "trace-1"))
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGenerationHandler_GeneratePosting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedCat    string
		expectedDetail []string
	}{
		{
			name:           "success",
			body:           `{"title":"Backend Engineer","mustHaveSkills":["Go"]}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed body",
			body:           `{"title":`,
			expectedStatus: http.StatusBadRequest,
			expectedCat:    CategoryValidation,
		},
		{
			name:           "missing title",
			body:           `{"team":"Platform"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCat:    CategoryValidation,
			expectedDetail: []string{"Job title is required"},
		},
		{
			name:           "list field not an array",
			body:           `{"title":"SRE","mustHaveSkills":"Go, Rust"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCat:    CategoryValidation,
			expectedDetail: []string{"mustHaveSkills must be an array of strings"},
		},
		{
			name: "timeout after retries",
			body: `{"title":"SRE"}`,
			serviceErr: &generation.ExhaustedRetriesError{
				Attempts:  3,
				LastCause: &generation.TransientError{Cause: context.DeadlineExceeded, Timeout: true},
			},
			expectedStatus: http.StatusGatewayTimeout,
			expectedCat:    CategoryTimeout,
		},
		{
			name:           "upstream rejection",
			body:           `{"title":"SRE"}`,
			serviceErr:     generation.NewUpstreamError("openai", 500, []byte("internal")),
			expectedStatus: http.StatusBadGateway,
			expectedCat:    CategoryUpstreamRejected,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var called atomic.Int32
			svc := &MockRecruitingService{
				GeneratePostingFn: func(_ context.Context, in recruiting.PostingInput) (string, error) {
					called.Add(1)
					if tt.serviceErr != nil {
						return "", tt.serviceErr
					}
					return "<h2>" + in.Title + "</h2>", nil
				},
			}
			h := NewGenerationHandler(svc, discardLogger())

			w := doRequest(t, h.GeneratePosting, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				assert.JSONEq(t, `{"ok":true,"html":"<h2>Backend Engineer</h2>"}`, w.Body.String())
				return
			}

			resp := decodeError(t, w)
			assert.Equal(t, tt.expectedCat, resp.Category)
			assert.Equal(t, "trace-1", resp.TraceID)
			if tt.expectedDetail != nil {
				assert.Equal(t, tt.expectedDetail, resp.Details)
			}
			if tt.expectedCat == CategoryValidation {
				assert.Zero(t, called.Load(), "service must not be called for invalid input")
			}
		})
	}
}

func TestGenerationHandler_ValidationPrecedesOutboundCall(t *testing.T) {
	t.Parallel()

	gen := &countingGenerator{result: &generation.Result{RawText: "<p>x</p>"}}
	svc, err := recruiting.NewService(gen, recruiting.DefaultPrompts(), discardLogger(), nil)
	require.NoError(t, err)
	h := NewGenerationHandler(svc, discardLogger())

	for _, body := range []string{
		`{}`,
		`{"title":"   "}`,
		`{"title":"` + strings.Repeat("x", 201) + `"}`,
		`{"title":"SRE","location":"` + strings.Repeat("l", 101) + `"}`,
	} {
		w := doRequest(t, h.GeneratePosting, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	w := doRequest(t, h.GenerateKit, `{"seniority":"Senior"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Role title is required"}, decodeError(t, w).Details)

	assert.Zero(t, gen.calls.Load())

	w = doRequest(t, h.GeneratePosting, `{"title":"SRE"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestGenerationHandler_GenerateKit(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := &MockRecruitingService{
			GenerateKitFn: func(_ context.Context, in recruiting.KitInput) (*recruiting.Kit, error) {
				kit := recruiting.EmptyKit()
				kit.Technical = []recruiting.QA{{Q: "Explain channels", A: "Typed conduits."}}
				return kit, nil
			},
		}
		w := doRequest(t, NewGenerationHandler(svc, discardLogger()).GenerateKit, `{"roleTitle":"Go Engineer"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"kit":{"technical":[{"q":"Explain channels","a":"Typed conduits."}],"behavioral":[],"scenario":[]}}`,
			w.Body.String())
	})

	t.Run("unparseable output yields empty kit", func(t *testing.T) {
		t.Parallel()
		gen := &countingGenerator{result: &generation.Result{RawText: "no json here"}}
		svc, err := recruiting.NewService(gen, recruiting.DefaultPrompts(), discardLogger(), nil)
		require.NoError(t, err)

		w := doRequest(t, NewGenerationHandler(svc, discardLogger()).GenerateKit, `{"roleTitle":"SRE"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"kit":{"technical":[],"behavioral":[],"scenario":[]}}`, w.Body.String())
	})

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		svc, err := recruiting.NewService(nil, recruiting.DefaultPrompts(), discardLogger(), nil)
		require.NoError(t, err)

		w := doRequest(t, NewGenerationHandler(svc, discardLogger()).GenerateKit, `{"roleTitle":"SRE"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, CategoryMisconfigured, decodeError(t, w).Category)
	})
}

func TestGenerationHandler_DebugErrors(t *testing.T) {
	t.Parallel()

	upstream := generation.NewUpstreamError("openai", 401,
		[]byte(`{"error":{"message":"Incorrect API key provided: sk-abcdefghijklmnopqrstuvwxyz"}}`))
	svc := &MockRecruitingService{
		GeneratePostingFn: func(_ context.Context, _ recruiting.PostingInput) (string, error) {
			return "", upstream
		},
	}

	w := doRequest(t, NewGenerationHandler(svc, discardLogger()).GeneratePosting, `{"title":"SRE"}`)
	resp := decodeError(t, w)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, CategoryMisconfigured, resp.Category)
	assert.Empty(t, resp.Detail)

	w = doRequest(t, NewGenerationHandler(svc, discardLogger(), WithDebugErrors(true)).GeneratePosting, `{"title":"SRE"}`)
	resp = decodeError(t, w)
	assert.Contains(t, resp.Detail, "401")
	assert.NotContains(t, w.Body.String(), "sk-abcdefghijklmnopqrstuvwxyz")
}

func TestGenerationHandler_GenerateBundle(t *testing.T) {
	t.Parallel()

	t.Run("partial success", func(t *testing.T) {
		t.Parallel()
		svc := &MockRecruitingService{
			GenerateBundleFn: func(_ context.Context, p recruiting.PostingInput, k recruiting.KitInput) *recruiting.BundleResult {
				assert.Equal(t, "SRE", p.Title)
				assert.Equal(t, "Senior", k.Seniority)
				return &recruiting.BundleResult{
					PostingErr: &generation.ExhaustedRetriesError{
						Attempts:  3,
						LastCause: &generation.TransientError{Cause: errors.New("connection refused")},
					},
					Kit: recruiting.EmptyKit(),
				}
			},
		}
		body := `{"posting":{"title":"SRE"},"kit":{"roleTitle":"SRE","seniority":"Senior"}}`
		w := doRequest(t, NewGenerationHandler(svc, discardLogger()).GenerateBundle, body)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Posting shared.ErrorResponse `json:"posting"`
			Kit     KitResponse          `json:"kit"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, CategoryUnavailable, resp.Posting.Category)
		require.NotNil(t, resp.Kit.Kit)
		assert.Empty(t, resp.Kit.Kit.Technical)
	})

	t.Run("both fail", func(t *testing.T) {
		t.Parallel()
		svc := &MockRecruitingService{
			GenerateBundleFn: func(_ context.Context, _ recruiting.PostingInput, _ recruiting.KitInput) *recruiting.BundleResult {
				return &recruiting.BundleResult{
					PostingErr: generation.NewUpstreamError("openai", 429, []byte("slow down")),
					KitErr:     generation.ErrInvalidResponse,
				}
			},
		}
		body := `{"posting":{"title":"SRE"},"kit":{"roleTitle":"SRE"}}`
		w := doRequest(t, NewGenerationHandler(svc, discardLogger()).GenerateBundle, body)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), CategoryUpstreamRejected)
	})

	t.Run("validation covers both halves", func(t *testing.T) {
		t.Parallel()
		svc := &MockRecruitingService{
			GenerateBundleFn: func(_ context.Context, _ recruiting.PostingInput, _ recruiting.KitInput) *recruiting.BundleResult {
				t.Error("service must not be called")
				return nil
			},
		}
		w := doRequest(t, NewGenerationHandler(svc, discardLogger()).GenerateBundle, `{"posting":{},"kit":{}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"Job title is required", "Role title is required"}, decodeError(t, w).Details)
	})
}

func TestGenerationHandler_LargeBodyRejected(t *testing.T) {
	t.Parallel()

	svc := &MockRecruitingService{}
	body := bytes.Repeat([]byte("a"), shared.MaxBodyBytes+10)
	payload := `{"title":"` + string(body) + `"}`

	w := doRequest(t, NewGenerationHandler(svc, discardLogger()).GeneratePosting, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidFormat, decodeError(t, w).Error)
}
