package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/recruiter-api/internal/api/shared"
	"github.com/phrazzld/recruiter-api/internal/platform/logger"
	"github.com/phrazzld/recruiter-api/internal/redact"
	"github.com/phrazzld/recruiter-api/internal/service/recruiting"
)

// GenerationHandler serves the generation endpoints.
type GenerationHandler struct {
	service     recruiting.Service
	logger      *slog.Logger
	debugErrors bool
}

// HandlerOption customizes a GenerationHandler.
type HandlerOption func(*GenerationHandler)

// WithDebugErrors includes the redacted error text in error responses.
func WithDebugErrors(enabled bool) HandlerOption {
	return func(h *GenerationHandler) {
		h.debugErrors = enabled
	}
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(svc recruiting.Service, log *slog.Logger, opts ...HandlerOption) *GenerationHandler {
	if log == nil {
		log = slog.Default()
	}
	h := &GenerationHandler{
		service: svc,
		logger:  log.With("component", "generation_handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GeneratePosting handles POST /api/generate-posting requests.
func (h *GenerationHandler) GeneratePosting(w http.ResponseWriter, r *http.Request) {
	var req PostingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	html, err := h.service.GeneratePosting(r.Context(), req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, h.debugErrors)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PostingResponse{OK: true, HTML: html})
}

// GenerateKit handles POST /api/generate-kit requests.
func (h *GenerationHandler) GenerateKit(w http.ResponseWriter, r *http.Request) {
	var req KitRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	kit, err := h.service.GenerateKit(r.Context(), req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, h.debugErrors)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, KitResponse{Kit: kit})
}

// GenerateBundle handles POST /api/generate-bundle requests. Both halves are
// validated up front; the response is 200 when at least one half succeeded.
func (h *GenerationHandler) GenerateBundle(w http.ResponseWriter, r *http.Request) {
	var req BundleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, h.debugErrors)
		return
	}

	var details []string
	for _, part := range []interface{}{req.Posting, req.Kit} {
		if err := shared.ValidateRequest(part); err != nil {
			details = append(details, ValidationDetails(err)...)
		}
	}
	if len(details) > 0 {
		HandleAPIError(w, r, recruiting.NewValidationError(details...), h.debugErrors)
		return
	}

	res := h.service.GenerateBundle(r.Context(), req.Posting.ToInput(), req.Kit.ToInput())

	resp := BundleResponse{}
	if res.PostingErr != nil {
		h.logPartFailure(r, recruiting.OperationPosting, res.PostingErr)
		resp.Posting = errorBody(r, res.PostingErr, h.debugErrors)
	} else {
		resp.Posting = PostingResponse{OK: true, HTML: res.Posting}
	}
	if res.KitErr != nil {
		h.logPartFailure(r, recruiting.OperationKit, res.KitErr)
		resp.Kit = errorBody(r, res.KitErr, h.debugErrors)
	} else {
		resp.Kit = KitResponse{Kit: res.Kit}
	}

	status := http.StatusOK
	if !res.OK() {
		status = MapErrorToStatusCode(res.PostingErr)
	}
	shared.RespondWithJSON(w, r, status, resp)
}

// decodeAndValidate decodes the body into req and validates it, writing the
// error response itself on failure.
func (h *GenerationHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		HandleAPIError(w, r, err, h.debugErrors)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, h.debugErrors)
		return false
	}
	return true
}

func (h *GenerationHandler) logPartFailure(r *http.Request, operation string, err error) {
	m := mapError(err)
	logger.FromContextOrDefault(r.Context(), h.logger).Log(r.Context(),
		shared.LogLevelForStatus(m.status, false),
		"bundle part failed",
		slog.String("operation", operation),
		slog.Int("status_code", m.status),
		slog.String("category", m.category),
		slog.String("error", redact.Error(err)))
}
