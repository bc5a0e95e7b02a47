package assistant

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/docket/internal/cases"
	"github.com/JaimeStill/docket/pkg/handlers"
	"github.com/JaimeStill/docket/pkg/routes"
)

var (
	analyzeFields = []string{"fileBase64", "mimeType", "clientMessage"}
	chatFields    = []string{"question", "fileBase64", "mimeType"}
)

// Handler serves the analysis and chat endpoints.
type Handler struct {
	sys         System
	logger      *slog.Logger
	validate    *validator.Validate
	maxBodySize int64
}

func NewHandler(sys System, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "assistant"),
		validate:    validator.New(),
		maxBodySize: maxBodySize,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/analyze", Handler: h.Analyze},
			{Method: "POST", Pattern: "/chat", Handler: h.Chat},
		},
	}
}

// Analyze returns the structured analysis of a document and client message.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req cases.AnalyzeRequest
	if err := h.decode(w, r, &req, analyzeFields); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	analysis, err := h.sys.Analyze(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, analysis)
}

// Chat answers a question about a document, given the prior turns and
// optionally the case analysis.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req cases.ChatRequest
	if err := h.decode(w, r, &req, chatFields); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	text, err := h.sys.Chat(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cases.ChatResponse{Response: text})
}

// decode reads the body, reports the first absent required field by name,
// then decodes and validates dst.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, required []string) error {
	body := r.Body
	if h.maxBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return cases.ErrDocumentTooLarge
		}
		return errors.Mark(err, ErrInvalidRequest)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return errors.Mark(errors.New("request body must be a JSON object"), ErrInvalidRequest)
	}
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			return missingField(name)
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Mark(errors.Wrap(err, "decode request"), ErrInvalidRequest)
	}
	if err := h.validate.Struct(dst); err != nil {
		return errors.Mark(err, ErrInvalidRequest)
	}
	return nil
}
