package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/docket/pkg/handlers"
	"github.com/JaimeStill/docket/pkg/routes"
)

// Handler exposes prompt overrides and the effective per-stage texts.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{sys: sys, logger: logger.With("handler", "prompts")}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.command(http.StatusCreated, func(ctx context.Context, _ uuid.UUID, cmd Command) (*Prompt, error) {
				return h.sys.Create(ctx, cmd)
			}, false)},
			{Method: "GET", Pattern: "/{id}", Handler: h.byID(h.sys.Find)},
			{Method: "PUT", Pattern: "/{id}", Handler: h.command(http.StatusOK, h.sys.Update, true)},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.byID(h.sys.Activate)},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.byID(h.sys.Deactivate)},
		},
		Children: []routes.Group{{
			Prefix: "/stages",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.Stages},
				{Method: "GET", Pattern: "/{stage}/instructions", Handler: h.stageText(h.sys.Instructions)},
				{Method: "GET", Pattern: "/{stage}/spec", Handler: h.stageText(h.sys.Spec)},
			},
		}},
	}
}

// List filters by ?stage=, ?name=, ?active= and ?search=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		h.fail(w, err)
		return
	}

	list, err := h.sys.List(r.Context(), filters)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) Stages(w http.ResponseWriter, _ *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("malformed prompt id: %w", err))
		return
	}
	if err := h.sys.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) byID(op func(context.Context, uuid.UUID) (*Prompt, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("malformed prompt id: %w", err))
			return
		}

		p, err := op(r.Context(), id)
		if err != nil {
			h.fail(w, err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, p)
	}
}

// command decodes a Command body. When withID is set the path id is parsed
// and passed along.
func (h *Handler) command(
	status int,
	op func(context.Context, uuid.UUID, Command) (*Prompt, error),
	withID bool,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id uuid.UUID
		if withID {
			var err error
			if id, err = uuid.Parse(r.PathValue("id")); err != nil {
				handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("malformed prompt id: %w", err))
				return
			}
		}

		var cmd Command
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}

		p, err := op(r.Context(), id, cmd)
		if err != nil {
			h.fail(w, err)
			return
		}
		handlers.RespondJSON(w, status, p)
	}
}

// stageText serves the effective text for the {stage} path value.
func (h *Handler) stageText(resolve func(context.Context, Stage) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, err := ParseStage(r.PathValue("stage"))
		if err != nil {
			h.fail(w, err)
			return
		}

		text, err := resolve(r.Context(), stage)
		if err != nil {
			h.fail(w, err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, StageContent{Stage: stage, Content: text})
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}
