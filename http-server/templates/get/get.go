package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/storage"
)

type TemplateProvider interface {
	GetTemplate(ctx context.Context, companyID, id string) (*storage.Template, error)
	ListTemplates(ctx context.Context, companyID string, activeOnly bool) ([]storage.TemplateSummary, error)
}

// GetTemplates lists the company's templates. ?active=true hides inactive ones.
func GetTemplates(log *slog.Logger, templates TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.GetTemplates"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var activeOnly bool
		if raw := r.URL.Query().Get("active"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				response.Error(w, r, http.StatusBadRequest, "query parameter 'active' must be a boolean")
				return
			}
			activeOnly = v
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := templates.ListTemplates(ctx, tenant.CompanyID(r.Context()), activeOnly)
		if err != nil {
			response.Fail(w, r, log, "failed to fetch templates", err)
			return
		}
		if list == nil {
			list = []storage.TemplateSummary{}
		}

		response.OK(w, r, http.StatusOK, list)
	}
}

func GetTemplate(log *slog.Logger, templates TemplateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.GetTemplate"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("template_id", id),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		t, err := templates.GetTemplate(ctx, tenant.CompanyID(r.Context()), id)
		if err != nil {
			response.Fail(w, r, log, "failed to fetch template", err)
			return
		}

		response.OK(w, r, http.StatusOK, t)
	}
}
