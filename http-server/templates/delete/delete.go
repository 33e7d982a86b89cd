package delete

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
)

type TemplateDeleter interface {
	DeleteTemplate(ctx context.Context, companyID, id string) error
}

func DeleteTemplate(log *slog.Logger, templates TemplateDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.DeleteTemplate"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("template_id", id),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := templates.DeleteTemplate(ctx, tenant.CompanyID(r.Context()), id); err != nil {
			response.Fail(w, r, log, "failed to delete template", err)
			return
		}

		log.Info("template deleted")

		response.OK(w, r, http.StatusOK, map[string]string{"id": id})
	}
}
