package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/request"
	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/service"
	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

type TemplateUpdater interface {
	UpdateTemplate(ctx context.Context, companyID, id string, in service.TemplateInput) (*storage.Template, error)
	SetTemplateActive(ctx context.Context, companyID, id string, active bool) error
}

type Request struct {
	Name        string               `json:"name" validate:"required,max=255"`
	Description string               `json:"description"`
	IsActive    *bool                `json:"is_active"`
	Strategy    calculate.Strategy   `json:"strategy"`
	Categories  []calculate.Category `json:"categories" validate:"required_without=Fields"`
	Fields      []calculate.Field    `json:"fields"`
}

// UpdateTemplate replaces the template's definition. Existing budgets keep
// their stored amounts.
func UpdateTemplate(log *slog.Logger, templates TemplateUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.UpdateTemplate"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("template_id", id),
		)

		var req Request
		if err := request.Bind(w, r, &req); err != nil {
			log.Warn("invalid request", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		t, err := templates.UpdateTemplate(ctx, tenant.CompanyID(r.Context()), id, service.TemplateInput{
			Name:        req.Name,
			Description: req.Description,
			IsActive:    req.IsActive,
			Strategy:    req.Strategy,
			Categories:  req.Categories,
			Fields:      req.Fields,
		})
		if err != nil {
			response.Fail(w, r, log, "failed to update template", err)
			return
		}

		response.OK(w, r, http.StatusOK, t)
	}
}

type ActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func SetTemplateActive(log *slog.Logger, templates TemplateUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.SetTemplateActive"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("template_id", id),
		)

		var req ActiveRequest
		if err := request.Bind(w, r, &req); err != nil {
			log.Warn("invalid request", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := templates.SetTemplateActive(ctx, tenant.CompanyID(r.Context()), id, *req.IsActive); err != nil {
			response.Fail(w, r, log, "failed to change template state", err)
			return
		}

		response.OK(w, r, http.StatusOK, map[string]any{"id": id, "is_active": *req.IsActive})
	}
}
