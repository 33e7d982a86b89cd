package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/request"
	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/service"
	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

type TemplateCreator interface {
	CreateTemplate(ctx context.Context, companyID string, in service.TemplateInput) (*storage.Template, error)
}

// Request accepts either categories or the older flat fields list.
type Request struct {
	Name        string               `json:"name" validate:"required,max=255"`
	Description string               `json:"description"`
	IsActive    *bool                `json:"is_active"`
	Strategy    calculate.Strategy   `json:"strategy"`
	Categories  []calculate.Category `json:"categories" validate:"required_without=Fields"`
	Fields      []calculate.Field    `json:"fields"`
}

func SaveTemplate(log *slog.Logger, templates TemplateCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.templates.SaveTemplate"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := request.Bind(w, r, &req); err != nil {
			log.Warn("invalid request", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		t, err := templates.CreateTemplate(ctx, tenant.CompanyID(r.Context()), service.TemplateInput{
			Name:        req.Name,
			Description: req.Description,
			IsActive:    req.IsActive,
			Strategy:    req.Strategy,
			Categories:  req.Categories,
			Fields:      req.Fields,
		})
		if err != nil {
			response.Fail(w, r, log, "failed to create template", err)
			return
		}

		log.Info("template created", slog.String("template_id", t.ID))

		response.OK(w, r, http.StatusCreated, t)
	}
}
