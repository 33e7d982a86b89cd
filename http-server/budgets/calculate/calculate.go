package calculate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/request"
	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/service/calculate"
)

type Calculator interface {
	Calculate(ctx context.Context, companyID, templateID string, items json.RawMessage) (calculate.Response, error)
}

type Request struct {
	TemplateID string          `json:"template_id" validate:"required"`
	Items      json.RawMessage `json:"items" validate:"required"`
}

// Calculate prices the submitted items without persisting anything.
func Calculate(log *slog.Logger, calc Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.Calculate"

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

		resp, err := calc.Calculate(ctx, tenant.CompanyID(r.Context()), req.TemplateID, req.Items)
		if err != nil {
			response.Fail(w, r, log, "failed to calculate budget", err)
			return
		}

		response.OK(w, r, http.StatusOK, resp)
	}
}
