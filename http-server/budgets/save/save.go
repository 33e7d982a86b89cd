package save

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
	"budget-api/internal/service"
	"budget-api/internal/storage"
)

type BudgetCreator interface {
	CreateBudget(ctx context.Context, companyID string, in service.NewBudget) (*storage.Budget, error)
}

type Request struct {
	TemplateID string          `json:"template_id" validate:"required"`
	Name       string          `json:"name" validate:"required,max=255"`
	ClientName string          `json:"client_name" validate:"max=255"`
	Notes      string          `json:"notes"`
	Items      json.RawMessage `json:"items" validate:"required"`
}

// SaveBudget calculates the submitted items and stores them as a new draft.
func SaveBudget(log *slog.Logger, budgets BudgetCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.SaveBudget"

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

		b, err := budgets.CreateBudget(ctx, tenant.CompanyID(r.Context()), service.NewBudget{
			TemplateID: req.TemplateID,
			Name:       req.Name,
			ClientName: req.ClientName,
			Notes:      req.Notes,
			Items:      req.Items,
		})
		if err != nil {
			response.Fail(w, r, log, "failed to save budget", err)
			return
		}

		log.Info("budget created", slog.String("budget_id", b.ID))

		response.OK(w, r, http.StatusCreated, b)
	}
}
