package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/storage"
)

type BudgetProvider interface {
	GetBudget(ctx context.Context, companyID, id string) (*storage.Budget, error)
	ListBudgets(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]storage.Budget, error)
}

// GetBudgets lists the company's budgets without items. Supports the status
// and template_id query filters.
func GetBudgets(log *slog.Logger, budgets BudgetProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.GetBudgets"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		filter := storage.BudgetFilter{
			Status:     storage.BudgetStatus(r.URL.Query().Get("status")),
			TemplateID: r.URL.Query().Get("template_id"),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := budgets.ListBudgets(ctx, tenant.CompanyID(r.Context()), filter)
		if err != nil {
			response.Fail(w, r, log, "failed to list budgets", err)
			return
		}
		if list == nil {
			list = []storage.Budget{}
		}

		response.OK(w, r, http.StatusOK, list)
	}
}

func GetBudget(log *slog.Logger, budgets BudgetProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.GetBudget"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("budget_id", id),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		b, err := budgets.GetBudget(ctx, tenant.CompanyID(r.Context()), id)
		if err != nil {
			response.Fail(w, r, log, "failed to fetch budget", err)
			return
		}

		response.OK(w, r, http.StatusOK, b)
	}
}
