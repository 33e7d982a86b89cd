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

type BudgetDeleter interface {
	DeleteBudget(ctx context.Context, companyID, id string) error
}

func DeleteBudget(log *slog.Logger, budgets BudgetDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.DeleteBudget"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("budget_id", id),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := budgets.DeleteBudget(ctx, tenant.CompanyID(r.Context()), id); err != nil {
			response.Fail(w, r, log, "failed to delete budget", err)
			return
		}

		log.Info("budget deleted")

		response.OK(w, r, http.StatusOK, map[string]string{"id": id})
	}
}
