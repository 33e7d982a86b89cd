package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/request"
	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/service"
	"budget-api/internal/storage"
)

type BudgetUpdater interface {
	UpdateBudget(ctx context.Context, companyID, id string, in service.BudgetUpdate) (*storage.Budget, error)
	UpdateBudgetStatus(ctx context.Context, companyID, id string, status storage.BudgetStatus) (*storage.Budget, error)
}

type Request struct {
	Name       string          `json:"name" validate:"required,max=255"`
	ClientName string          `json:"client_name" validate:"max=255"`
	Notes      string          `json:"notes"`
	Items      json.RawMessage `json:"items" validate:"required"`
}

// UpdateBudget recalculates an open budget from the submitted items.
func UpdateBudget(log *slog.Logger, budgets BudgetUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.UpdateBudget"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("budget_id", id),
		)

		var req Request
		if err := request.Bind(w, r, &req); err != nil {
			log.Warn("invalid request", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		b, err := budgets.UpdateBudget(ctx, tenant.CompanyID(r.Context()), id, service.BudgetUpdate{
			Name:       req.Name,
			ClientName: req.ClientName,
			Notes:      req.Notes,
			Items:      req.Items,
		})
		if err != nil {
			response.Fail(w, r, log, "failed to update budget", err)
			return
		}

		response.OK(w, r, http.StatusOK, b)
	}
}

type StatusRequest struct {
	Status storage.BudgetStatus `json:"status" validate:"required,oneof=draft sent approved rejected"`
}

func UpdateBudgetStatus(log *slog.Logger, budgets BudgetUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.budgets.UpdateBudgetStatus"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("budget_id", id),
		)

		var req StatusRequest
		if err := request.Bind(w, r, &req); err != nil {
			log.Warn("invalid request", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		b, err := budgets.UpdateBudgetStatus(ctx, tenant.CompanyID(r.Context()), id, req.Status)
		if err != nil {
			response.Fail(w, r, log, "failed to update budget status", err)
			return
		}

		log.Info("budget status changed", slog.String("status", string(b.Status)))

		response.OK(w, r, http.StatusOK, b)
	}
}
