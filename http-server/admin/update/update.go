package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"budget-api/internal/lib/api/request"
	"budget-api/internal/lib/api/response"
	"budget-api/internal/service"
	"budget-api/internal/storage"
)

type SettingsUpdater interface {
	UpdateSettings(ctx context.Context, id string, in service.SettingsInput) (*storage.Company, error)
}

type Request struct {
	Currency     *string          `json:"currency" validate:"omitempty,len=3,alpha"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	ProfitMargin *decimal.Decimal `json:"profit_margin"`
}

// UpdateSettingsAdmin changes the policy of any company.
func UpdateSettingsAdmin(log *slog.Logger, companies SettingsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateSettingsAdmin"

		id := chi.URLParam(r, "id")
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("company_id", id),
		)

		var req Request
		if err := request.Bind(w, r, &req); err != nil {
			log.Warn("invalid request", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		c, err := companies.UpdateSettings(ctx, id, service.SettingsInput{
			Currency:     req.Currency,
			TaxRate:      req.TaxRate,
			ProfitMargin: req.ProfitMargin,
		})
		if err != nil {
			response.Fail(w, r, log, "failed to update company settings", err)
			return
		}

		response.OK(w, r, http.StatusOK, c)
	}
}
