package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/storage"
)

type CompanyProvider interface {
	Company(ctx context.Context, id string) (*storage.Company, error)
	Stats(ctx context.Context, id string) (*storage.CompanyStats, error)
}

func GetCompany(log *slog.Logger, companies CompanyProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.companies.GetCompany"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		c, err := companies.Company(ctx, tenant.CompanyID(r.Context()))
		if err != nil {
			response.Fail(w, r, log, "failed to fetch company", err)
			return
		}

		response.OK(w, r, http.StatusOK, c)
	}
}

func GetCompanyStats(log *slog.Logger, companies CompanyProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.companies.GetCompanyStats"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stats, err := companies.Stats(ctx, tenant.CompanyID(r.Context()))
		if err != nil {
			response.Fail(w, r, log, "failed to fetch company stats", err)
			return
		}

		response.OK(w, r, http.StatusOK, stats)
	}
}
