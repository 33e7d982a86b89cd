package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/response"
	"budget-api/internal/storage"
)

type CompanyLister interface {
	ListCompanies(ctx context.Context) ([]storage.Company, error)
}

func GetCompaniesAdmin(log *slog.Logger, companies CompanyLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetCompaniesAdmin"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := companies.ListCompanies(ctx)
		if err != nil {
			response.Fail(w, r, log, "failed to list companies", err)
			return
		}
		if list == nil {
			list = []storage.Company{}
		}

		response.OK(w, r, http.StatusOK, list)
	}
}
