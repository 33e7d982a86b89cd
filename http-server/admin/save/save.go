package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/request"
	"budget-api/internal/lib/api/response"
	"budget-api/internal/service"
	"budget-api/internal/storage"
)

type CompanyCreator interface {
	CreateCompany(ctx context.Context, in service.NewCompany) (*storage.Company, error)
}

type Request struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
}

// SaveCompanyAdmin registers a tenant. The returned id is what the gateway
// sends as X-Company-ID.
func SaveCompanyAdmin(log *slog.Logger, companies CompanyCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveCompanyAdmin"

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

		c, err := companies.CreateCompany(ctx, service.NewCompany{Name: req.Name, Email: req.Email})
		if err != nil {
			response.Fail(w, r, log, "failed to create company", err)
			return
		}

		log.Info("company created", slog.String("company_id", c.ID))

		response.OK(w, r, http.StatusCreated, c)
	}
}
