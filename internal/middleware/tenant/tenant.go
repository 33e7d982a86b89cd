package tenant

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"budget-api/internal/lib/api/response"
)

// Header carries the company id resolved by the upstream auth gateway.
const Header = "X-Company-ID"

type ctxKey struct{}

// Company rejects requests without a valid company id and stores it in the
// request context.
func Company(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(Header)
			if raw == "" {
				response.Error(w, r, http.StatusUnauthorized, "missing company id")
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				log.With(
					slog.String("op", "middleware.tenant.Company"),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				).Warn("invalid company id", slog.String("value", raw))
				response.Error(w, r, http.StatusUnauthorized, "invalid company id")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCompanyID(r.Context(), id.String())))
		})
	}
}

func WithCompanyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// CompanyID returns the company id stored by Company, or "" outside of it.
func CompanyID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
