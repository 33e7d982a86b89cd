package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"budget-api/internal/lib/api/response"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/storage"
)

type ReportGenerator interface {
	GenerateExcel(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]byte, error)
}

const dateLayout = "2006-01-02"

// GenerateBudgetsReport streams an XLSX of the company's budgets. Optional
// query parameters: status, template_id, from and to (inclusive, YYYY-MM-DD).
func GenerateBudgetsReport(log *slog.Logger, gen ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GenerateBudgetsReport"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		filter := storage.BudgetFilter{
			Status:     storage.BudgetStatus(q.Get("status")),
			TemplateID: q.Get("template_id"),
		}
		if filter.Status != "" && !filter.Status.Valid() {
			response.Error(w, r, http.StatusBadRequest, "invalid budget status")
			return
		}

		if from := q.Get("from"); from != "" {
			d, err := time.Parse(dateLayout, from)
			if err != nil {
				response.Error(w, r, http.StatusBadRequest, "invalid from date")
				return
			}
			filter.From = d
		}
		if to := q.Get("to"); to != "" {
			d, err := time.Parse(dateLayout, to)
			if err != nil {
				response.Error(w, r, http.StatusBadRequest, "invalid to date")
				return
			}
			filter.To = d.AddDate(0, 0, 1)
		}

		// Excel takes longer than a JSON reply
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		data, err := gen.GenerateExcel(ctx, tenant.CompanyID(r.Context()), filter)
		if err != nil {
			response.Fail(w, r, log, "failed to generate excel", err)
			return
		}

		fileName := fmt.Sprintf("orcamentos_%s.xlsx", time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		if _, err := w.Write(data); err != nil {
			log.Warn("failed to write report", slog.String("error", err.Error()))
		}
	}
}
