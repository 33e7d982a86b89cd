package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	getadmin "budget-api/http-server/admin/get"
	saveadmin "budget-api/http-server/admin/save"
	upadmin "budget-api/http-server/admin/update"
	calcbudget "budget-api/http-server/budgets/calculate"
	delbudget "budget-api/http-server/budgets/delete"
	getbudget "budget-api/http-server/budgets/get"
	savebudget "budget-api/http-server/budgets/save"
	upbudget "budget-api/http-server/budgets/update"
	getcompany "budget-api/http-server/companies/get"
	upcompany "budget-api/http-server/companies/update"
	generate_excel "budget-api/http-server/generate-report/generate-excel"
	deltemplate "budget-api/http-server/templates/delete"
	gettemplate "budget-api/http-server/templates/get"
	savetemplate "budget-api/http-server/templates/save"
	uptemplate "budget-api/http-server/templates/update"
	"budget-api/internal/config"
	"budget-api/internal/middleware/auth"
	"budget-api/internal/middleware/tenant"
	"budget-api/internal/service"
	excelsvc "budget-api/internal/service/generate-excel"
)

func routes(cfg config.Config, log *slog.Logger, svc *service.BudgetService, report *excelsvc.GenerateExcelService) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", tenant.Header},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api", func(api chi.Router) {
		api.Group(func(r chi.Router) {
			r.Use(tenant.Company(log))
			if cfg.HTTPServer.RequestTimeout > 0 {
				r.Use(middleware.Timeout(cfg.HTTPServer.RequestTimeout))
			}

			r.Post("/budgets/calculate", calcbudget.Calculate(log, svc))
			r.Get("/budgets", getbudget.GetBudgets(log, svc))
			r.Get("/budgets/{id}", getbudget.GetBudget(log, svc))
			r.Post("/budgets", savebudget.SaveBudget(log, svc))
			r.Put("/budgets/{id}", upbudget.UpdateBudget(log, svc))
			r.Patch("/budgets/{id}/status", upbudget.UpdateBudgetStatus(log, svc))
			r.Delete("/budgets/{id}", delbudget.DeleteBudget(log, svc))

			r.Get("/templates", gettemplate.GetTemplates(log, svc))
			r.Get("/templates/{id}", gettemplate.GetTemplate(log, svc))
			r.Post("/templates", savetemplate.SaveTemplate(log, svc))
			r.Put("/templates/{id}", uptemplate.UpdateTemplate(log, svc))
			r.Patch("/templates/{id}", uptemplate.SetTemplateActive(log, svc))
			r.Delete("/templates/{id}", deltemplate.DeleteTemplate(log, svc))

			r.Get("/companies/me", getcompany.GetCompany(log, svc))
			r.Get("/companies/stats", getcompany.GetCompanyStats(log, svc))
			r.Patch("/companies/settings", upcompany.UpdateSettings(log, svc))

			r.Get("/reports/budgets.xlsx", generate_excel.GenerateBudgetsReport(log, report))
		})

		adminRouter := chi.NewRouter()
		adminRouter.Use(auth.BasicAuth(cfg.Admin.Login, cfg.Admin.PassHash))

		adminRouter.Get("/companies", getadmin.GetCompaniesAdmin(log, svc))
		adminRouter.Post("/companies", saveadmin.SaveCompanyAdmin(log, svc))
		adminRouter.Patch("/companies/{id}/settings", upadmin.UpdateSettingsAdmin(log, svc))

		api.Mount("/admin", adminRouter)
	})

	return router
}
