package storage

import (
	"time"

	"budget-api/internal/service/calculate"
)

type Company struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Settings  CompanySettings `json:"settings"`
	CreatedAt time.Time       `json:"created_at"`
}

// CompanySettings is the financial policy applied to every budget of a company.
type CompanySettings struct {
	Currency     string          `json:"currency"`
	TaxRate      calculate.Ratio `json:"tax_rate"`
	ProfitMargin calculate.Ratio `json:"profit_margin"`
}

type CompanyStats struct {
	TotalTemplates   int             `json:"total_templates"`
	ActiveTemplates  int             `json:"active_templates"`
	TotalBudgets     int             `json:"total_budgets"`
	DraftBudgets     int             `json:"draft_budgets"`
	ApprovedBudgets  int             `json:"approved_budgets"`
	TotalBudgetValue calculate.Money `json:"total_budget_value"`
}
