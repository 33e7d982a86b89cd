package storage

import (
	"time"

	"budget-api/internal/service/calculate"
)

type BudgetStatus string

const (
	StatusDraft    BudgetStatus = "draft"
	StatusSent     BudgetStatus = "sent"
	StatusApproved BudgetStatus = "approved"
	StatusRejected BudgetStatus = "rejected"
)

func (s BudgetStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Closed reports whether the budget reached a final decision.
func (s BudgetStatus) Closed() bool {
	return s == StatusApproved || s == StatusRejected
}

type Budget struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	TemplateID   string          `json:"template_id"`
	Name         string          `json:"name"`
	ClientName   string          `json:"client_name"`
	Notes        string          `json:"notes"`
	Status       BudgetStatus    `json:"status"`
	Version      int             `json:"version"`
	Currency     string          `json:"currency"`
	TaxRate      calculate.Ratio `json:"tax_rate"`
	ProfitMargin calculate.Ratio `json:"profit_margin"`
	Subtotal     calculate.Money `json:"subtotal"`
	ProfitAmount calculate.Money `json:"profit_amount"`
	TaxAmount    calculate.Money `json:"tax_amount"`
	Total        calculate.Money `json:"total"`
	Items        []BudgetItem    `json:"items,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type BudgetItem struct {
	CategoryID  string          `json:"category_id"`
	FieldValues map[string]any  `json:"field_values"`
	Amount      calculate.Money `json:"amount"`
	Order       int             `json:"order"`
}

// BudgetFilter narrows a budget listing. Zero values do not filter; To is
// exclusive.
type BudgetFilter struct {
	Status     BudgetStatus
	TemplateID string
	From       time.Time
	To         time.Time
}
