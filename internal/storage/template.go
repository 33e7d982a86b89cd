package storage

import (
	"time"

	"budget-api/internal/service/calculate"
)

// Template is a stored budget template. The schema part is the same model the
// calculation core validates.
type Template struct {
	calculate.Template
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateSummary is a template row without its categories, used for listings.
type TemplateSummary struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	IsActive      bool               `json:"is_active"`
	Strategy      calculate.Strategy `json:"strategy,omitempty"`
	CategoryCount int                `json:"category_count"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
