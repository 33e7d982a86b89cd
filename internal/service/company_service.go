package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

type SettingsInput struct {
	Currency     *string
	TaxRate      *decimal.Decimal
	ProfitMargin *decimal.Decimal
}

type NewCompany struct {
	Name  string
	Email string
}

func (s *BudgetService) Company(ctx context.Context, id string) (*storage.Company, error) {
	const op = "service.BudgetService.Company"

	c, err := s.storage.GetCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// UpdateSettings applies a partial settings change. Rates must stay in [0, 1].
func (s *BudgetService) UpdateSettings(ctx context.Context, id string, in SettingsInput) (*storage.Company, error) {
	const op = "service.BudgetService.UpdateSettings"

	c, err := s.storage.GetCompany(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	settings := c.Settings
	if in.Currency != nil {
		settings.Currency = strings.ToUpper(*in.Currency)
	}
	if in.TaxRate != nil {
		settings.TaxRate = calculate.NewRatio(*in.TaxRate)
	}
	if in.ProfitMargin != nil {
		settings.ProfitMargin = calculate.NewRatio(*in.ProfitMargin)
	}

	// an empty calculation validates the policy range
	if _, err := calculate.Calculate(nil, calculate.Policy{
		TaxRate:      settings.TaxRate.Decimal,
		ProfitMargin: settings.ProfitMargin.Decimal,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateCompanySettings(ctx, id, settings); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.Settings = settings
	return c, nil
}

func (s *BudgetService) Stats(ctx context.Context, id string) (*storage.CompanyStats, error) {
	const op = "service.BudgetService.Stats"

	if _, err := s.storage.GetCompany(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats, err := s.storage.CompanyStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// CreateCompany registers a tenant with the default policy.
func (s *BudgetService) CreateCompany(ctx context.Context, in NewCompany) (*storage.Company, error) {
	const op = "service.BudgetService.CreateCompany"

	c := storage.Company{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     strings.ToLower(in.Email),
		Settings:  s.defaults,
		CreatedAt: s.now(),
	}

	if err := s.storage.CreateCompany(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

func (s *BudgetService) ListCompanies(ctx context.Context) ([]storage.Company, error) {
	const op = "service.BudgetService.ListCompanies"

	list, err := s.storage.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
