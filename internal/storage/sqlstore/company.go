package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

func (s *Storage) CreateCompany(ctx context.Context, c storage.Company) error {
	const op = "storage.sqlstore.CreateCompany"

	stmt := `INSERT INTO companies (id, name, email, currency, tax_rate, profit_margin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, stmt, c.ID, c.Name, c.Email, c.Settings.Currency,
		c.Settings.TaxRate.Decimal, c.Settings.ProfitMargin.Decimal, c.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrCompanyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetCompany(ctx context.Context, id string) (*storage.Company, error) {
	const op = "storage.sqlstore.GetCompany"

	query := `SELECT id, name, email, currency, tax_rate, profit_margin, created_at
		FROM companies WHERE id = ?`

	c := &storage.Company{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Settings.Currency,
		&c.Settings.TaxRate,
		&c.Settings.ProfitMargin,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: company id=%s: %w", op, id, storage.ErrCompanyNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (s *Storage) ListCompanies(ctx context.Context) ([]storage.Company, error) {
	const op = "storage.sqlstore.ListCompanies"

	query := `SELECT id, name, email, currency, tax_rate, profit_margin, created_at
		FROM companies ORDER BY created_at, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	companies := []storage.Company{}
	for rows.Next() {
		var c storage.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Settings.Currency,
			&c.Settings.TaxRate, &c.Settings.ProfitMargin, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		companies = append(companies, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate rows: %w", op, err)
	}

	return companies, nil
}

func (s *Storage) UpdateCompanySettings(ctx context.Context, id string, settings storage.CompanySettings) error {
	const op = "storage.sqlstore.UpdateCompanySettings"

	stmt := `UPDATE companies SET currency = ?, tax_rate = ?, profit_margin = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, stmt, settings.Currency, settings.TaxRate.Decimal, settings.ProfitMargin.Decimal, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectRow(op, res, storage.ErrCompanyNotFound)
}

// CompanyStats runs the counting queries concurrently.
func (s *Storage) CompanyStats(ctx context.Context, companyID string) (*storage.CompanyStats, error) {
	const op = "storage.sqlstore.CompanyStats"

	stats := &storage.CompanyStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		query := `SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0)
			FROM templates WHERE company_id = ?`
		return s.db.QueryRowContext(gctx, query, companyID).Scan(&stats.TotalTemplates, &stats.ActiveTemplates)
	})

	g.Go(func() error {
		query := `SELECT COUNT(*),
				COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
				COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
				COALESCE(SUM(total), 0)
			FROM budgets WHERE company_id = ?`
		return s.db.QueryRowContext(gctx, query, string(storage.StatusDraft), string(storage.StatusApproved), companyID).Scan(
			&stats.TotalBudgets,
			&stats.DraftBudgets,
			&stats.ApprovedBudgets,
			&stats.TotalBudgetValue,
		)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats.TotalBudgetValue = calculate.NewMoney(stats.TotalBudgetValue.Decimal)

	return stats, nil
}

func expectRow(op string, res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return nil
}
