package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"budget-api/internal/storage"
)

const budgetColumns = `id, company_id, template_id, name, client_name, notes, status, version, currency,
	tax_rate, profit_margin, subtotal, profit_amount, tax_amount, total, created_at, updated_at`

func (s *Storage) CreateBudget(ctx context.Context, b *storage.Budget) error {
	const op = "storage.sqlstore.CreateBudget"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	stmt := `INSERT INTO budgets (` + budgetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, stmt,
		b.ID, b.CompanyID, b.TemplateID, b.Name, b.ClientName, b.Notes, string(b.Status), b.Version, b.Currency,
		b.TaxRate.Decimal, b.ProfitMargin.Decimal,
		b.Subtotal.Decimal, b.ProfitAmount.Decimal, b.TaxAmount.Decimal, b.Total.Decimal,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: insert budget: %w", op, err)
	}

	if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// UpdateBudget overwrites a budget and its items. prevVersion must match the
// stored version, otherwise storage.ErrVersionConflict is returned.
func (s *Storage) UpdateBudget(ctx context.Context, b *storage.Budget, prevVersion int) error {
	const op = "storage.sqlstore.UpdateBudget"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	stmt := `UPDATE budgets SET name = ?, client_name = ?, notes = ?, version = ?, currency = ?,
			tax_rate = ?, profit_margin = ?, subtotal = ?, profit_amount = ?, tax_amount = ?, total = ?, updated_at = ?
		WHERE id = ? AND company_id = ? AND version = ?`

	res, err := tx.ExecContext(ctx, stmt,
		b.Name, b.ClientName, b.Notes, b.Version, b.Currency,
		b.TaxRate.Decimal, b.ProfitMargin.Decimal,
		b.Subtotal.Decimal, b.ProfitAmount.Decimal, b.TaxAmount.Decimal, b.Total.Decimal, b.UpdatedAt,
		b.ID, b.CompanyID, prevVersion,
	)
	if err != nil {
		return fmt.Errorf("%s: update budget: %w", op, err)
	}
	if err := expectRow(op, res, storage.ErrVersionConflict); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_items WHERE budget_id = ?`, b.ID); err != nil {
		return fmt.Errorf("%s: delete items: %w", op, err)
	}

	if err := insertItems(ctx, tx, b.ID, b.Items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) UpdateBudgetStatus(ctx context.Context, companyID, id string, status storage.BudgetStatus) error {
	const op = "storage.sqlstore.UpdateBudgetStatus"

	stmt := `UPDATE budgets SET status = ?, updated_at = ? WHERE id = ? AND company_id = ?`

	res, err := s.db.ExecContext(ctx, stmt, string(status), now(), id, companyID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectRow(op, res, storage.ErrBudgetNotFound)
}

func (s *Storage) DeleteBudget(ctx context.Context, companyID, id string) error {
	const op = "storage.sqlstore.DeleteBudget"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_items WHERE budget_id IN
		(SELECT id FROM budgets WHERE id = ? AND company_id = ?)`, id, companyID); err != nil {
		return fmt.Errorf("%s: delete items: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND company_id = ?`, id, companyID)
	if err != nil {
		return fmt.Errorf("%s: delete budget: %w", op, err)
	}
	if err := expectRow(op, res, storage.ErrBudgetNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// GetBudget loads a budget of the company together with its items.
func (s *Storage) GetBudget(ctx context.Context, companyID, id string) (*storage.Budget, error) {
	const op = "storage.sqlstore.GetBudget"

	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = ? AND company_id = ?`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: budget id=%s: %w", op, id, storage.ErrBudgetNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.loadItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	b.Items = items

	return b, nil
}

// ListBudgets returns budget headers, newest first. Items are not loaded.
func (s *Storage) ListBudgets(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]storage.Budget, error) {
	const op = "storage.sqlstore.ListBudgets"

	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE company_id = ?`
	args := []any{companyID}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.TemplateID != "" {
		query += ` AND template_id = ?`
		args = append(args, filter.TemplateID)
	}
	if !filter.From.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, filter.To.UTC())
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	budgets := []storage.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		budgets = append(budgets, *b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate rows: %w", op, err)
	}

	return budgets, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBudget(row scanner) (*storage.Budget, error) {
	b := &storage.Budget{}
	var status string
	err := row.Scan(
		&b.ID,
		&b.CompanyID,
		&b.TemplateID,
		&b.Name,
		&b.ClientName,
		&b.Notes,
		&status,
		&b.Version,
		&b.Currency,
		&b.TaxRate,
		&b.ProfitMargin,
		&b.Subtotal,
		&b.ProfitAmount,
		&b.TaxAmount,
		&b.Total,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = storage.BudgetStatus(status)
	return b, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, budgetID string, items []storage.BudgetItem) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO budget_items
		(budget_id, position, category_id, field_values, amount, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		values, err := json.Marshal(item.FieldValues)
		if err != nil {
			return fmt.Errorf("encode field values of item %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, budgetID, i, item.CategoryID, string(values), item.Amount.Decimal, item.Order); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	return nil
}

func (s *Storage) loadItems(ctx context.Context, budgetID string) ([]storage.BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category_id, field_values, amount, sort_order
		FROM budget_items WHERE budget_id = ? ORDER BY position`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []storage.BudgetItem{}
	for rows.Next() {
		var (
			item   storage.BudgetItem
			values string
		)
		if err := rows.Scan(&item.CategoryID, &values, &item.Amount, &item.Order); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if err := json.Unmarshal([]byte(values), &item.FieldValues); err != nil {
			return nil, fmt.Errorf("decode field values: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return items, nil
}
