package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

// CreateTemplate stores the template with its categories and fields in one
// transaction. Ids must already be assigned.
func (s *Storage) CreateTemplate(ctx context.Context, t *storage.Template) error {
	const op = "storage.sqlstore.CreateTemplate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	stmt := `INSERT INTO templates (id, company_id, name, description, strategy, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, stmt, t.ID, t.CompanyID, t.Name, t.Description, string(t.Strategy),
		t.IsActive, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: insert template: %w", op, err)
	}

	if err := insertCategories(ctx, tx, t.ID, t.Categories); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// UpdateTemplate replaces the template header and its whole category tree.
func (s *Storage) UpdateTemplate(ctx context.Context, t *storage.Template) error {
	const op = "storage.sqlstore.UpdateTemplate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	stmt := `UPDATE templates SET name = ?, description = ?, strategy = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND company_id = ?`

	res, err := tx.ExecContext(ctx, stmt, t.Name, t.Description, string(t.Strategy), t.IsActive, t.UpdatedAt,
		t.ID, t.CompanyID)
	if err != nil {
		return fmt.Errorf("%s: update template: %w", op, err)
	}
	if err := expectRow(op, res, storage.ErrTemplateNotFound); err != nil {
		return err
	}

	if err := deleteCategories(ctx, tx, t.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := insertCategories(ctx, tx, t.ID, t.Categories); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

func (s *Storage) SetTemplateActive(ctx context.Context, companyID, id string, active bool) error {
	const op = "storage.sqlstore.SetTemplateActive"

	stmt := `UPDATE templates SET is_active = ?, updated_at = ? WHERE id = ? AND company_id = ?`

	res, err := s.db.ExecContext(ctx, stmt, active, now(), id, companyID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectRow(op, res, storage.ErrTemplateNotFound)
}

func (s *Storage) DeleteTemplate(ctx context.Context, companyID, id string) error {
	const op = "storage.sqlstore.DeleteTemplate"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM templates WHERE id = ? AND company_id = ?`, id, companyID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: template id=%s: %w", op, id, storage.ErrTemplateNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := deleteCategories(ctx, tx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete template: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// GetTemplate loads a template of the company with categories and fields in order.
func (s *Storage) GetTemplate(ctx context.Context, companyID, id string) (*storage.Template, error) {
	const op = "storage.sqlstore.GetTemplate"

	query := `SELECT id, company_id, name, description, strategy, is_active, created_at, updated_at
		FROM templates WHERE id = ? AND company_id = ?`

	t := &storage.Template{}
	var strategy string
	err := s.db.QueryRowContext(ctx, query, id, companyID).Scan(
		&t.ID,
		&t.CompanyID,
		&t.Name,
		&t.Description,
		&strategy,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: template id=%s: %w", op, id, storage.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t.Strategy = calculate.Strategy(strategy)

	categories, err := s.loadCategories(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	t.Categories = categories

	return t, nil
}

// ListTemplates returns the company's templates without their category trees.
func (s *Storage) ListTemplates(ctx context.Context, companyID string, activeOnly bool) ([]storage.TemplateSummary, error) {
	const op = "storage.sqlstore.ListTemplates"

	query := `SELECT t.id, t.name, t.description, t.strategy, t.is_active, t.updated_at,
			(SELECT COUNT(*) FROM template_categories c WHERE c.template_id = t.id)
		FROM templates t
		WHERE t.company_id = ?`
	args := []any{companyID}
	if activeOnly {
		query += ` AND t.is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY t.name, t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	templates := []storage.TemplateSummary{}
	for rows.Next() {
		var t storage.TemplateSummary
		var strategy string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &strategy, &t.IsActive, &t.UpdatedAt, &t.CategoryCount); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		t.Strategy = calculate.Strategy(strategy)
		templates = append(templates, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate rows: %w", op, err)
	}

	return templates, nil
}

func insertCategories(ctx context.Context, tx *sql.Tx, templateID string, categories []calculate.Category) error {
	catStmt, err := tx.PrepareContext(ctx, `INSERT INTO template_categories (template_id, id, name, sort_order, is_repeatable)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare category insert: %w", err)
	}
	defer catStmt.Close()

	fieldStmt, err := tx.PrepareContext(ctx, `INSERT INTO template_fields
		(template_id, category_id, id, label, type, required, default_unit_cost, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare field insert: %w", err)
	}
	defer fieldStmt.Close()

	for _, c := range categories {
		if _, err := catStmt.ExecContext(ctx, templateID, c.ID, c.Name, c.Order, c.IsRepeatable); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
		for _, f := range c.Fields {
			_, err := fieldStmt.ExecContext(ctx, templateID, c.ID, f.ID, f.Label, string(f.Type), f.Required,
				f.DefaultUnitCost, f.Order)
			if err != nil {
				return fmt.Errorf("insert field %s/%s: %w", c.ID, f.ID, err)
			}
		}
	}

	return nil
}

func deleteCategories(ctx context.Context, tx *sql.Tx, templateID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM template_fields WHERE template_id = ?`, templateID); err != nil {
		return fmt.Errorf("delete fields: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM template_categories WHERE template_id = ?`, templateID); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	return nil
}

// loadCategories reads categories then fields; rows are closed before the
// second query so it works on a single connection.
func (s *Storage) loadCategories(ctx context.Context, templateID string) ([]calculate.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sort_order, is_repeatable
		FROM template_categories WHERE template_id = ? ORDER BY sort_order, id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}

	categories := []calculate.Category{}
	index := make(map[string]int)
	for rows.Next() {
		c := calculate.Category{Fields: []calculate.Field{}}
		if err := rows.Scan(&c.ID, &c.Name, &c.Order, &c.IsRepeatable); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan category: %w", err)
		}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT category_id, id, label, type, required, default_unit_cost, sort_order
		FROM template_fields WHERE template_id = ? ORDER BY sort_order, id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			categoryID string
			fieldType  string
			f          calculate.Field
		)
		if err := rows.Scan(&categoryID, &f.ID, &f.Label, &fieldType, &f.Required, &f.DefaultUnitCost, &f.Order); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		f.Type = calculate.FieldType(fieldType)
		if i, ok := index[categoryID]; ok {
			categories[i].Fields = append(categories[i].Fields, f)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}

	return categories, nil
}
