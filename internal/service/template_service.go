package service

import (
	"context"
	"fmt"

	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

// legacyCategoryID names the single category built for templates that carry
// fields directly instead of categories.
const (
	legacyCategoryID   = "geral"
	legacyCategoryName = "Geral"
)

type TemplateInput struct {
	Name        string
	Description string
	IsActive    *bool
	Strategy    calculate.Strategy
	Categories  []calculate.Category
	// Fields is the older flat layout without categories.
	Fields []calculate.Field
}

// Tree returns the category tree, adapting the flat layout into a single
// non-repeatable category.
func (in TemplateInput) Tree() []calculate.Category {
	if len(in.Categories) == 0 && len(in.Fields) > 0 {
		return []calculate.Category{{
			ID:     legacyCategoryID,
			Name:   legacyCategoryName,
			Fields: in.Fields,
		}}
	}
	return in.Categories
}

// template returns the company's template, consulting the cache first. Cache
// failures are logged and fall through to storage. A fill is attempted only
// after a clean miss, tagged with the generation that miss reported.
func (s *BudgetService) template(ctx context.Context, companyID, id string) (*storage.Template, error) {
	var (
		gen  int64
		fill bool
	)
	if s.cache != nil {
		t, g, ok, err := s.cache.Template(ctx, companyID, id)
		switch {
		case err != nil:
			s.log.Warn("template cache read failed", "template_id", id, "error", err)
		case ok:
			return t, nil
		default:
			gen, fill = g, true
		}
	}

	t, err := s.storage.GetTemplate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := s.cache.SetTemplate(ctx, t, gen); err != nil {
			s.log.Warn("template cache write failed", "template_id", id, "error", err)
		}
	}

	return t, nil
}

func (s *BudgetService) invalidate(ctx context.Context, companyID, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTemplate(ctx, companyID, id); err != nil {
		s.log.Warn("template cache invalidation failed", "template_id", id, "error", err)
	}
}

// assignIDs gives every category and field without an id a generated one.
func (s *BudgetService) assignIDs(categories []calculate.Category) []calculate.Category {
	out := make([]calculate.Category, len(categories))
	for i, c := range categories {
		if c.ID == "" {
			c.ID = s.newID()
		}
		fields := make([]calculate.Field, len(c.Fields))
		for j, f := range c.Fields {
			if f.ID == "" {
				f.ID = s.newID()
			}
			fields[j] = f
		}
		c.Fields = fields
		out[i] = c
	}
	return out
}

func (s *BudgetService) CreateTemplate(ctx context.Context, companyID string, in TemplateInput) (*storage.Template, error) {
	const op = "service.BudgetService.CreateTemplate"

	ts := s.now()
	t := &storage.Template{
		Template: calculate.Template{
			ID:          s.newID(),
			Name:        in.Name,
			Description: in.Description,
			IsActive:    in.IsActive == nil || *in.IsActive,
			CompanyID:   companyID,
			Strategy:    in.Strategy,
			Categories:  s.assignIDs(in.Tree()),
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if _, err := calculate.NewSchema(t.Template); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.CreateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return t, nil
}

func (s *BudgetService) UpdateTemplate(ctx context.Context, companyID, id string, in TemplateInput) (*storage.Template, error) {
	const op = "service.BudgetService.UpdateTemplate"

	current, err := s.storage.GetTemplate(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t := &storage.Template{
		Template: calculate.Template{
			ID:          id,
			Name:        in.Name,
			Description: in.Description,
			IsActive:    current.IsActive,
			CompanyID:   companyID,
			Strategy:    in.Strategy,
			Categories:  s.assignIDs(in.Tree()),
		},
		CreatedAt: current.CreatedAt,
		UpdatedAt: s.now(),
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}

	if _, err := calculate.NewSchema(t.Template); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, companyID, id)

	return t, nil
}

func (s *BudgetService) SetTemplateActive(ctx context.Context, companyID, id string, active bool) error {
	const op = "service.BudgetService.SetTemplateActive"

	if err := s.storage.SetTemplateActive(ctx, companyID, id, active); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, companyID, id)

	return nil
}

func (s *BudgetService) DeleteTemplate(ctx context.Context, companyID, id string) error {
	const op = "service.BudgetService.DeleteTemplate"

	if err := s.storage.DeleteTemplate(ctx, companyID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, companyID, id)

	return nil
}

func (s *BudgetService) GetTemplate(ctx context.Context, companyID, id string) (*storage.Template, error) {
	const op = "service.BudgetService.GetTemplate"

	t, err := s.template(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

func (s *BudgetService) ListTemplates(ctx context.Context, companyID string, activeOnly bool) ([]storage.TemplateSummary, error) {
	const op = "service.BudgetService.ListTemplates"

	list, err := s.storage.ListTemplates(ctx, companyID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}
