package calculate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type FieldType string

const (
	FieldText       FieldType = "text"
	FieldNumber     FieldType = "number"
	FieldSelect     FieldType = "select"
	FieldDate       FieldType = "date"
	FieldBoolean    FieldType = "boolean"
	FieldCalculated FieldType = "calculated"
)

// Numeric reports whether values of this type are priced as quantity x unit cost.
func (t FieldType) Numeric() bool {
	return t == FieldNumber || t == FieldCalculated
}

func (t FieldType) valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldSelect, FieldDate, FieldBoolean, FieldCalculated:
		return true
	}
	return false
}

type Strategy string

const (
	StrategyDefault    Strategy = "default"
	StrategyIndustrial Strategy = "industrial"
	StrategyService    Strategy = "service"
)

type Field struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Type            FieldType       `json:"type"`
	Required        bool            `json:"required"`
	DefaultUnitCost decimal.Decimal `json:"default_unit_cost"`
	Order           int             `json:"order"`
}

type Category struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Order        int     `json:"order"`
	IsRepeatable bool    `json:"is_repeatable"`
	Fields       []Field `json:"fields"`
}

type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	CompanyID   string     `json:"company_id"`
	Strategy    Strategy   `json:"strategy,omitempty"`
	Categories  []Category `json:"categories"`
}

// Schema is a validated, read-only view over a Template. Categories and their
// fields are kept sorted by order.
type Schema struct {
	template     Template
	categories   []Category
	categoryIdx  map[string]int
	fieldByID    []map[string]int
	fieldByLabel []map[string]int
}

// NewSchema validates t and indexes it for traversal. The caller's template is
// not modified.
func NewSchema(t Template) (*Schema, error) {
	var problems []string

	switch t.Strategy {
	case "", StrategyDefault, StrategyIndustrial, StrategyService:
	default:
		problems = append(problems, fmt.Sprintf("estratégia de cálculo desconhecida %q", t.Strategy))
	}

	categories := make([]Category, len(t.Categories))
	for i, c := range t.Categories {
		fields := make([]Field, len(c.Fields))
		copy(fields, c.Fields)
		sort.SliceStable(fields, func(a, b int) bool { return fields[a].Order < fields[b].Order })
		c.Fields = fields
		categories[i] = c
	}
	sort.SliceStable(categories, func(a, b int) bool { return categories[a].Order < categories[b].Order })

	s := &Schema{
		template:     t,
		categories:   categories,
		categoryIdx:  make(map[string]int, len(categories)),
		fieldByID:    make([]map[string]int, len(categories)),
		fieldByLabel: make([]map[string]int, len(categories)),
	}

	orders := make(map[int]string, len(categories))
	for i, c := range categories {
		if c.ID == "" {
			problems = append(problems, fmt.Sprintf("categoria %q sem identificador", c.Name))
		} else if _, dup := s.categoryIdx[c.ID]; dup {
			problems = append(problems, fmt.Sprintf("identificador de categoria duplicado %q", c.ID))
		}
		if other, dup := orders[c.Order]; dup {
			problems = append(problems, fmt.Sprintf("categorias %q e %q com a mesma ordem %d", other, c.Name, c.Order))
		}
		orders[c.Order] = c.Name
		s.categoryIdx[c.ID] = i

		byID := make(map[string]int, len(c.Fields))
		byLabel := make(map[string]int, len(c.Fields))
		for j, f := range c.Fields {
			if _, dup := byLabel[f.Label]; dup {
				problems = append(problems, fmt.Sprintf("rótulo duplicado %q na categoria %q", f.Label, c.Name))
			}
			byLabel[f.Label] = j
			if f.ID != "" {
				if _, dup := byID[f.ID]; dup {
					problems = append(problems, fmt.Sprintf("identificador de campo duplicado %q na categoria %q", f.ID, c.Name))
				}
				byID[f.ID] = j
			}
			if !f.Type.valid() {
				problems = append(problems, fmt.Sprintf("tipo de campo desconhecido %q no campo %q", f.Type, f.Label))
			}
			if f.DefaultUnitCost.IsNegative() {
				problems = append(problems, fmt.Sprintf("custo unitário padrão negativo no campo %q", f.Label))
			} else if !inRange(f.DefaultUnitCost) {
				problems = append(problems, fmt.Sprintf("custo unitário padrão fora do limite no campo %q", f.Label))
			}
		}
		s.fieldByID[i] = byID
		s.fieldByLabel[i] = byLabel
	}

	if len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}

	return s, nil
}

func (s *Schema) Template() Template {
	return s.template
}

// Strategy returns the calculation strategy tag, defaulting to StrategyDefault.
func (s *Schema) Strategy() Strategy {
	if s.template.Strategy == "" {
		return StrategyDefault
	}
	return s.template.Strategy
}

// Categories returns the categories in order.
func (s *Schema) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Schema) Category(id string) (Category, error) {
	i, ok := s.categoryIdx[id]
	if !ok {
		return Category{}, schemaError("categoria %q não encontrada no template", id)
	}
	return s.categories[i], nil
}

// Position returns the index of the category in render order.
func (s *Schema) Position(categoryID string) (int, error) {
	i, ok := s.categoryIdx[categoryID]
	if !ok {
		return 0, schemaError("categoria %q não encontrada no template", categoryID)
	}
	return i, nil
}

// Fields returns the fields of a category in order.
func (s *Schema) Fields(categoryID string) ([]Field, error) {
	c, err := s.Category(categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]Field, len(c.Fields))
	copy(out, c.Fields)
	return out, nil
}

func (s *Schema) FieldByLabel(categoryID, label string) (Field, error) {
	i, ok := s.categoryIdx[categoryID]
	if !ok {
		return Field{}, schemaError("categoria %q não encontrada no template", categoryID)
	}
	j, ok := s.fieldByLabel[i][label]
	if !ok {
		return Field{}, schemaError("campo %q não encontrado na categoria %q", label, s.categories[i].Name)
	}
	return s.categories[i].Fields[j], nil
}

// ResolveField finds a field by stable id first and by label second.
func (s *Schema) ResolveField(categoryID, key string) (Field, error) {
	i, ok := s.categoryIdx[categoryID]
	if !ok {
		return Field{}, schemaError("categoria %q não encontrada no template", categoryID)
	}
	if j, ok := s.fieldByID[i][key]; ok {
		return s.categories[i].Fields[j], nil
	}
	if j, ok := s.fieldByLabel[i][key]; ok {
		return s.categories[i].Fields[j], nil
	}
	return Field{}, schemaError("campo %q não encontrado na categoria %q", key, s.categories[i].Name)
}
