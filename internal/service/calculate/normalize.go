package calculate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Shape int

const (
	// ShapeNested is one entry per category occurrence, each with its own field map.
	ShapeNested Shape = iota + 1
	// ShapeFlat is a single field-keyed map applied to every category.
	ShapeFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeNested:
		return "nested"
	case ShapeFlat:
		return "flat"
	}
	return "unknown"
}

// Cell is one submitted field value. Value holds the decoded JSON value
// (numbers as json.Number).
type Cell struct {
	Value       any
	UnitCost    any
	HasUnitCost bool
}

type Entry struct {
	CategoryID string
	Values     map[string]Cell
	Order      int
}

// Submission is the classified form of a caller's items payload.
type Submission struct {
	Shape   Shape
	Entries []Entry
	Flat    map[string]Cell
}

var malformed = &ValidationError{Violations: []Violation{{Reason: ReasonMalformed}}}

// ParseSubmission classifies raw items once. An array whose entries carry
// category_id is nested; a field-keyed object, or an array of entries without
// category_id, is flat.
func ParseSubmission(raw json.RawMessage) (Submission, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Submission{Shape: ShapeNested}, nil
	}

	switch raw[0] {
	case '{':
		cells, err := decodeCells(raw)
		if err != nil {
			return Submission{}, err
		}
		return Submission{Shape: ShapeFlat, Flat: cells}, nil
	case '[':
		return parseEntries(raw)
	default:
		return Submission{}, malformed
	}
}

func parseEntries(raw json.RawMessage) (Submission, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Submission{}, malformed
	}

	var grouped, ungrouped int
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		entry := Entry{Order: i}

		if rawID, ok := item["category_id"]; ok && !bytes.Equal(bytes.TrimSpace(rawID), []byte("null")) {
			if err := json.Unmarshal(rawID, &entry.CategoryID); err != nil {
				return Submission{}, malformed
			}
			grouped++
		} else {
			ungrouped++
		}

		if rawOrder, ok := item["order"]; ok {
			var order int
			if err := json.Unmarshal(rawOrder, &order); err != nil {
				return Submission{}, malformed
			}
			entry.Order = order
		}

		cells, err := decodeCells(item["field_values"])
		if err != nil {
			return Submission{}, err
		}
		entry.Values = cells
		entries = append(entries, entry)
	}

	switch {
	case grouped > 0 && ungrouped > 0:
		return Submission{}, &ValidationError{Violations: []Violation{{Reason: ReasonMixedShape}}}
	case ungrouped > 0:
		flat := make(map[string]Cell)
		for _, e := range entries {
			for k, c := range e.Values {
				flat[k] = c
			}
		}
		return Submission{Shape: ShapeFlat, Flat: flat}, nil
	default:
		return Submission{Shape: ShapeNested, Entries: entries}, nil
	}
}

func decodeCells(raw json.RawMessage) (map[string]Cell, error) {
	cells := make(map[string]Cell)
	if len(bytes.TrimSpace(raw)) == 0 {
		return cells, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return nil, malformed
	}

	for k, v := range values {
		cells[k] = toCell(v)
	}
	return cells, nil
}

func toCell(v any) Cell {
	obj, ok := v.(map[string]any)
	if !ok {
		return Cell{Value: v}
	}
	value, hasValue := obj["value"]
	unitCost, hasCost := obj["unit_cost"]
	if !hasValue && !hasCost {
		return Cell{Value: v}
	}
	return Cell{Value: value, UnitCost: unitCost, HasUnitCost: hasCost}
}

// Line is one priced (category, field) pair of one submitted entry.
type Line struct {
	CategoryID   string
	CategoryName string
	FieldID      string
	FieldLabel   string
	Entry        int
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
}

func (l Line) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// NormalizedEntry is the canonical echo of a submitted entry, keyed by field label.
type NormalizedEntry struct {
	CategoryID  string
	FieldValues map[string]any
	Order       int
}

type Normalized struct {
	Strategy Strategy
	Entries  []NormalizedEntry
	Lines    []Line
}

type resolvedEntry struct {
	order  int
	values map[string]Cell // by field label
}

// Normalize turns a submission into priced lines ordered by category, then
// entry, then field. Unknown references fail with *SchemaError; every other
// problem is collected into one *ValidationError.
func Normalize(s *Schema, sub Submission) (Normalized, error) {
	groups, err := group(s, sub)
	if err != nil {
		return Normalized{}, err
	}

	out := Normalized{
		Strategy: s.Strategy(),
		Entries:  []NormalizedEntry{},
		Lines:    []Line{},
	}
	var violations []Violation

	for _, cat := range s.categories {
		entries := groups[cat.ID]
		if len(entries) == 0 {
			continue
		}
		if !cat.IsRepeatable && len(entries) > 1 {
			violations = append(violations, Violation{Category: cat.Name, Reason: ReasonNotRepeatable})
		}

		for _, e := range entries {
			idx := len(out.Entries)
			echo := make(map[string]any, len(e.values))

			for _, f := range cat.Fields {
				cell, submitted := e.values[f.Label]
				present := submitted && nonEmpty(cell.Value)

				if f.Required && !present {
					violations = append(violations, Violation{Category: cat.Name, Field: f.Label, Reason: ReasonRequired})
					continue
				}
				if !f.Type.Numeric() {
					if submitted {
						echo[f.Label] = cell.Value
					}
					continue
				}

				line := Line{
					CategoryID:   cat.ID,
					CategoryName: cat.Name,
					FieldID:      f.ID,
					FieldLabel:   f.Label,
					Entry:        idx,
					Quantity:     decimal.Zero,
					UnitCost:     f.DefaultUnitCost,
				}

				if present {
					q, ok := toDecimal(cell.Value)
					switch {
					case !ok && f.Required:
						violations = append(violations, Violation{Category: cat.Name, Field: f.Label, Reason: ReasonNotNumeric})
						continue
					case !ok:
						q = decimal.Zero
					case !inRange(q):
						violations = append(violations, Violation{Category: cat.Name, Field: f.Label, Reason: ReasonOutOfRange})
						continue
					}
					line.Quantity = q
				}

				if submitted && cell.HasUnitCost && nonEmpty(cell.UnitCost) {
					uc, ok := toDecimal(cell.UnitCost)
					switch {
					case ok && !inRange(uc):
						violations = append(violations, Violation{Category: cat.Name, Field: f.Label, Reason: ReasonOutOfRange})
						continue
					case ok:
						line.UnitCost = uc
					case f.Required:
						violations = append(violations, Violation{Category: cat.Name, Field: f.Label, Reason: ReasonNotNumeric})
						continue
					}
				}

				if line.Quantity.IsNegative() || line.UnitCost.IsNegative() {
					violations = append(violations, Violation{Category: cat.Name, Field: f.Label, Reason: ReasonNegative})
					continue
				}
				if !belowMax(line.Amount()) {
					violations = append(violations, Violation{Category: cat.Name, Field: f.Label, Reason: ReasonOutOfRange})
					continue
				}

				if submitted {
					echo[f.Label] = map[string]any{
						"value":     json.Number(line.Quantity.String()),
						"unit_cost": json.Number(line.UnitCost.String()),
					}
				}
				out.Lines = append(out.Lines, line)
			}

			out.Entries = append(out.Entries, NormalizedEntry{
				CategoryID:  cat.ID,
				FieldValues: echo,
				Order:       e.order,
			})
		}
	}

	if len(violations) > 0 {
		return Normalized{}, &ValidationError{Violations: violations}
	}

	return out, nil
}

// group assigns submitted entries to categories, resolving field keys to labels.
func group(s *Schema, sub Submission) (map[string][]resolvedEntry, error) {
	groups := make(map[string][]resolvedEntry)
	var problems []string

	switch sub.Shape {
	case ShapeFlat:
		used := make(map[string]bool, len(sub.Flat))
		for i, cat := range s.categories {
			values := make(map[string]Cell)
			for _, f := range cat.Fields {
				key, cell, ok := lookupFlat(sub.Flat, f)
				if !ok {
					continue
				}
				used[key] = true
				values[f.Label] = cell
			}
			if len(values) > 0 {
				groups[cat.ID] = append(groups[cat.ID], resolvedEntry{order: i, values: values})
			}
		}
		for _, key := range sortedKeys(sub.Flat) {
			if !used[key] {
				problems = append(problems, fmt.Sprintf("campo %q não encontrado no template", key))
			}
		}
	default:
		for _, e := range sub.Entries {
			if _, err := s.Category(e.CategoryID); err != nil {
				problems = append(problems, fmt.Sprintf("categoria %q não encontrada no template", e.CategoryID))
				continue
			}
			values := make(map[string]Cell, len(e.Values))
			for _, key := range sortedKeys(e.Values) {
				f, err := s.ResolveField(e.CategoryID, key)
				var se *SchemaError
				if errors.As(err, &se) {
					problems = append(problems, se.Problems...)
					continue
				}
				values[f.Label] = e.Values[key]
			}
			groups[e.CategoryID] = append(groups[e.CategoryID], resolvedEntry{order: e.Order, values: values})
		}
		for id := range groups {
			entries := groups[id]
			sort.SliceStable(entries, func(a, b int) bool { return entries[a].order < entries[b].order })
		}
	}

	if len(problems) > 0 {
		return nil, &SchemaError{Problems: problems}
	}
	return groups, nil
}

func lookupFlat(flat map[string]Cell, f Field) (string, Cell, bool) {
	if f.ID != "" {
		if c, ok := flat[f.ID]; ok {
			return f.ID, c, true
		}
	}
	c, ok := flat[f.Label]
	return f.Label, c, ok
}

func sortedKeys(m map[string]Cell) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// nonEmpty treats 0 and false as values; nil, blank strings and empty
// collections are not.
func nonEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// toDecimal parses a submitted number. Zero is returned as decimal.Zero so a
// value like 0e2000000000 does not carry its exponent into later arithmetic.
// Magnitude is not checked here, see inRange.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case json.Number:
		return parseDecimal(val.String())
	case string:
		return parseDecimal(strings.TrimSpace(val))
	case float64:
		return decimal.NewFromFloat(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	default:
		return decimal.Zero, false
	}
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if d.IsZero() {
		return decimal.Zero, true
	}
	return d, true
}
