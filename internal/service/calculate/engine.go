package calculate

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// Policy is the tenant's financial policy. Both rates are fractions in [0, 1].
type Policy struct {
	TaxRate      decimal.Decimal `json:"tax_rate" toml:"tax_rate"`
	ProfitMargin decimal.Decimal `json:"profit_margin" toml:"profit_margin"`
}

// Result holds the four monetary values, each rounded to cents. Total is the
// sum of the three rounded components.
type Result struct {
	Subtotal     decimal.Decimal
	ProfitAmount decimal.Decimal
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
}

var one = decimal.NewFromInt(1)

// Calculate derives subtotal, profit, tax and total from normalized lines.
// It has no side effects; identical input always yields identical output.
func Calculate(lines []Line, policy Policy) (Result, error) {
	var violations []Violation

	if !rateInRange(policy.TaxRate) {
		violations = append(violations, Violation{Field: "tax_rate", Reason: ReasonPolicyRange})
	}
	if !rateInRange(policy.ProfitMargin) {
		violations = append(violations, Violation{Field: "profit_margin", Reason: ReasonPolicyRange})
	}
	for _, l := range lines {
		switch {
		case l.Quantity.IsNegative() || l.UnitCost.IsNegative():
			violations = append(violations, Violation{Category: l.CategoryName, Field: l.FieldLabel, Reason: ReasonNegative})
		case !inRange(l.Quantity) || !inRange(l.UnitCost):
			violations = append(violations, Violation{Category: l.CategoryName, Field: l.FieldLabel, Reason: ReasonOutOfRange})
		}
	}
	if len(violations) > 0 {
		return Result{}, &ValidationError{Violations: violations}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}
	profit := subtotal.Mul(policy.ProfitMargin)
	tax := subtotal.Add(profit).Mul(policy.TaxRate)

	res := Result{
		Subtotal:     RoundMoney(subtotal),
		ProfitAmount: RoundMoney(profit),
		TaxAmount:    RoundMoney(tax),
	}
	res.Total = res.Subtotal.Add(res.ProfitAmount).Add(res.TaxAmount)

	if !belowMax(res.Total) {
		return Result{}, &ValidationError{Violations: []Violation{{Field: "total", Reason: ReasonOutOfRange}}}
	}

	return res, nil
}

// RoundMoney rounds half up to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// Evaluate runs the whole pipeline for one request: schema, normalization,
// calculation and formatting.
func Evaluate(t Template, items json.RawMessage, policy Policy) (Response, error) {
	schema, err := NewSchema(t)
	if err != nil {
		return Response{}, err
	}

	sub, err := ParseSubmission(items)
	if err != nil {
		return Response{}, err
	}

	normalized, err := Normalize(schema, sub)
	if err != nil {
		return Response{}, err
	}

	result, err := Calculate(normalized.Lines, policy)
	if err != nil {
		return Response{}, err
	}

	return Format(result, normalized), nil
}
