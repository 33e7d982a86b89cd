package calculate

import (
	"github.com/shopspring/decimal"
)

// Money is a cent-rounded amount encoded in JSON as a plain number.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: RoundMoney(d)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(moneyPlaces)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.Decimal.UnmarshalJSON(b)
}

// Ratio is a fraction such as a tax rate, kept at full precision and encoded
// as a plain number.
type Ratio struct {
	decimal.Decimal
}

func NewRatio(d decimal.Decimal) Ratio {
	return Ratio{Decimal: d}
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	return r.Decimal.UnmarshalJSON(b)
}

type ItemAmount struct {
	CategoryID  string         `json:"category_id"`
	FieldValues map[string]any `json:"field_values"`
	Amount      Money          `json:"amount"`
	Order       int            `json:"order"`
}

type Metadata struct {
	Strategy  Strategy `json:"strategy"`
	Currency  string   `json:"currency,omitempty"`
	LineCount int      `json:"line_count"`
}

// Response is the data section of a calculation reply.
type Response struct {
	Subtotal     Money            `json:"subtotal"`
	ProfitAmount Money            `json:"profit_amount"`
	TaxAmount    Money            `json:"tax_amount"`
	Total        Money            `json:"total"`
	Subtotals    map[string]Money `json:"subtotals"`
	Items        []ItemAmount     `json:"items"`
	Metadata     Metadata         `json:"metadata"`
}

// Format shapes a result and its lines into a Response. Category subtotals
// and item amounts are sums of lines, rounded only here.
func Format(res Result, n Normalized) Response {
	byCategory := make(map[string]decimal.Decimal)
	byEntry := make([]decimal.Decimal, len(n.Entries))

	for _, e := range n.Entries {
		if _, ok := byCategory[e.CategoryID]; !ok {
			byCategory[e.CategoryID] = decimal.Zero
		}
	}
	for _, l := range n.Lines {
		amount := l.Amount()
		byCategory[l.CategoryID] = byCategory[l.CategoryID].Add(amount)
		if l.Entry >= 0 && l.Entry < len(byEntry) {
			byEntry[l.Entry] = byEntry[l.Entry].Add(amount)
		}
	}

	subtotals := make(map[string]Money, len(byCategory))
	for id, sum := range byCategory {
		subtotals[id] = NewMoney(sum)
	}

	items := make([]ItemAmount, 0, len(n.Entries))
	for i, e := range n.Entries {
		items = append(items, ItemAmount{
			CategoryID:  e.CategoryID,
			FieldValues: e.FieldValues,
			Amount:      NewMoney(byEntry[i]),
			Order:       e.Order,
		})
	}

	strategy := n.Strategy
	if strategy == "" {
		strategy = StrategyDefault
	}

	return Response{
		Subtotal:     Money{Decimal: res.Subtotal},
		ProfitAmount: Money{Decimal: res.ProfitAmount},
		TaxAmount:    Money{Decimal: res.TaxAmount},
		Total:        Money{Decimal: res.Total},
		Subtotals:    subtotals,
		Items:        items,
		Metadata: Metadata{
			Strategy:  strategy,
			LineCount: len(n.Lines),
		},
	}
}
