package models

import "github.com/shopspring/decimal"

// Money is a currency amount. It stores and computes like decimal.Decimal
// and renders in JSON with exactly two fraction digits ("12.00").
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
