package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount decodes money sent either as a JSON number or as a string. A comma
// is accepted as the decimal separator ("1500,50").
type Amount struct {
	decimal.Decimal
}

type AmountError struct {
	Value string
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("valor monetário inválido: %s", e.Value)
}

func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &AmountError{Value: s}
	}
	return d, nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return &AmountError{Value: string(b)}
		}
		d, err := ParseAmount(s)
		if err != nil {
			return err
		}
		a.Decimal = d
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return &AmountError{Value: string(b)}
	}
	a.Decimal = d
	return nil
}

func (a *Amount) Ptr() *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}
