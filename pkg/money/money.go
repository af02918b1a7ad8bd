// Package money formatea montos de suscripción según la moneda configurada.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter redondea y formatea montos en una moneda ISO 4217.
type Formatter struct {
	unit    currency.Unit
	scale   int32
	printer *message.Printer
}

// NewFormatter construye el formatter. code vacío equivale a USD.
func NewFormatter(code string, tag language.Tag) (*Formatter, error) {
	if code == "" {
		code = "USD"
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("money: moneda %q inválida: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		unit:    unit,
		scale:   int32(scale),
		printer: message.NewPrinter(tag),
	}, nil
}

// Code código ISO de la moneda.
func (f *Formatter) Code() string { return f.unit.String() }

// Round redondea al número de decimales estándar de la moneda.
func (f *Formatter) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(f.scale)
}

// Format devuelve el monto con símbolo de moneda, p. ej. "$ 150.00".
func (f *Formatter) Format(d decimal.Decimal) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(f.Round(d).InexactFloat64())))
}
