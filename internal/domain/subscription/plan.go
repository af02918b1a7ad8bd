package subscription

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Valores por defecto del plan. Deben ser idénticos en todos los entornos.
const (
	DefaultTrialDays        = 3
	DefaultTrialWarningDays = 2
	DefaultPaidWarningDays  = 7 // distinto del umbral del trial a propósito
)

// Plan agrupa los parámetros comerciales del ciclo de vida.
// Es un valor inmutable: se construye una vez y se inyecta en NewLifecycle.
type Plan struct {
	TrialDays        int
	TrialWarningDays int
	PaidWarningDays  int
	BaseFee          decimal.Decimal
	EmployeeFee      decimal.Decimal
	ProjectFee       decimal.Decimal
	Currency         string // ISO 4217, solo para presentación
}

// DefaultPlan devuelve el plan estándar (base 50, empleado 10, proyecto 5).
func DefaultPlan() Plan {
	return Plan{
		TrialDays:        DefaultTrialDays,
		TrialWarningDays: DefaultTrialWarningDays,
		PaidWarningDays:  DefaultPaidWarningDays,
		BaseFee:          decimal.NewFromInt(50),
		EmployeeFee:      decimal.NewFromInt(10),
		ProjectFee:       decimal.NewFromInt(5),
		Currency:         "USD",
	}
}

// Validate rechaza planes con valores negativos o sin duración de trial.
func (p Plan) Validate() error {
	if p.TrialDays <= 0 {
		return fmt.Errorf("plan: trial_days debe ser positivo (%d)", p.TrialDays)
	}
	if p.TrialWarningDays < 0 || p.PaidWarningDays < 0 {
		return fmt.Errorf("plan: los umbrales de aviso no pueden ser negativos")
	}
	if p.BaseFee.IsNegative() || p.EmployeeFee.IsNegative() || p.ProjectFee.IsNegative() {
		return fmt.Errorf("plan: las tarifas no pueden ser negativas")
	}
	return nil
}
