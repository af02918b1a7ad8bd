package billing

import (
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/config"
)

// PlanFromConfig traduce la configuración al plan del dominio.
func PlanFromConfig(cfg config.PlanConfig) subscription.Plan {
	return subscription.Plan{
		TrialDays:        cfg.TrialDays,
		TrialWarningDays: cfg.TrialWarningDays,
		PaidWarningDays:  cfg.PaidWarningDays,
		BaseFee:          cfg.BaseFee,
		EmployeeFee:      cfg.EmployeeFee,
		ProjectFee:       cfg.ProjectFee,
		Currency:         cfg.Currency,
	}
}
