// Package subscription contiene la máquina de estados del ciclo de vida de la
// suscripción (trial → active → warning → expired, con bloqueo administrativo)
// y las reglas de habilitación por uso.
//
// Todas las operaciones son puras: reciben un snapshot y la hora actual, no
// leen el reloj ni mutan contadores de uso. La persistencia y el incremento de
// contadores pertenecen a la capa de aplicación.
package subscription

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
)

// DisplayStatus estado derivado que se muestra al usuario.
type DisplayStatus string

const (
	DisplayActive  DisplayStatus = "active"
	DisplayWarning DisplayStatus = "warning"
	DisplayExpired DisplayStatus = "expired"
	DisplayBlocked DisplayStatus = "blocked"
)

const dayMillis int64 = 86_400_000

// dayLength un día fijo de 24h, independiente de la zona horaria y del horario de verano.
const dayLength = time.Duration(dayMillis) * time.Millisecond

// StatusResult resultado de GetStatus.
type StatusResult struct {
	Status        DisplayStatus
	DaysRemaining int
	Message       string
}

// Lifecycle aplica el plan a los snapshots de suscripción.
type Lifecycle struct {
	plan Plan
}

// NewLifecycle construye el ciclo de vida con un plan validado.
func NewLifecycle(plan Plan) (*Lifecycle, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &Lifecycle{plan: plan}, nil
}

// Default devuelve un Lifecycle con DefaultPlan.
func Default() *Lifecycle {
	return &Lifecycle{plan: DefaultPlan()}
}

// Plan devuelve una copia del plan configurado.
func (l *Lifecycle) Plan() Plan { return l.plan }

// CreateTrial construye una suscripción nueva en trial, con capacidad cero.
// No persiste nada.
func (l *Lifecycle) CreateTrial(ownerID string, now time.Time) (*entity.Subscription, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner_id es obligatorio", domain.ErrInvalidInput)
	}
	return &entity.Subscription{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Status:         entity.SubscriptionTrial,
		TrialStartDate: now,
		TrialEndDate:   now.Add(time.Duration(l.plan.TrialDays) * dayLength),
		BaseFee:        l.plan.BaseFee,
		EmployeeFee:    l.plan.EmployeeFee,
		ProjectFee:     l.plan.ProjectFee,
		TotalAmount:    decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CalculateAmount base + empleados*tarifa + proyectos*tarifa.
// No valida negativos; los llamadores son confiables.
func (l *Lifecycle) CalculateAmount(maxEmployees, maxProjects int) decimal.Decimal {
	return l.plan.BaseFee.
		Add(decimal.NewFromInt(int64(maxEmployees)).Mul(l.plan.EmployeeFee)).
		Add(decimal.NewFromInt(int64(maxProjects)).Mul(l.plan.ProjectFee))
}

// GetStatus deriva el estado visible. Las reglas se evalúan en orden estricto:
// bloqueo, trial, ventana pagada, fallback. El orden es parte del contrato.
func (l *Lifecycle) GetStatus(sub *entity.Subscription, now time.Time) (StatusResult, error) {
	if err := Validate(sub); err != nil {
		return StatusResult{}, err
	}

	if sub.Status == entity.SubscriptionBlocked {
		return StatusResult{Status: DisplayBlocked, Message: "account blocked, purchase to continue"}, nil
	}

	if sub.Status == entity.SubscriptionTrial {
		days := DaysUntil(sub.TrialEndDate, now)
		switch {
		case days <= 0:
			return StatusResult{Status: DisplayExpired, Message: "trial expired, purchase to continue"}, nil
		case days <= l.plan.TrialWarningDays:
			return StatusResult{
				Status:        DisplayWarning,
				DaysRemaining: days,
				Message:       fmt.Sprintf("trial expires in %s, purchase to continue", dayCount(days)),
			}, nil
		default:
			return StatusResult{
				Status:        DisplayActive,
				DaysRemaining: days,
				Message:       fmt.Sprintf("free trial: %s remaining", dayCount(days)),
			}, nil
		}
	}

	if sub.Status == entity.SubscriptionActive && sub.SubscriptionEndDate != nil {
		days := DaysUntil(*sub.SubscriptionEndDate, now)
		switch {
		case days <= 0:
			return StatusResult{Status: DisplayExpired, Message: "subscription expired, renew to continue"}, nil
		case days <= l.plan.PaidWarningDays:
			return StatusResult{
				Status:        DisplayWarning,
				DaysRemaining: days,
				Message:       fmt.Sprintf("subscription expires in %s", dayCount(days)),
			}, nil
		default:
			return StatusResult{
				Status:        DisplayActive,
				DaysRemaining: days,
				Message:       fmt.Sprintf("active subscription: %s remaining", dayCount(days)),
			}, nil
		}
	}

	return StatusResult{Status: DisplayExpired, Message: "no active subscription"}, nil
}

// CanAddEmployee: nunca en trial ni bloqueada; si no, uso actual < máximo.
func (l *Lifecycle) CanAddEmployee(sub *entity.Subscription) bool {
	if !canGrowUsage(sub) {
		return false
	}
	return sub.CurrentEmployees < sub.MaxEmployees
}

// CanAddProject análogo a CanAddEmployee sobre proyectos.
func (l *Lifecycle) CanAddProject(sub *entity.Subscription) bool {
	if !canGrowUsage(sub) {
		return false
	}
	return sub.CurrentProjects < sub.MaxProjects
}

// CanExportPDF solo las cuentas activas exportan.
func (l *Lifecycle) CanExportPDF(sub *entity.Subscription) bool {
	return sub != nil && sub.Status == entity.SubscriptionActive
}

// CanExportExcel mismas reglas que CanExportPDF.
func (l *Lifecycle) CanExportExcel(sub *entity.Subscription) bool {
	return sub != nil && sub.Status == entity.SubscriptionActive
}

// NeedsWatermark las salidas de cuentas en trial se marcan, sin importar los días restantes.
func (l *Lifecycle) NeedsWatermark(sub *entity.Subscription) bool {
	return sub != nil && sub.Status == entity.SubscriptionTrial
}

// canGrowUsage los estados desconocidos se tratan como bloqueados.
func canGrowUsage(sub *entity.Subscription) bool {
	if sub == nil {
		return false
	}
	switch sub.Status {
	case entity.SubscriptionActive, entity.SubscriptionExpired:
		return true
	default:
		return false
	}
}

// DaysUntil días restantes con redondeo hacia arriba sobre la diferencia en
// milisegundos: a 30 minutos del vencimiento quedan 1 día, no 0.
func DaysUntil(end, now time.Time) int {
	ms := end.Sub(now).Milliseconds()
	days := ms / dayMillis
	if ms%dayMillis > 0 {
		days++
	}
	return int(days)
}

func dayCount(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
