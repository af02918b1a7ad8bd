package subscription

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
)

// MaxPackageMonths duración máxima de un paquete comprado de una vez.
const MaxPackageMonths = 36

type transition struct {
	from, to entity.SubscriptionStatus
}

// Transiciones permitidas del estado almacenado.
var validTransitions = map[transition]bool{
	{entity.SubscriptionTrial, entity.SubscriptionActive}:    true, // compra durante el trial
	{entity.SubscriptionTrial, entity.SubscriptionExpired}:   true, // trial vencido sin compra
	{entity.SubscriptionTrial, entity.SubscriptionBlocked}:   true,
	{entity.SubscriptionActive, entity.SubscriptionActive}:   true, // renovación
	{entity.SubscriptionActive, entity.SubscriptionExpired}:  true,
	{entity.SubscriptionActive, entity.SubscriptionBlocked}:  true,
	{entity.SubscriptionExpired, entity.SubscriptionActive}:  true, // recompra
	{entity.SubscriptionExpired, entity.SubscriptionBlocked}: true,
	{entity.SubscriptionBlocked, entity.SubscriptionActive}:  true, // compra tras bloqueo o desbloqueo con ventana vigente
	{entity.SubscriptionBlocked, entity.SubscriptionExpired}: true, // desbloqueo sin ventana vigente
}

// CanTransition informa si el cambio de estado almacenado está permitido.
func CanTransition(from, to entity.SubscriptionStatus) bool {
	return validTransitions[transition{from, to}]
}

// Package paquete comprado: capacidades y duración en meses.
type Package struct {
	MaxEmployees int
	MaxProjects  int
	Months       int
}

// Validate revisa los límites del paquete.
func (p Package) Validate() error {
	if p.MaxEmployees < 0 || p.MaxProjects < 0 {
		return fmt.Errorf("%w: las capacidades no pueden ser negativas", domain.ErrInvalidInput)
	}
	if p.Months <= 0 || p.Months > MaxPackageMonths {
		return fmt.Errorf("%w: months debe estar entre 1 y %d", domain.ErrInvalidInput, MaxPackageMonths)
	}
	return nil
}

// Purchase aplica la compra de un paquete y devuelve una copia activa.
// Si hay una ventana pagada vigente, la nueva duración se suma a su fin.
// Las capacidades no pueden quedar por debajo del uso actual.
func (l *Lifecycle) Purchase(sub *entity.Subscription, pkg Package, now time.Time) (*entity.Subscription, error) {
	if err := Validate(sub); err != nil {
		return nil, err
	}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	if !CanTransition(sub.Status, entity.SubscriptionActive) {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, sub.Status, entity.SubscriptionActive)
	}
	if pkg.MaxEmployees < sub.CurrentEmployees || pkg.MaxProjects < sub.CurrentProjects {
		return nil, fmt.Errorf("%w: el paquete es menor que el uso actual (%d empleados, %d proyectos)",
			domain.ErrConflict, sub.CurrentEmployees, sub.CurrentProjects)
	}

	out := *sub
	start := now
	if sub.Status == entity.SubscriptionActive && sub.SubscriptionEndDate != nil && sub.SubscriptionEndDate.After(now) {
		start = *sub.SubscriptionEndDate
		out.SubscriptionStartDate = sub.SubscriptionStartDate
	} else {
		out.SubscriptionStartDate = timePtr(now)
	}
	out.SubscriptionEndDate = timePtr(start.AddDate(0, pkg.Months, 0))

	out.Status = entity.SubscriptionActive
	out.MaxEmployees = pkg.MaxEmployees
	out.MaxProjects = pkg.MaxProjects
	out.BaseFee = l.plan.BaseFee
	out.EmployeeFee = l.plan.EmployeeFee
	out.ProjectFee = l.plan.ProjectFee
	out.TotalAmount = l.CalculateAmount(pkg.MaxEmployees, pkg.MaxProjects).Mul(decimal.NewFromInt(int64(pkg.Months)))
	out.LastPaymentDate = timePtr(now)
	out.UpdatedAt = now
	return &out, nil
}

// Block acción administrativa: la cuenta queda bloqueada sin importar las fechas.
func (l *Lifecycle) Block(sub *entity.Subscription, now time.Time) (*entity.Subscription, error) {
	if err := Validate(sub); err != nil {
		return nil, err
	}
	if !CanTransition(sub.Status, entity.SubscriptionBlocked) {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, sub.Status, entity.SubscriptionBlocked)
	}
	out := *sub
	out.Status = entity.SubscriptionBlocked
	out.UpdatedAt = now
	return &out, nil
}

// Unblock restaura active si la ventana pagada sigue abierta; si no, expired.
func (l *Lifecycle) Unblock(sub *entity.Subscription, now time.Time) (*entity.Subscription, error) {
	if err := Validate(sub); err != nil {
		return nil, err
	}
	if sub.Status != entity.SubscriptionBlocked {
		return nil, fmt.Errorf("%w: la suscripción no está bloqueada", domain.ErrInvalidTransition)
	}
	out := *sub
	out.Status = entity.SubscriptionExpired
	if sub.SubscriptionEndDate != nil && sub.SubscriptionEndDate.After(now) {
		out.Status = entity.SubscriptionActive
	}
	out.UpdatedAt = now
	return &out, nil
}

// Expire marca como expired una suscripción trial/active cuya ventana terminó.
// Devuelve changed=false si no corresponde ningún cambio.
func (l *Lifecycle) Expire(sub *entity.Subscription, now time.Time) (out *entity.Subscription, changed bool, err error) {
	res, err := l.GetStatus(sub, now)
	if err != nil {
		return nil, false, err
	}
	if res.Status != DisplayExpired || sub.Status == entity.SubscriptionExpired {
		return sub, false, nil
	}
	// Activa sin fecha de fin: no hay ventana que vencer.
	if sub.Status == entity.SubscriptionActive && sub.SubscriptionEndDate == nil {
		return sub, false, nil
	}
	cp := *sub
	cp.Status = entity.SubscriptionExpired
	cp.UpdatedAt = now
	return &cp, true, nil
}

func timePtr(t time.Time) *time.Time { return &t }
