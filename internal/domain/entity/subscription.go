package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus estado de facturación almacenado de la cuenta.
// No confundir con el estado derivado que se muestra al usuario (ver subscription.DisplayStatus).
type SubscriptionStatus string

const (
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
	SubscriptionBlocked SubscriptionStatus = "blocked"
)

// Valid informa si el valor pertenece al enum conocido.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionTrial, SubscriptionActive, SubscriptionExpired, SubscriptionBlocked:
		return true
	}
	return false
}

// Subscription representa la suscripción de un tenant (una por empresa).
// Las fechas del trial se conservan después de comprar un paquete.
type Subscription struct {
	ID      string
	OwnerID string // ID de la empresa/cuenta dueña
	Status  SubscriptionStatus

	TrialStartDate time.Time
	TrialEndDate   time.Time

	SubscriptionStartDate *time.Time // nil hasta la primera compra
	SubscriptionEndDate   *time.Time // nil = sin vencimiento pagado

	MaxEmployees     int
	MaxProjects      int
	CurrentEmployees int // contadores de uso; solo los muta la capa de aplicación
	CurrentProjects  int

	BaseFee     decimal.Decimal
	EmployeeFee decimal.Decimal
	ProjectFee  decimal.Decimal
	TotalAmount decimal.Decimal

	LastPaymentDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPaidWindow indica si la suscripción tiene una ventana pagada registrada.
func (s *Subscription) HasPaidWindow() bool {
	return s.SubscriptionEndDate != nil
}
