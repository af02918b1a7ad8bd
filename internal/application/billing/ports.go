package billing

import (
	"context"
	"time"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con la fila de la suscripción bloqueable.
type TxRunner interface {
	RunSubscription(ctx context.Context, fn func(subs repository.LockingSubscriptionRepository) error) error
}

// Clock fuente de la hora actual; se inyecta para que los casos de uso sean deterministas en tests.
type Clock func() time.Time

// Entitlement habilitación consultable por los handlers.
type Entitlement string

const (
	EntitlementAddEmployee Entitlement = "add_employee"
	EntitlementAddProject  Entitlement = "add_project"
	EntitlementExportPDF   Entitlement = "export_pdf"
	EntitlementExportExcel Entitlement = "export_excel"
)
