package repository

import (
	"context"
	"time"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
)

// SubscriptionRepository puerto de persistencia de suscripciones.
// Los campos deben ir y volver sin pérdida (fechas como timestamps, montos NUMERIC).
type SubscriptionRepository interface {
	// GetByOwnerID devuelve domain.ErrNotFound si la cuenta no tiene suscripción.
	GetByOwnerID(ctx context.Context, ownerID string) (*entity.Subscription, error)
	Create(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error
	// ListDue devuelve suscripciones trial/active cuya ventana terminó antes de before,
	// ordenadas por owner_id y con owner_id > afterOwnerID (paginación por clave).
	ListDue(ctx context.Context, before time.Time, afterOwnerID string, limit int) ([]*entity.Subscription, error)
}

// LockingSubscriptionRepository variante usada dentro de transacciones:
// bloquea la fila (SELECT ... FOR UPDATE) hasta el commit.
type LockingSubscriptionRepository interface {
	SubscriptionRepository
	GetByOwnerIDForUpdate(ctx context.Context, ownerID string) (*entity.Subscription, error)
}
