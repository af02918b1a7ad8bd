package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/auth"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/billing"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/workspace"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
)

// Ensure TxRunner implementa los puertos transaccionales de la capa de aplicación.
var (
	_ auth.TxRunner      = (*TxRunner)(nil)
	_ billing.TxRunner   = (*TxRunner)(nil)
	_ workspace.TxRunner = (*TxRunner)(nil)
)

// SnapshotInvalidator descarta copias cacheadas de una suscripción (ver cache.SubscriptionCache).
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, ownerID string) error
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Tras el commit invalida la caché de las suscripciones escritas en la transacción.
type TxRunner struct {
	pool        *pgxpool.Pool
	invalidator SnapshotInvalidator
	log         zerolog.Logger
}

// NewTxRunner construye el runner con el pool. invalidator puede ser nil.
func NewTxRunner(pool *pgxpool.Pool, invalidator SnapshotInvalidator, log zerolog.Logger) *TxRunner {
	return &TxRunner{pool: pool, invalidator: invalidator, log: log}
}

// RunRegistration transacción del alta de firma: empresa, usuario dueño y trial.
func (r *TxRunner) RunRegistration(ctx context.Context, fn func(
	companies repository.CompanyRepository,
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx, subs *trackingSubscriptionRepo) error {
		return fn(NewCompanyRepository(tx), NewUserRepository(tx), subs)
	})
}

// RunSubscription transacción sobre la suscripción (compra, bloqueo, vencimiento).
func (r *TxRunner) RunSubscription(ctx context.Context, fn func(subs repository.LockingSubscriptionRepository) error) error {
	return r.run(ctx, func(_ pgx.Tx, subs *trackingSubscriptionRepo) error {
		return fn(subs)
	})
}

// RunWorkspace transacción para altas/bajas que mueven los contadores de uso.
func (r *TxRunner) RunWorkspace(ctx context.Context, fn func(
	subs repository.LockingSubscriptionRepository,
	employees repository.EmployeeRepository,
	projects repository.ProjectRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx, subs *trackingSubscriptionRepo) error {
		return fn(subs, NewEmployeeRepository(tx), NewProjectRepository(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx, subs *trackingSubscriptionRepo) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	subs := &trackingSubscriptionRepo{SubscriptionRepo: NewSubscriptionRepository(tx)}
	if err := fn(tx, subs); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if r.invalidator != nil {
		for _, ownerID := range subs.written {
			if err := r.invalidator.Invalidate(ctx, ownerID); err != nil {
				r.log.Warn().Err(err).Str("owner_id", ownerID).Msg("invalidar caché de suscripción")
			}
		}
	}
	return nil
}

// trackingSubscriptionRepo registra los owners escritos dentro de la transacción.
type trackingSubscriptionRepo struct {
	*SubscriptionRepo
	written []string
}

func (t *trackingSubscriptionRepo) Create(ctx context.Context, s *entity.Subscription) error {
	if err := t.SubscriptionRepo.Create(ctx, s); err != nil {
		return err
	}
	t.written = append(t.written, s.OwnerID)
	return nil
}

func (t *trackingSubscriptionRepo) Update(ctx context.Context, s *entity.Subscription) error {
	if err := t.SubscriptionRepo.Update(ctx, s); err != nil {
		return err
	}
	t.written = append(t.written, s.OwnerID)
	return nil
}
