package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
)

var _ repository.LockingSubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo implementación de SubscriptionRepository sobre PostgreSQL.
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
// GetByOwnerIDForUpdate solo tiene efecto dentro de una transacción.
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

const subscriptionColumns = `
	id, owner_id, status, trial_start_date, trial_end_date,
	subscription_start_date, subscription_end_date,
	max_employees, max_projects, current_employees, current_projects,
	base_fee, employee_fee, project_fee, total_amount,
	last_payment_date, created_at, updated_at`

// GetByOwnerID obtiene la suscripción de una cuenta.
func (r *SubscriptionRepo) GetByOwnerID(ctx context.Context, ownerID string) (*entity.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE owner_id = $1`, ownerID)
}

// GetByOwnerIDForUpdate obtiene la suscripción y bloquea la fila (SELECT FOR UPDATE).
func (r *SubscriptionRepo) GetByOwnerIDForUpdate(ctx context.Context, ownerID string) (*entity.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE owner_id = $1 FOR UPDATE`, ownerID)
}

// Create persiste una suscripción nueva. Una por owner: duplicado → domain.ErrDuplicate.
func (r *SubscriptionRepo) Create(ctx context.Context, s *entity.Subscription) error {
	query := `INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.OwnerID, string(s.Status), s.TrialStartDate, s.TrialEndDate,
		s.SubscriptionStartDate, s.SubscriptionEndDate,
		s.MaxEmployees, s.MaxProjects, s.CurrentEmployees, s.CurrentProjects,
		s.BaseFee, s.EmployeeFee, s.ProjectFee, s.TotalAmount,
		s.LastPaymentDate, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Update reemplaza todos los campos mutables. Las fechas del trial son inmutables.
func (r *SubscriptionRepo) Update(ctx context.Context, s *entity.Subscription) error {
	const query = `
		UPDATE subscriptions SET
			status = $2, subscription_start_date = $3, subscription_end_date = $4,
			max_employees = $5, max_projects = $6, current_employees = $7, current_projects = $8,
			base_fee = $9, employee_fee = $10, project_fee = $11, total_amount = $12,
			last_payment_date = $13, updated_at = $14
		WHERE owner_id = $1`
	cmd, err := r.q.Exec(ctx, query,
		s.OwnerID, string(s.Status), s.SubscriptionStartDate, s.SubscriptionEndDate,
		s.MaxEmployees, s.MaxProjects, s.CurrentEmployees, s.CurrentProjects,
		s.BaseFee, s.EmployeeFee, s.ProjectFee, s.TotalAmount,
		s.LastPaymentDate, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDue devuelve trials y activas con la ventana cerrada antes de before.
func (r *SubscriptionRepo) ListDue(ctx context.Context, before time.Time, afterOwnerID string, limit int) ([]*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE owner_id::text > $2
		  AND ((status = 'trial' AND trial_end_date <= $1)
		    OR (status = 'active' AND subscription_end_date IS NOT NULL AND subscription_end_date <= $1))
		ORDER BY owner_id::text
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, before, afterOwnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list due subscriptions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SubscriptionRepo) getOne(ctx context.Context, query, ownerID string) (*entity.Subscription, error) {
	s, err := scanSubscription(r.q.QueryRow(ctx, query, ownerID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return s, nil
}

func scanSubscription(row pgx.Row) (*entity.Subscription, error) {
	var (
		s      entity.Subscription
		status string
	)
	err := row.Scan(
		&s.ID, &s.OwnerID, &status, &s.TrialStartDate, &s.TrialEndDate,
		&s.SubscriptionStartDate, &s.SubscriptionEndDate,
		&s.MaxEmployees, &s.MaxProjects, &s.CurrentEmployees, &s.CurrentProjects,
		&s.BaseFee, &s.EmployeeFee, &s.ProjectFee, &s.TotalAmount,
		&s.LastPaymentDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = entity.SubscriptionStatus(status)
	return &s, nil
}
