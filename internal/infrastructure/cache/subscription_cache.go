// Package cache implementa una caché Redis de lectura para snapshots de suscripción.
// Solo se cachea el registro almacenado: el estado derivado depende de la hora
// y se recalcula en cada consulta.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/config"
)

var _ repository.SubscriptionRepository = (*SubscriptionCache)(nil)

const (
	keyPrefix = "subscription:owner:%s"
	// genPrefix cuenta las invalidaciones por owner; una lectura solo repuebla
	// la caché si nadie invalidó mientras consultaba la fuente.
	genPrefix = "subscription:gen:%s"
)

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// SubscriptionCache decora un SubscriptionRepository con lectura desde Redis.
// Si Redis falla se degrada a la fuente sin devolver error.
type SubscriptionCache struct {
	next   repository.SubscriptionRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSubscriptionCache construye el decorador.
func NewSubscriptionCache(client *redis.Client, next repository.SubscriptionRepository, ttl time.Duration, log zerolog.Logger) *SubscriptionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SubscriptionCache{next: next, client: client, ttl: ttl, log: log}
}

// GetByOwnerID lee de Redis y, ante un fallo de caché, de la fuente.
func (c *SubscriptionCache) GetByOwnerID(ctx context.Context, ownerID string) (*entity.Subscription, error) {
	key := fmt.Sprintf(keyPrefix, ownerID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var e cacheEntry
		if jerr := json.Unmarshal(raw, &e); jerr == nil {
			return e.toEntity(), nil
		}
		c.log.Warn().Str("owner_id", ownerID).Msg("entrada de caché corrupta, se descarta")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("owner_id", ownerID).Msg("lectura de caché falló")
	}

	genKey := fmt.Sprintf(genPrefix, ownerID)
	gen, gerr := c.generation(ctx, c.client, genKey)

	sub, err := c.next.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if gerr != nil {
		c.log.Warn().Err(gerr).Str("owner_id", ownerID).Msg("lectura de generación falló")
		return sub, nil
	}
	if serr := c.store(ctx, key, genKey, gen, sub); serr != nil {
		c.log.Warn().Err(serr).Str("owner_id", ownerID).Msg("escritura de caché falló")
	}
	return sub, nil
}

// store escribe el snapshot solo si la generación sigue siendo gen.
// Una invalidación concurrente hace fallar el EXEC y la escritura se descarta.
func (c *SubscriptionCache) store(ctx context.Context, key, genKey string, gen int64, sub *entity.Subscription) error {
	payload, err := json.Marshal(fromEntity(sub))
	if err != nil {
		return err
	}
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if cur != gen {
			return redis.TxFailedErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		c.log.Debug().Str("owner_id", sub.OwnerID).Msg("invalidada durante la lectura, no se cachea")
		return nil
	}
	return err
}

// getter lo cumplen tanto *redis.Client como *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *SubscriptionCache) generation(ctx context.Context, r getter, genKey string) (int64, error) {
	gen, err := r.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Create escribe en la fuente e invalida la caché.
func (c *SubscriptionCache) Create(ctx context.Context, sub *entity.Subscription) error {
	if err := c.next.Create(ctx, sub); err != nil {
		return err
	}
	c.invalidateQuietly(ctx, sub.OwnerID)
	return nil
}

// Update escribe en la fuente e invalida la caché.
func (c *SubscriptionCache) Update(ctx context.Context, sub *entity.Subscription) error {
	if err := c.next.Update(ctx, sub); err != nil {
		return err
	}
	c.invalidateQuietly(ctx, sub.OwnerID)
	return nil
}

// ListDue no se cachea.
func (c *SubscriptionCache) ListDue(ctx context.Context, before time.Time, afterOwnerID string, limit int) ([]*entity.Subscription, error) {
	return c.next.ListDue(ctx, before, afterOwnerID, limit)
}

// Invalidate descarta la copia cacheada del owner y avanza su generación,
// de modo que una lectura en curso no vuelva a escribir el snapshot viejo.
func (c *SubscriptionCache) Invalidate(ctx context.Context, ownerID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, fmt.Sprintf(genPrefix, ownerID))
		pipe.Del(ctx, fmt.Sprintf(keyPrefix, ownerID))
		return nil
	})
	return err
}

func (c *SubscriptionCache) invalidateQuietly(ctx context.Context, ownerID string) {
	if err := c.Invalidate(ctx, ownerID); err != nil {
		c.log.Warn().Err(err).Str("owner_id", ownerID).Msg("invalidar caché falló")
	}
}

// cacheEntry forma serializada; las fechas viajan en RFC 3339 con nanosegundos.
type cacheEntry struct {
	ID                    string          `json:"id"`
	OwnerID               string          `json:"owner_id"`
	Status                string          `json:"status"`
	TrialStartDate        time.Time       `json:"trial_start_date"`
	TrialEndDate          time.Time       `json:"trial_end_date"`
	SubscriptionStartDate *time.Time      `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time      `json:"subscription_end_date,omitempty"`
	MaxEmployees          int             `json:"max_employees"`
	MaxProjects           int             `json:"max_projects"`
	CurrentEmployees      int             `json:"current_employees"`
	CurrentProjects       int             `json:"current_projects"`
	BaseFee               decimal.Decimal `json:"base_fee"`
	EmployeeFee           decimal.Decimal `json:"employee_fee"`
	ProjectFee            decimal.Decimal `json:"project_fee"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	LastPaymentDate       *time.Time      `json:"last_payment_date,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func fromEntity(s *entity.Subscription) cacheEntry {
	return cacheEntry{
		ID: s.ID, OwnerID: s.OwnerID, Status: string(s.Status),
		TrialStartDate: s.TrialStartDate, TrialEndDate: s.TrialEndDate,
		SubscriptionStartDate: s.SubscriptionStartDate, SubscriptionEndDate: s.SubscriptionEndDate,
		MaxEmployees: s.MaxEmployees, MaxProjects: s.MaxProjects,
		CurrentEmployees: s.CurrentEmployees, CurrentProjects: s.CurrentProjects,
		BaseFee: s.BaseFee, EmployeeFee: s.EmployeeFee, ProjectFee: s.ProjectFee, TotalAmount: s.TotalAmount,
		LastPaymentDate: s.LastPaymentDate, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func (e cacheEntry) toEntity() *entity.Subscription {
	return &entity.Subscription{
		ID: e.ID, OwnerID: e.OwnerID, Status: entity.SubscriptionStatus(e.Status),
		TrialStartDate: e.TrialStartDate, TrialEndDate: e.TrialEndDate,
		SubscriptionStartDate: e.SubscriptionStartDate, SubscriptionEndDate: e.SubscriptionEndDate,
		MaxEmployees: e.MaxEmployees, MaxProjects: e.MaxProjects,
		CurrentEmployees: e.CurrentEmployees, CurrentProjects: e.CurrentProjects,
		BaseFee: e.BaseFee, EmployeeFee: e.EmployeeFee, ProjectFee: e.ProjectFee, TotalAmount: e.TotalAmount,
		LastPaymentDate: e.LastPaymentDate, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}
