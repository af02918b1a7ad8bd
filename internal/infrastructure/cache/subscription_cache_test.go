package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/infrastructure/cache"
)

// fakeRepo cuenta las lecturas que llegan a la fuente.
type fakeRepo struct {
	subs  map[string]*entity.Subscription
	reads int
	// afterRead, si está definido, corre después de copiar el registro leído.
	afterRead func()
}

func (f *fakeRepo) GetByOwnerID(_ context.Context, ownerID string) (*entity.Subscription, error) {
	f.reads++
	s, ok := f.subs[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	if f.afterRead != nil {
		f.afterRead()
	}
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, s *entity.Subscription) error {
	cp := *s
	f.subs[s.OwnerID] = &cp
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, s *entity.Subscription) error {
	return f.Create(ctx, s)
}

func (f *fakeRepo) ListDue(context.Context, time.Time, string, int) ([]*entity.Subscription, error) {
	return nil, nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *fakeRepo, *cache.SubscriptionCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &fakeRepo{subs: map[string]*entity.Subscription{}}
	return mr, repo, cache.NewSubscriptionCache(client, repo, time.Minute, zerolog.Nop())
}

func sampleSub() *entity.Subscription {
	start := time.Date(2024, 5, 1, 9, 30, 0, 123456789, time.UTC)
	end := start.AddDate(0, 1, 0)
	return &entity.Subscription{
		ID:                    "s-1",
		OwnerID:               "c-1",
		Status:                entity.SubscriptionActive,
		TrialStartDate:        start.AddDate(0, 0, -3),
		TrialEndDate:          start,
		SubscriptionStartDate: &start,
		SubscriptionEndDate:   &end,
		MaxEmployees:          5,
		MaxProjects:           10,
		CurrentEmployees:      2,
		BaseFee:               decimal.NewFromInt(50),
		EmployeeFee:           decimal.NewFromInt(10),
		ProjectFee:            decimal.NewFromInt(5),
		TotalAmount:           decimal.RequireFromString("150.00"),
	}
}

func TestGetByOwnerID_SegundaLecturaDesdeCache(t *testing.T) {
	_, repo, c := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleSub()))

	first, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)
	second, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.reads, "la segunda lectura no debe llegar a la fuente")
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.SubscriptionEndDate.Equal(*second.SubscriptionEndDate), "las fechas viajan sin pérdida")
	assert.True(t, first.TrialStartDate.Equal(second.TrialStartDate))
	assert.True(t, second.TotalAmount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 2, second.CurrentEmployees)
	assert.Nil(t, second.LastPaymentDate)
}

func TestUpdate_InvalidaCache(t *testing.T) {
	_, repo, c := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleSub()))

	_, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)

	updated := sampleSub()
	updated.Status = entity.SubscriptionBlocked
	require.NoError(t, c.Update(ctx, updated))

	got, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionBlocked, got.Status)
	assert.Equal(t, 2, repo.reads)
}

func TestGetByOwnerID_InvalidacionDuranteLecturaNoRepuebla(t *testing.T) {
	mr, repo, c := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleSub()))

	// Otra escritura confirma e invalida entre la lectura de la fuente y el Set.
	repo.afterRead = func() {
		repo.afterRead = nil
		blocked := sampleSub()
		blocked.Status = entity.SubscriptionBlocked
		require.NoError(t, c.Update(ctx, blocked))
	}

	stale, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionActive, stale.Status)
	assert.False(t, mr.Exists("subscription:owner:c-1"), "el snapshot viejo no debe quedar cacheado")

	got, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionBlocked, got.Status)
	assert.Equal(t, 2, repo.reads)
	assert.True(t, mr.Exists("subscription:owner:c-1"))
}

func TestGetByOwnerID_NoCacheaNotFound(t *testing.T) {
	mr, repo, c := setup(t)
	ctx := context.Background()

	_, err := c.GetByOwnerID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mr.Exists("subscription:owner:missing"))
	assert.Equal(t, 1, repo.reads)
}

func TestGetByOwnerID_ExpiraPorTTL(t *testing.T) {
	mr, repo, c := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleSub()))

	_, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)
}

func TestGetByOwnerID_RedisCaidoDegradaAFuente(t *testing.T) {
	mr, repo, c := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleSub()))
	mr.Close()

	got, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", got.OwnerID)
}

func TestGetByOwnerID_EntradaCorrupta(t *testing.T) {
	mr, repo, c := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleSub()))
	require.NoError(t, mr.Set("subscription:owner:c-1", "{no-json"))

	got, err := c.GetByOwnerID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionActive, got.Status)
	assert.Equal(t, 1, repo.reads)
}
