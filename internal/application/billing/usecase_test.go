package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/apptest"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/billing"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/money"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newUseCase(t *testing.T) (*billing.UseCase, *apptest.Store, *apptest.FixedClock) {
	t.Helper()
	store := apptest.NewStore()
	clock := apptest.NewClock(t0)
	formatter, err := money.NewFormatter("USD", language.English)
	require.NoError(t, err)
	uc := billing.NewUseCase(store.Subscriptions(), store, subscription.Default(), formatter, clock.Now, zerolog.Nop())
	return uc, store, clock
}

func TestStartTrial(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()

	out, err := uc.StartTrial(ctx, "firma-1")
	require.NoError(t, err)
	assert.Equal(t, "trial", out.BillingStatus)
	assert.Equal(t, "active", out.Status)
	assert.Equal(t, 3, out.DaysRemaining)
	assert.Equal(t, "free trial: 3 days remaining", out.Message)
	assert.True(t, out.Entitlements.NeedsWatermark)
	assert.False(t, out.Entitlements.CanExportPDF)
	assert.False(t, out.Entitlements.CanAddEmployee)
	assert.Equal(t, "USD", out.Currency)

	_, ok := store.Subscription("firma-1")
	assert.True(t, ok)

	_, err = uc.StartTrial(ctx, "firma-1")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.StartTrial(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStatus_AvisoYVencimiento(t *testing.T) {
	uc, _, clock := newUseCase(t)
	ctx := context.Background()
	_, err := uc.StartTrial(ctx, "firma-1")
	require.NoError(t, err)

	clock.Advance(36 * time.Hour)
	out, err := uc.Status(ctx, "firma-1")
	require.NoError(t, err)
	assert.Equal(t, "warning", out.Status)
	assert.Equal(t, 2, out.DaysRemaining)
	assert.Equal(t, "trial expires in 2 days, purchase to continue", out.Message)

	clock.Advance(48 * time.Hour)
	out, err = uc.Status(ctx, "firma-1")
	require.NoError(t, err)
	assert.Equal(t, "expired", out.Status)
	assert.Equal(t, "trial expired, purchase to continue", out.Message)
	assert.Equal(t, "trial", out.BillingStatus, "el estado almacenado no cambia hasta el barrido")
}

func TestStatus_SinSuscripcion(t *testing.T) {
	uc, _, _ := newUseCase(t)
	_, err := uc.Status(context.Background(), "nadie")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatus_SnapshotInvalido(t *testing.T) {
	uc, store, _ := newUseCase(t)
	store.PutSubscription(&entity.Subscription{OwnerID: "firma-x", Status: "suspended"})

	_, err := uc.Status(context.Background(), "firma-x")
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionState)
}

func TestQuote(t *testing.T) {
	uc, _, _ := newUseCase(t)

	out, err := uc.Quote(dto.QuoteRequest{MaxEmployees: 5, MaxProjects: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Months)
	assert.True(t, out.MonthlyAmount.Equal(decimal.NewFromInt(150)))
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(150)))

	out, err = uc.Quote(dto.QuoteRequest{MaxEmployees: 5, MaxProjects: 3, Months: 12})
	require.NoError(t, err)
	assert.True(t, out.MonthlyAmount.Equal(decimal.NewFromInt(115)))
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(1380)))
	assert.Contains(t, out.TotalFormatted, "$")

	tests := []dto.QuoteRequest{
		{MaxEmployees: -1},
		{MaxProjects: -3},
		{Months: 37},
		{Months: -1},
	}
	for _, in := range tests {
		_, err := uc.Quote(in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
}

func TestPurchase_DesdeTrial(t *testing.T) {
	uc, store, clock := newUseCase(t)
	ctx := context.Background()
	_, err := uc.StartTrial(ctx, "firma-1")
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)

	out, err := uc.Purchase(ctx, "firma-1", dto.PurchaseRequest{MaxEmployees: 5, MaxProjects: 10})
	require.NoError(t, err)
	assert.Equal(t, "active", out.BillingStatus)
	assert.Equal(t, "active", out.Status)
	assert.Equal(t, 31, out.DaysRemaining)
	assert.True(t, out.Entitlements.CanExportPDF)
	assert.True(t, out.Entitlements.CanExportExcel)
	assert.True(t, out.Entitlements.CanAddEmployee)
	assert.False(t, out.Entitlements.NeedsWatermark)
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(150)))

	stored, _ := store.Subscription("firma-1")
	assert.Equal(t, entity.SubscriptionActive, stored.Status)
	require.NotNil(t, stored.LastPaymentDate)
	assert.Equal(t, clock.Now(), *stored.LastPaymentDate)
}

func TestPurchase_PaqueteMenorQueUsoNoPersiste(t *testing.T) {
	uc, store, _ := newUseCase(t)
	end := t0.AddDate(0, 0, 20)
	start := t0.AddDate(0, 0, -10)
	store.PutSubscription(&entity.Subscription{
		OwnerID: "firma-1", Status: entity.SubscriptionActive,
		TrialStartDate: start.AddDate(0, 0, -3), TrialEndDate: start,
		SubscriptionStartDate: &start, SubscriptionEndDate: &end,
		MaxEmployees: 5, MaxProjects: 5, CurrentEmployees: 4, CurrentProjects: 1,
	})

	_, err := uc.Purchase(context.Background(), "firma-1", dto.PurchaseRequest{MaxEmployees: 3, MaxProjects: 5, Months: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)

	stored, _ := store.Subscription("firma-1")
	assert.Equal(t, 5, stored.MaxEmployees)
	assert.Equal(t, end, *stored.SubscriptionEndDate)
	assert.Zero(t, store.Commits)
}

func TestPurchase_Validaciones(t *testing.T) {
	uc, _, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Purchase(ctx, "firma-1", dto.PurchaseRequest{MaxEmployees: -1, Months: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Purchase(ctx, "nadie", dto.PurchaseRequest{MaxEmployees: 1, Months: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlockUnblock(t *testing.T) {
	uc, _, _ := newUseCase(t)
	ctx := context.Background()
	_, err := uc.StartTrial(ctx, "firma-1")
	require.NoError(t, err)
	_, err = uc.Purchase(ctx, "firma-1", dto.PurchaseRequest{MaxEmployees: 2, MaxProjects: 2, Months: 1})
	require.NoError(t, err)

	out, err := uc.Block(ctx, "firma-1")
	require.NoError(t, err)
	assert.Equal(t, "blocked", out.Status)
	assert.Equal(t, "account blocked, purchase to continue", out.Message)
	assert.False(t, out.Entitlements.CanExportPDF)

	_, err = uc.Block(ctx, "firma-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	out, err = uc.Unblock(ctx, "firma-1")
	require.NoError(t, err)
	assert.Equal(t, "active", out.BillingStatus, "la ventana pagada sigue abierta")

	_, err = uc.Unblock(ctx, "firma-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUnblock_SinVentanaQuedaExpirada(t *testing.T) {
	uc, _, _ := newUseCase(t)
	ctx := context.Background()
	_, err := uc.StartTrial(ctx, "firma-1")
	require.NoError(t, err)
	_, err = uc.Block(ctx, "firma-1")
	require.NoError(t, err)

	out, err := uc.Unblock(ctx, "firma-1")
	require.NoError(t, err)
	assert.Equal(t, "expired", out.BillingStatus)
}

func TestExpireOverdue(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()

	pastEnd := t0.Add(-time.Hour)
	futureEnd := t0.AddDate(0, 0, 30)
	paidStart := t0.AddDate(0, -1, 0)
	trialStart := paidStart.AddDate(0, 0, -3)

	store.PutSubscription(&entity.Subscription{
		OwnerID: "a-trial-vencido", Status: entity.SubscriptionTrial,
		TrialStartDate: t0.AddDate(0, 0, -4), TrialEndDate: t0.AddDate(0, 0, -1),
	})
	store.PutSubscription(&entity.Subscription{
		OwnerID: "b-plan-vencido", Status: entity.SubscriptionActive,
		TrialStartDate: trialStart, TrialEndDate: paidStart,
		SubscriptionStartDate: &paidStart, SubscriptionEndDate: &pastEnd,
	})
	store.PutSubscription(&entity.Subscription{
		OwnerID: "c-plan-vigente", Status: entity.SubscriptionActive,
		TrialStartDate: trialStart, TrialEndDate: paidStart,
		SubscriptionStartDate: &paidStart, SubscriptionEndDate: &futureEnd,
	})
	store.PutSubscription(&entity.Subscription{
		OwnerID: "d-invalida", Status: entity.SubscriptionTrial,
		TrialStartDate: t0.AddDate(0, 0, -4), TrialEndDate: t0.AddDate(0, 0, -1),
		CurrentEmployees: -1,
	})

	out, err := uc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Checked)
	assert.Equal(t, []string{"a-trial-vencido", "b-plan-vencido"}, out.Expired)

	a, _ := store.Subscription("a-trial-vencido")
	assert.Equal(t, entity.SubscriptionExpired, a.Status)
	c, _ := store.Subscription("c-plan-vigente")
	assert.Equal(t, entity.SubscriptionActive, c.Status)
	d, _ := store.Subscription("d-invalida")
	assert.Equal(t, entity.SubscriptionTrial, d.Status)

	again, err := uc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Checked, "solo queda la inválida")
	assert.Empty(t, again.Expired)
}

func TestExpireOverdue_ErrorDeListado(t *testing.T) {
	uc, store, _ := newUseCase(t)
	store.ListDueErr = errors.New("db caída")

	_, err := uc.ExpireOverdue(context.Background())
	assert.Error(t, err)
}

func TestExpireOverdue_InvalidasNoFrenanElBarrido(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()

	// Más inválidas que un lote completo, todas antes en el orden de owner_id.
	for i := 0; i < 250; i++ {
		store.PutSubscription(&entity.Subscription{
			OwnerID: fmt.Sprintf("a-invalida-%03d", i), Status: entity.SubscriptionTrial,
			TrialStartDate: t0.AddDate(0, 0, -4), TrialEndDate: t0.AddDate(0, 0, -1),
			CurrentProjects: -1,
		})
	}
	store.PutSubscription(&entity.Subscription{
		OwnerID: "z-trial-vencido", Status: entity.SubscriptionTrial,
		TrialStartDate: t0.AddDate(0, 0, -4), TrialEndDate: t0.AddDate(0, 0, -1),
	})

	out, err := uc.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 251, out.Checked)
	assert.Equal(t, []string{"z-trial-vencido"}, out.Expired)

	z, _ := store.Subscription("z-trial-vencido")
	assert.Equal(t, entity.SubscriptionExpired, z.Status)
}

func TestExpireOverdue_FalloAlGuardarNoSeInforma(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()

	for _, owner := range []string{"a-trial-vencido", "b-trial-vencido"} {
		store.PutSubscription(&entity.Subscription{
			OwnerID: owner, Status: entity.SubscriptionTrial,
			TrialStartDate: t0.AddDate(0, 0, -4), TrialEndDate: t0.AddDate(0, 0, -1),
		})
	}
	store.UpdateErr = map[string]error{"b-trial-vencido": errors.New("conexión perdida")}

	out, err := uc.ExpireOverdue(ctx)
	require.Error(t, err)
	require.NotNil(t, out)
	assert.Equal(t, []string{"a-trial-vencido"}, out.Expired)

	b, _ := store.Subscription("b-trial-vencido")
	assert.Equal(t, entity.SubscriptionTrial, b.Status)
}

func TestCheck(t *testing.T) {
	uc, store, _ := newUseCase(t)
	ctx := context.Background()
	_, err := uc.StartTrial(ctx, "firma-1")
	require.NoError(t, err)

	for _, ent := range []billing.Entitlement{
		billing.EntitlementAddEmployee, billing.EntitlementAddProject,
		billing.EntitlementExportPDF, billing.EntitlementExportExcel,
	} {
		ok, err := uc.Check(ctx, "firma-1", ent)
		require.NoError(t, err)
		assert.False(t, ok, "trial: %s", ent)
	}

	_, err = uc.Purchase(ctx, "firma-1", dto.PurchaseRequest{MaxEmployees: 1, MaxProjects: 0, Months: 1})
	require.NoError(t, err)

	ok, err := uc.Check(ctx, "firma-1", billing.EntitlementAddEmployee)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = uc.Check(ctx, "firma-1", billing.EntitlementAddProject)
	require.NoError(t, err)
	assert.False(t, ok, "capacidad de proyectos en cero")
	ok, err = uc.Check(ctx, "firma-1", billing.EntitlementExportExcel)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = uc.Check(ctx, "firma-1", billing.Entitlement("import_csv"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	store.PutSubscription(&entity.Subscription{OwnerID: "firma-2", Status: entity.SubscriptionActive})
	_, err = uc.Check(ctx, "firma-2", billing.EntitlementExportPDF)
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionState)
}
