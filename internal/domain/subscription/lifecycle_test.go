package subscription_test

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func day(n float64) time.Duration {
	return time.Duration(n * float64(24*time.Hour))
}

func trialSub(start time.Time) *entity.Subscription {
	return &entity.Subscription{
		ID:             "sub-1",
		OwnerID:        "u1",
		Status:         entity.SubscriptionTrial,
		TrialStartDate: start,
		TrialEndDate:   start.Add(day(3)),
	}
}

func activeSub(end time.Time) *entity.Subscription {
	s := trialSub(t0)
	s.Status = entity.SubscriptionActive
	start := t0
	s.SubscriptionStartDate = &start
	s.SubscriptionEndDate = &end
	s.MaxEmployees = 5
	s.MaxProjects = 10
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateTrial / CalculateAmount
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateTrial_VentanaDeTresDias(t *testing.T) {
	lc := subscription.Default()
	sub, err := lc.CreateTrial("u1", t0)
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriptionTrial, sub.Status)
	assert.Equal(t, "u1", sub.OwnerID)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, 3*24*time.Hour, sub.TrialEndDate.Sub(sub.TrialStartDate))
	assert.Zero(t, sub.MaxEmployees)
	assert.Zero(t, sub.MaxProjects)
	assert.Zero(t, sub.CurrentEmployees)
	assert.Zero(t, sub.CurrentProjects)
	assert.True(t, sub.BaseFee.Equal(decimal.NewFromInt(50)))
	assert.True(t, sub.EmployeeFee.Equal(decimal.NewFromInt(10)))
	assert.True(t, sub.ProjectFee.Equal(decimal.NewFromInt(5)))
	assert.True(t, sub.TotalAmount.IsZero())
	assert.Nil(t, sub.SubscriptionEndDate)
}


func TestCreateTrial_CruzandoCambioDeHorario(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// El 10 de marzo de 2024 Nueva York adelanta una hora.
	start := time.Date(2024, 3, 9, 12, 0, 0, 0, ny)

	sub, err := subscription.Default().CreateTrial("u1", start)
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, sub.TrialEndDate.Sub(sub.TrialStartDate))
	assert.Equal(t, 3, subscription.DaysUntil(sub.TrialEndDate, start))
}

func TestCreateTrial_OwnerVacio(t *testing.T) {
	_, err := subscription.Default().CreateTrial("  ", t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCalculateAmount(t *testing.T) {
	lc := subscription.Default()
	cases := []struct {
		e, p int
		want int64
	}{
		{0, 0, 50},
		{5, 10, 150},
		{1, 0, 60},
		{0, 1, 55},
		{20, 40, 450},
	}
	for _, c := range cases {
		got := lc.CalculateAmount(c.e, c.p)
		assert.True(t, got.Equal(decimal.NewFromInt(c.want)), "calculateAmount(%d,%d)=%s", c.e, c.p, got)
	}
}

func TestCalculateAmount_PlanAlternativo(t *testing.T) {
	plan := subscription.DefaultPlan()
	plan.BaseFee = decimal.NewFromInt(100)
	plan.EmployeeFee = decimal.RequireFromString("2.5")
	lc, err := subscription.NewLifecycle(plan)
	require.NoError(t, err)

	assert.Equal(t, "112.5", lc.CalculateAmount(1, 2).String())
}

func TestNewLifecycle_PlanInvalido(t *testing.T) {
	plan := subscription.DefaultPlan()
	plan.ProjectFee = decimal.NewFromInt(-1)
	_, err := subscription.NewLifecycle(plan)
	assert.Error(t, err)

	plan = subscription.DefaultPlan()
	plan.TrialDays = 0
	_, err = subscription.NewLifecycle(plan)
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetStatus
// ──────────────────────────────────────────────────────────────────────────────

func TestGetStatus_Trial(t *testing.T) {
	lc := subscription.Default()
	cases := []struct {
		name    string
		elapsed time.Duration
		status  subscription.DisplayStatus
		days    int
		message string
	}{
		{"recién creado", 0, subscription.DisplayActive, 3, "free trial: 3 days remaining"},
		{"medio día", day(0.5), subscription.DisplayActive, 3, "free trial: 3 days remaining"},
		{"un día exacto", day(1), subscription.DisplayWarning, 2, "trial expires in 2 days, purchase to continue"},
		{"2.5 días", day(2.5), subscription.DisplayWarning, 1, "trial expires in 1 day, purchase to continue"},
		{"30 minutos antes", day(3) - 30*time.Minute, subscription.DisplayWarning, 1, "trial expires in 1 day, purchase to continue"},
		{"vencimiento exacto", day(3), subscription.DisplayExpired, 0, "trial expired, purchase to continue"},
		{"vencido hace días", day(10), subscription.DisplayExpired, 0, "trial expired, purchase to continue"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := lc.GetStatus(trialSub(t0), t0.Add(c.elapsed))
			require.NoError(t, err)
			assert.Equal(t, c.status, res.Status)
			assert.Equal(t, c.days, res.DaysRemaining)
			assert.Equal(t, c.message, res.Message)
		})
	}
}

func TestGetStatus_Paid(t *testing.T) {
	lc := subscription.Default()
	end := t0.Add(day(10))
	cases := []struct {
		name    string
		now     time.Time
		status  subscription.DisplayStatus
		days    int
		message string
	}{
		{"diez días", t0, subscription.DisplayActive, 10, "active subscription: 10 days remaining"},
		{"ocho días", t0.Add(day(2)), subscription.DisplayActive, 8, "active subscription: 8 days remaining"},
		{"seis días: umbral pagado", t0.Add(day(4)), subscription.DisplayWarning, 6, "subscription expires in 6 days"},
		{"siete días: límite inclusivo", t0.Add(day(3)), subscription.DisplayWarning, 7, "subscription expires in 7 days"},
		{"un día", t0.Add(day(9.9)), subscription.DisplayWarning, 1, "subscription expires in 1 day"},
		{"vencida", t0.Add(day(10)), subscription.DisplayExpired, 0, "subscription expired, renew to continue"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := lc.GetStatus(activeSub(end), c.now)
			require.NoError(t, err)
			assert.Equal(t, c.status, res.Status)
			assert.Equal(t, c.days, res.DaysRemaining)
			assert.Equal(t, c.message, res.Message)
		})
	}
}

// El umbral de aviso del trial (2) y del plan pago (7) son distintos.
func TestGetStatus_UmbralesAsimetricos(t *testing.T) {
	lc := subscription.Default()

	trial := trialSub(t0)
	trial.TrialEndDate = t0.Add(day(5))
	res, err := lc.GetStatus(trial, t0)
	require.NoError(t, err)
	assert.Equal(t, subscription.DisplayActive, res.Status, "trial con 5 días no está en aviso")

	res, err = lc.GetStatus(activeSub(t0.Add(day(5))), t0)
	require.NoError(t, err)
	assert.Equal(t, subscription.DisplayWarning, res.Status, "plan pago con 5 días sí está en aviso")
}

func TestGetStatus_BloqueoGanaSobreFechas(t *testing.T) {
	lc := subscription.Default()

	trial := trialSub(t0)
	trial.Status = entity.SubscriptionBlocked
	res, err := lc.GetStatus(trial, t0)
	require.NoError(t, err)
	assert.Equal(t, subscription.DisplayBlocked, res.Status)
	assert.Zero(t, res.DaysRemaining)
	assert.Equal(t, "account blocked, purchase to continue", res.Message)

	paid := activeSub(t0.Add(day(300)))
	paid.Status = entity.SubscriptionBlocked
	res, err = lc.GetStatus(paid, t0)
	require.NoError(t, err)
	assert.Equal(t, subscription.DisplayBlocked, res.Status)
}

func TestGetStatus_BloqueadaConFechasInconsistentes(t *testing.T) {
	lc := subscription.Default()
	before := t0.Add(-time.Hour)

	tests := map[string]*entity.Subscription{
		"trial invertido": {
			OwnerID: "u1", Status: entity.SubscriptionBlocked,
			TrialStartDate: t0, TrialEndDate: before,
		},
		"ventana pagada invertida": {
			OwnerID: "u1", Status: entity.SubscriptionBlocked,
			TrialStartDate: t0, TrialEndDate: t0.Add(day(3)),
			SubscriptionStartDate: &t0, SubscriptionEndDate: &before,
		},
		"solo fin de suscripción": {
			OwnerID: "u1", Status: entity.SubscriptionBlocked,
			SubscriptionEndDate: &before,
		},
		"sin fechas": {
			OwnerID: "u1", Status: entity.SubscriptionBlocked,
		},
	}
	for name, sub := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := lc.GetStatus(sub, t0)
			require.NoError(t, err)
			assert.Equal(t, subscription.DisplayBlocked, res.Status)
			assert.Zero(t, res.DaysRemaining)
			assert.Equal(t, "account blocked, purchase to continue", res.Message)
		})
	}
}

func TestGetStatus_ActivaConVentanaInvertida(t *testing.T) {
	lc := subscription.Default()
	sub := activeSub(t0.Add(-time.Hour))
	_, err := lc.GetStatus(sub, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionState)
}

func TestGetStatus_Fallback(t *testing.T) {
	lc := subscription.Default()

	noEnd := trialSub(t0)
	noEnd.Status = entity.SubscriptionActive
	res, err := lc.GetStatus(noEnd, t0)
	require.NoError(t, err)
	assert.Equal(t, subscription.DisplayExpired, res.Status)
	assert.Equal(t, "no active subscription", res.Message)

	expired := trialSub(t0)
	expired.Status = entity.SubscriptionExpired
	res, err = lc.GetStatus(expired, t0)
	require.NoError(t, err)
	assert.Equal(t, subscription.DisplayExpired, res.Status)
	assert.Zero(t, res.DaysRemaining)
}

func TestGetStatus_EstadoInvalido(t *testing.T) {
	lc := subscription.Default()

	unknown := trialSub(t0)
	unknown.Status = "paused"
	_, err := lc.GetStatus(unknown, t0)
	assert.True(t, errors.Is(err, domain.ErrInvalidSubscriptionState))

	noDates := &entity.Subscription{OwnerID: "u1", Status: entity.SubscriptionActive}
	_, err = lc.GetStatus(noDates, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionState)

	noTrial := &entity.Subscription{OwnerID: "u1", Status: entity.SubscriptionTrial}
	_, err = lc.GetStatus(noTrial, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionState)

	reversed := trialSub(t0)
	reversed.TrialEndDate = t0.Add(-time.Hour)
	_, err = lc.GetStatus(reversed, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionState)

	_, err = lc.GetStatus(nil, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionState)
}

func TestGetStatus_PlanConOtroUmbral(t *testing.T) {
	plan := subscription.DefaultPlan()
	plan.TrialWarningDays = 0
	lc, err := subscription.NewLifecycle(plan)
	require.NoError(t, err)

	res, err := lc.GetStatus(trialSub(t0), t0.Add(day(2.5)))
	require.NoError(t, err)
	assert.Equal(t, subscription.DisplayActive, res.Status)
	assert.Equal(t, "free trial: 1 day remaining", res.Message)
}

func TestDaysUntil_RedondeoHaciaArriba(t *testing.T) {
	assert.Equal(t, 1, subscription.DaysUntil(t0.Add(30*time.Minute), t0))
	assert.Equal(t, 1, subscription.DaysUntil(t0.Add(time.Millisecond), t0))
	assert.Equal(t, 0, subscription.DaysUntil(t0, t0))
	assert.Equal(t, 0, subscription.DaysUntil(t0.Add(-12*time.Hour), t0))
	assert.Equal(t, -1, subscription.DaysUntil(t0.Add(-36*time.Hour), t0))
	assert.Equal(t, 2, subscription.DaysUntil(t0.Add(day(1)+time.Second), t0))
}

// ──────────────────────────────────────────────────────────────────────────────
// Habilitaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCanAddEmployee(t *testing.T) {
	lc := subscription.Default()

	trial := trialSub(t0)
	trial.MaxEmployees = 10 // hipotético: el trial nunca agrega empleados
	assert.False(t, lc.CanAddEmployee(trial))

	active := activeSub(t0.Add(day(30)))
	active.CurrentEmployees = 4
	assert.True(t, lc.CanAddEmployee(active))
	active.CurrentEmployees = 5
	assert.False(t, lc.CanAddEmployee(active))

	blocked := activeSub(t0.Add(day(30)))
	blocked.Status = entity.SubscriptionBlocked
	assert.False(t, lc.CanAddEmployee(blocked))

	expired := activeSub(t0.Add(day(30)))
	expired.Status = entity.SubscriptionExpired
	assert.True(t, lc.CanAddEmployee(expired), "expired conserva las capacidades compradas")

	unknown := activeSub(t0.Add(day(30)))
	unknown.Status = "paused"
	assert.False(t, lc.CanAddEmployee(unknown))
	assert.False(t, lc.CanAddEmployee(nil))
}

func TestCanAddProject(t *testing.T) {
	lc := subscription.Default()

	trial := trialSub(t0)
	trial.MaxProjects = 3
	assert.False(t, lc.CanAddProject(trial))

	active := activeSub(t0.Add(day(30)))
	active.CurrentProjects = 9
	assert.True(t, lc.CanAddProject(active))
	active.CurrentProjects = 10
	assert.False(t, lc.CanAddProject(active))

	active.Status = entity.SubscriptionBlocked
	active.CurrentProjects = 0
	assert.False(t, lc.CanAddProject(active))
}

func TestExportYMarcaDeAgua(t *testing.T) {
	lc := subscription.Default()
	cases := []struct {
		status    entity.SubscriptionStatus
		export    bool
		watermark bool
	}{
		{entity.SubscriptionTrial, false, true},
		{entity.SubscriptionActive, true, false},
		{entity.SubscriptionExpired, false, false},
		{entity.SubscriptionBlocked, false, false},
	}
	for _, c := range cases {
		s := activeSub(t0.Add(day(30)))
		s.Status = c.status
		assert.Equal(t, c.export, lc.CanExportPDF(s), "pdf %s", c.status)
		assert.Equal(t, c.export, lc.CanExportExcel(s), "excel %s", c.status)
		assert.Equal(t, c.watermark, lc.NeedsWatermark(s), "watermark %s", c.status)
	}
}

// Un trial totalmente activo (sin aviso) tampoco exporta.
func TestExport_TrialSinAvisoNoExporta(t *testing.T) {
	lc := subscription.Default()
	s := trialSub(t0)
	res, err := lc.GetStatus(s, t0)
	require.NoError(t, err)
	require.Equal(t, subscription.DisplayActive, res.Status)

	assert.False(t, lc.CanExportPDF(s))
	assert.False(t, lc.CanExportExcel(s))
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de punta a punta
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_TrialDosDiasYMedio(t *testing.T) {
	lc := subscription.Default()
	sub, err := lc.CreateTrial("u1", t0)
	require.NoError(t, err)

	res, err := lc.GetStatus(sub, t0.Add(day(2.5)))
	require.NoError(t, err)
	assert.Equal(t, 1, res.DaysRemaining)
	assert.Equal(t, subscription.DisplayWarning, res.Status)
	assert.Contains(t, res.Message, "1 day")
}

func TestEscenario_PagoConDiezDias(t *testing.T) {
	lc := subscription.Default()
	res, err := lc.GetStatus(activeSub(t0.Add(day(10))), t0.Add(day(4)))
	require.NoError(t, err)
	assert.Equal(t, 6, res.DaysRemaining)
	assert.Equal(t, subscription.DisplayWarning, res.Status)
}
