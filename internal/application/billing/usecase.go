package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
	"github.com/tauntify/ASPMS-PRO-sub002/pkg/money"
)

const sweepBatch = 200

// UseCase casos de uso de la suscripción: estado, cotización, compra y acciones administrativas.
// Es el único punto de la aplicación que persiste cambios de estado de la suscripción.
type UseCase struct {
	subs  repository.SubscriptionRepository
	tx    TxRunner
	lc    *subscription.Lifecycle
	money *money.Formatter
	now   Clock
	log   zerolog.Logger
}

// NewUseCase construye el caso de uso inyectando sus dependencias.
func NewUseCase(
	subs repository.SubscriptionRepository,
	tx TxRunner,
	lc *subscription.Lifecycle,
	formatter *money.Formatter,
	now Clock,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{subs: subs, tx: tx, lc: lc, money: formatter, now: now, log: log}
}

// StartTrial crea el trial de una cuenta existente que aún no tiene suscripción.
func (uc *UseCase) StartTrial(ctx context.Context, ownerID string) (*dto.SubscriptionStatusResponse, error) {
	sub, err := uc.lc.CreateTrial(ownerID, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	uc.log.Info().Str("owner_id", ownerID).Time("trial_end", sub.TrialEndDate).Msg("trial iniciado")
	return uc.Present(sub)
}

// Status devuelve el estado derivado y las habilitaciones de la cuenta.
func (uc *UseCase) Status(ctx context.Context, ownerID string) (*dto.SubscriptionStatusResponse, error) {
	sub, err := uc.subs.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return uc.Present(sub)
}

// Present arma la respuesta de estado para un snapshot ya cargado.
func (uc *UseCase) Present(sub *entity.Subscription) (*dto.SubscriptionStatusResponse, error) {
	res, err := uc.lc.GetStatus(sub, uc.now())
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionStatusResponse{
		OwnerID:               sub.OwnerID,
		BillingStatus:         string(sub.Status),
		Status:                string(res.Status),
		DaysRemaining:         res.DaysRemaining,
		Message:               res.Message,
		TrialEndDate:          sub.TrialEndDate,
		SubscriptionStartDate: sub.SubscriptionStartDate,
		SubscriptionEndDate:   sub.SubscriptionEndDate,
		LastPaymentDate:       sub.LastPaymentDate,
		Usage: dto.UsageResponse{
			MaxEmployees:     sub.MaxEmployees,
			MaxProjects:      sub.MaxProjects,
			CurrentEmployees: sub.CurrentEmployees,
			CurrentProjects:  sub.CurrentProjects,
		},
		Entitlements: dto.EntitlementsResponse{
			CanAddEmployee: uc.lc.CanAddEmployee(sub),
			CanAddProject:  uc.lc.CanAddProject(sub),
			CanExportPDF:   uc.lc.CanExportPDF(sub),
			CanExportExcel: uc.lc.CanExportExcel(sub),
			NeedsWatermark: uc.lc.NeedsWatermark(sub),
		},
		TotalAmount:          sub.TotalAmount,
		TotalAmountFormatted: uc.money.Format(sub.TotalAmount),
		Currency:             uc.money.Code(),
	}, nil
}

// Quote cotiza un paquete. A diferencia de CalculateAmount, aquí sí se validan negativos.
func (uc *UseCase) Quote(in dto.QuoteRequest) (*dto.QuoteResponse, error) {
	if in.Months == 0 {
		in.Months = 1
	}
	pkg := subscription.Package{MaxEmployees: in.MaxEmployees, MaxProjects: in.MaxProjects, Months: in.Months}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	monthly := uc.lc.CalculateAmount(in.MaxEmployees, in.MaxProjects)
	total := monthly.Mul(decimal.NewFromInt(int64(in.Months)))
	return &dto.QuoteResponse{
		MaxEmployees:     in.MaxEmployees,
		MaxProjects:      in.MaxProjects,
		Months:           in.Months,
		MonthlyAmount:    uc.money.Round(monthly),
		TotalAmount:      uc.money.Round(total),
		MonthlyFormatted: uc.money.Format(monthly),
		TotalFormatted:   uc.money.Format(total),
		Currency:         uc.money.Code(),
	}, nil
}

// Purchase registra la compra de un paquete (el cobro lo hace un proveedor externo).
func (uc *UseCase) Purchase(ctx context.Context, ownerID string, in dto.PurchaseRequest) (*dto.SubscriptionStatusResponse, error) {
	if in.Months == 0 {
		in.Months = 1
	}
	pkg := subscription.Package{MaxEmployees: in.MaxEmployees, MaxProjects: in.MaxProjects, Months: in.Months}
	if err := pkg.Validate(); err != nil {
		return nil, err
	}

	var updated *entity.Subscription
	err := uc.tx.RunSubscription(ctx, func(subs repository.LockingSubscriptionRepository) error {
		sub, err := subs.GetByOwnerIDForUpdate(ctx, ownerID)
		if err != nil {
			return err
		}
		updated, err = uc.lc.Purchase(sub, pkg, uc.now())
		if err != nil {
			return err
		}
		uc.log.Info().
			Str("owner_id", ownerID).
			Str("from", string(sub.Status)).
			Str("to", string(updated.Status)).
			Int("months", pkg.Months).
			Str("amount", updated.TotalAmount.StringFixed(2)).
			Msg("paquete comprado")
		return subs.Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}
	return uc.Present(updated)
}

// Block bloqueo administrativo de la cuenta.
func (uc *UseCase) Block(ctx context.Context, ownerID string) (*dto.SubscriptionStatusResponse, error) {
	return uc.transition(ctx, ownerID, "bloqueo", uc.lc.Block)
}

// Unblock levanta el bloqueo: active si la ventana pagada sigue abierta, si no expired.
func (uc *UseCase) Unblock(ctx context.Context, ownerID string) (*dto.SubscriptionStatusResponse, error) {
	return uc.transition(ctx, ownerID, "desbloqueo", uc.lc.Unblock)
}

func (uc *UseCase) transition(
	ctx context.Context,
	ownerID, action string,
	apply func(*entity.Subscription, time.Time) (*entity.Subscription, error),
) (*dto.SubscriptionStatusResponse, error) {
	var updated *entity.Subscription
	err := uc.tx.RunSubscription(ctx, func(subs repository.LockingSubscriptionRepository) error {
		sub, err := subs.GetByOwnerIDForUpdate(ctx, ownerID)
		if err != nil {
			return err
		}
		updated, err = apply(sub, uc.now())
		if err != nil {
			return err
		}
		uc.log.Info().
			Str("owner_id", ownerID).
			Str("from", string(sub.Status)).
			Str("to", string(updated.Status)).
			Msg(action)
		return subs.Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}
	return uc.Present(updated)
}

// ExpireOverdue sincroniza el estado almacenado: trials y planes vencidos pasan a expired.
// Recorre las vencidas en lotes paginados por owner_id; los registros inválidos se
// registran y se saltan sin abortar el barrido ni bloquear los lotes siguientes.
func (uc *UseCase) ExpireOverdue(ctx context.Context) (*dto.ExpireSweepResponse, error) {
	now := uc.now()
	out := &dto.ExpireSweepResponse{Expired: []string{}}

	cursor := ""
	for {
		due, err := uc.subs.ListDue(ctx, now, cursor, sweepBatch)
		if err != nil {
			return out, fmt.Errorf("sweep: listar vencidas: %w", err)
		}
		out.Checked += len(due)

		for _, candidate := range due {
			ownerID := candidate.OwnerID
			cursor = ownerID
			expired, err := uc.expireOne(ctx, ownerID, now)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidSubscriptionState) {
					uc.log.Error().Err(err).Str("owner_id", ownerID).Msg("suscripción inválida, se omite")
					continue
				}
				return out, fmt.Errorf("sweep: %s: %w", ownerID, err)
			}
			// Solo se informa lo que quedó confirmado.
			if expired {
				out.Expired = append(out.Expired, ownerID)
			}
		}
		if len(due) < sweepBatch {
			break
		}
	}
	uc.log.Info().Int("checked", out.Checked).Int("expired", len(out.Expired)).Msg("barrido de vencimientos")
	return out, nil
}

// expireOne relee la fila bloqueada y la pasa a expired si sigue vencida.
func (uc *UseCase) expireOne(ctx context.Context, ownerID string, now time.Time) (bool, error) {
	var changed bool
	err := uc.tx.RunSubscription(ctx, func(subs repository.LockingSubscriptionRepository) error {
		sub, err := subs.GetByOwnerIDForUpdate(ctx, ownerID)
		if err != nil {
			return err
		}
		expired, ok, err := uc.lc.Expire(sub, now)
		if err != nil || !ok {
			return err
		}
		if err := subs.Update(ctx, expired); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// Check responde una habilitación para la cuenta; lo usa el middleware HTTP.
// Un snapshot inválido devuelve domain.ErrInvalidSubscriptionState.
func (uc *UseCase) Check(ctx context.Context, ownerID string, ent Entitlement) (bool, error) {
	sub, err := uc.subs.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return false, err
	}
	if err := subscription.Validate(sub); err != nil {
		return false, err
	}
	switch ent {
	case EntitlementAddEmployee:
		return uc.lc.CanAddEmployee(sub), nil
	case EntitlementAddProject:
		return uc.lc.CanAddProject(sub), nil
	case EntitlementExportPDF:
		return uc.lc.CanExportPDF(sub), nil
	case EntitlementExportExcel:
		return uc.lc.CanExportExcel(sub), nil
	default:
		return false, fmt.Errorf("%w: habilitación desconocida %q", domain.ErrInvalidInput, ent)
	}
}
