package subscription

import (
	"fmt"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
)

// Validate verifica la forma del snapshot antes de razonar sobre él.
// Un estado desconocido o fechas ausentes para el estado declarado devuelven
// domain.ErrInvalidSubscriptionState en lugar de caer en "expired".
func Validate(sub *entity.Subscription) error {
	if sub == nil {
		return invalid("suscripción nula")
	}
	if sub.OwnerID == "" {
		return invalid("owner_id vacío")
	}
	if !sub.Status.Valid() {
		return invalid(fmt.Sprintf("estado desconocido %q", sub.Status))
	}
	if sub.MaxEmployees < 0 || sub.MaxProjects < 0 || sub.CurrentEmployees < 0 || sub.CurrentProjects < 0 {
		return invalid("capacidades o contadores negativos")
	}

	// El orden de las fechas solo importa en los estados que razonan sobre ellas:
	// una cuenta bloqueada es bloqueada sin importar sus fechas.
	hasTrial := !sub.TrialStartDate.IsZero() && !sub.TrialEndDate.IsZero()
	switch sub.Status {
	case entity.SubscriptionTrial:
		if !hasTrial {
			return invalid("trial sin ventana de prueba")
		}
		if sub.TrialEndDate.Before(sub.TrialStartDate) {
			return invalid("trial_end_date anterior a trial_start_date")
		}
	case entity.SubscriptionActive:
		// Activa sin fecha de fin es legítima (planes sin vencimiento), pero sin
		// ninguna fecha el registro está corrupto.
		if !hasTrial && sub.SubscriptionStartDate == nil && sub.SubscriptionEndDate == nil {
			return invalid("activa sin fechas de trial ni de suscripción")
		}
		if sub.SubscriptionStartDate != nil && sub.SubscriptionEndDate != nil &&
			sub.SubscriptionEndDate.Before(*sub.SubscriptionStartDate) {
			return invalid("subscription_end_date anterior a subscription_start_date")
		}
	}
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidSubscriptionState, reason)
}
