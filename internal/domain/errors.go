package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Suscripción
	ErrInvalidSubscriptionState = errors.New("estado de suscripción inválido")
	ErrPlanLimitReached         = errors.New("límite del plan alcanzado")
	ErrExportNotAllowed         = errors.New("exportación no permitida por el plan")
	ErrInvalidTransition        = errors.New("transición de suscripción no permitida")
)
