package entity

import "time"

// Estados de Company.
const (
	CompanyActive    = "active"
	CompanySuspended = "suspended"
)

// Company representa una firma (tenant) del sistema: estudio de arquitectura o
// diseño interior. Es la dueña de la suscripción.
type Company struct {
	ID        string
	Name      string
	TaxID     string // identificación fiscal, opcional
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended
	CreatedAt time.Time
	UpdatedAt time.Time
}
