package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Project.
const (
	ProjectPlanning   = "planning"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
)

// Project proyecto de arquitectura/interiorismo. Cuenta contra MaxProjects.
type Project struct {
	ID         string
	CompanyID  string
	Code       string
	Name       string
	ClientName string
	Budget     decimal.Decimal
	Status     string // planning, in_progress, completed
	StartDate  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
