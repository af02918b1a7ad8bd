package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee miembro del equipo de la firma (RR.HH.). Cuenta contra MaxEmployees.
type Employee struct {
	ID            string
	CompanyID     string
	Name          string
	Email         string
	Position      string
	MonthlySalary decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
