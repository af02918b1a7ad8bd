package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEmployeeRequest alta de empleado.
type CreateEmployeeRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Email         string          `json:"email" validate:"omitempty,email"`
	Position      string          `json:"position"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
}

// EmployeeResponse salida de empleado.
type EmployeeResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email,omitempty"`
	Position      string          `json:"position,omitempty"`
	MonthlySalary decimal.Decimal `json:"monthly_salary"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EmployeeListResponse lista paginada de empleados.
type EmployeeListResponse struct {
	Items []EmployeeResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateProjectRequest alta de proyecto.
type CreateProjectRequest struct {
	Code       string          `json:"code" validate:"required,max=40"`
	Name       string          `json:"name" validate:"required,min=1,max=200"`
	ClientName string          `json:"client_name"`
	Budget     decimal.Decimal `json:"budget"`
	StartDate  *time.Time      `json:"start_date"`
}

// ProjectResponse salida de proyecto.
type ProjectResponse struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	ClientName string          `json:"client_name,omitempty"`
	Budget     decimal.Decimal `json:"budget"`
	Status     string          `json:"status"`
	StartDate  *time.Time      `json:"start_date,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ProjectListResponse lista paginada de proyectos.
type ProjectListResponse struct {
	Items []ProjectResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
