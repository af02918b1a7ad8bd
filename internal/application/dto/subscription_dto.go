package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatusResponse estado derivado + habilitaciones, listo para el banner del frontend.
type SubscriptionStatusResponse struct {
	OwnerID       string `json:"owner_id"`
	BillingStatus string `json:"billing_status"` // estado almacenado: trial, active, expired, blocked
	Status        string `json:"status"`         // estado derivado: active, warning, expired, blocked
	DaysRemaining int    `json:"days_remaining"`
	Message       string `json:"message"`

	TrialEndDate          time.Time  `json:"trial_end_date"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty"`
	LastPaymentDate       *time.Time `json:"last_payment_date,omitempty"`

	Usage        UsageResponse        `json:"usage"`
	Entitlements EntitlementsResponse `json:"entitlements"`

	TotalAmount          decimal.Decimal `json:"total_amount"`
	TotalAmountFormatted string          `json:"total_amount_formatted"`
	Currency             string          `json:"currency"`
}

// UsageResponse uso actual contra las capacidades del plan.
type UsageResponse struct {
	MaxEmployees     int `json:"max_employees"`
	MaxProjects      int `json:"max_projects"`
	CurrentEmployees int `json:"current_employees"`
	CurrentProjects  int `json:"current_projects"`
}

// EntitlementsResponse decisiones booleanas de habilitación.
type EntitlementsResponse struct {
	CanAddEmployee bool `json:"can_add_employee"`
	CanAddProject  bool `json:"can_add_project"`
	CanExportPDF   bool `json:"can_export_pdf"`
	CanExportExcel bool `json:"can_export_excel"`
	NeedsWatermark bool `json:"needs_watermark"`
}

// QuoteRequest cotización de un paquete.
type QuoteRequest struct {
	MaxEmployees int `query:"employees" json:"max_employees"`
	MaxProjects  int `query:"projects" json:"max_projects"`
	Months       int `query:"months" json:"months"`
}

// QuoteResponse precio mensual y total de un paquete.
type QuoteResponse struct {
	MaxEmployees     int             `json:"max_employees"`
	MaxProjects      int             `json:"max_projects"`
	Months           int             `json:"months"`
	MonthlyAmount    decimal.Decimal `json:"monthly_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	MonthlyFormatted string          `json:"monthly_formatted"`
	TotalFormatted   string          `json:"total_formatted"`
	Currency         string          `json:"currency"`
}

// PurchaseRequest compra/renovación de un paquete. Months vacío = 1.
type PurchaseRequest struct {
	MaxEmployees int `json:"max_employees" validate:"min=0"`
	MaxProjects  int `json:"max_projects" validate:"min=0"`
	Months       int `json:"months" validate:"omitempty,min=1,max=36"`
}

// ExpireSweepResponse resultado del barrido de vencimientos.
type ExpireSweepResponse struct {
	Checked int      `json:"checked"`
	Expired []string `json:"expired"`
}
