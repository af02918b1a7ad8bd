package dto

import "time"

// RegisterFirmRequest alta de una firma: empresa + usuario dueño (admin).
type RegisterFirmRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=1,max=200"`
	TaxID       string `json:"tax_id"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"omitempty,max=200"`
}

// RegisterFirmResponse resultado del alta: la firma, su dueño y el trial creado.
type RegisterFirmResponse struct {
	Company      CompanyResponse            `json:"company"`
	User         UserResponse               `json:"user"`
	Subscription SubscriptionStatusResponse `json:"subscription"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
