package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/billing"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
)

// SubscriptionHandler estado, cotización y compra de la suscripción de la empresa autenticada.
type SubscriptionHandler struct {
	uc *billing.UseCase
}

// NewSubscriptionHandler construye el handler.
func NewSubscriptionHandler(uc *billing.UseCase) *SubscriptionHandler {
	return &SubscriptionHandler{uc: uc}
}

// Status godoc
// @Summary      Estado de la suscripción (banner, días restantes, habilitaciones)
// @Tags         subscription
// @Produce      json
// @Success      200  {object}  dto.SubscriptionStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/subscription/status [get]
func (h *SubscriptionHandler) Status(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Status(c.Context(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Quote godoc
// @Summary      Cotizar un paquete
// @Tags         subscription
// @Produce      json
// @Param        employees  query  int  false  "empleados"
// @Param        projects   query  int  false  "proyectos"
// @Param        months     query  int  false  "meses (1 por defecto)"
// @Success      200  {object}  dto.QuoteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/subscription/quote [get]
func (h *SubscriptionHandler) Quote(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "employees, projects y months deben ser enteros"})
	}
	out, err := h.uc.Quote(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Purchase godoc
// @Summary      Comprar o renovar un paquete
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PurchaseRequest  true  "max_employees, max_projects, months"
// @Success      200   {object}  dto.SubscriptionStatusResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/subscription/purchase [post]
func (h *SubscriptionHandler) Purchase(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.PurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Purchase(c.Context(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
