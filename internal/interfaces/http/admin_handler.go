package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/billing"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
)

// AdminHandler acciones de operador sobre suscripciones ajenas.
type AdminHandler struct {
	uc *billing.UseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(uc *billing.UseCase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

// Block bloquea la cuenta indicada.
// POST /api/admin/subscriptions/:owner/block
func (h *AdminHandler) Block(c *fiber.Ctx) error {
	owner := c.Params("owner")
	if owner == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "owner requerido"})
	}
	out, err := h.uc.Block(c.Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Unblock levanta el bloqueo.
// POST /api/admin/subscriptions/:owner/unblock
func (h *AdminHandler) Unblock(c *fiber.Ctx) error {
	owner := c.Params("owner")
	if owner == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "owner requerido"})
	}
	out, err := h.uc.Unblock(c.Context(), owner)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Status consulta el estado de cualquier cuenta.
// GET /api/admin/subscriptions/:owner
func (h *AdminHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.Context(), c.Params("owner"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExpireSweep pasa a expired las suscripciones vencidas.
// POST /api/admin/subscriptions/expire-sweep
func (h *AdminHandler) ExpireSweep(c *fiber.Ctx) error {
	out, err := h.uc.ExpireOverdue(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
