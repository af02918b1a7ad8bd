package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/billing"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/export"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
)

// entitlementChecker contrato mínimo del middleware; lo implementa *billing.UseCase.
type entitlementChecker interface {
	Check(ctx context.Context, ownerID string, ent billing.Entitlement) (bool, error)
}

// RequireEntitlement corta la petición si el plan de la empresa no habilita ent.
// Va después de AuthMiddleware. El caso de uso vuelve a verificar dentro de su transacción.
//
//   - 402 PLAN_LIMIT / EXPORT_NOT_ALLOWED → no habilitado.
//   - 409 INVALID_SUBSCRIPTION_STATE → snapshot corrupto.
//   - 503 ENTITLEMENT_CHECK_FAILED → fallo de infraestructura.
func RequireEntitlement(checker entitlementChecker, ent billing.Entitlement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return checkEntitlement(c, checker, ent)
	}
}

// RequireExportEntitlement elige la habilitación según ?format= (pdf por defecto).
func RequireExportEntitlement(checker entitlementChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format, err := export.ParseFormat(c.Query("format"))
		if err != nil {
			return writeError(c, err)
		}
		ent := billing.EntitlementExportPDF
		if format == export.FormatXLSX {
			ent = billing.EntitlementExportExcel
		}
		return checkEntitlement(c, checker, ent)
	}
}

func checkEntitlement(c *fiber.Ctx, checker entitlementChecker, ent billing.Entitlement) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "company_id no encontrado en el token",
		})
	}

	ok, err := checker.Check(c.Context(), companyID, ent)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidSubscriptionState) {
			return writeError(c, err)
		}
		c.Locals(LocalError, err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "ENTITLEMENT_CHECK_FAILED",
			Message: "no se pudo verificar el plan, intente más tarde",
		})
	}
	if !ok {
		code := "PLAN_LIMIT"
		if ent == billing.EntitlementExportPDF || ent == billing.EntitlementExportExcel {
			code = "EXPORT_NOT_ALLOWED"
		}
		return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
			Code:    code,
			Message: "el plan actual no permite '" + string(ent) + "'",
		})
	}
	return c.Next()
}
