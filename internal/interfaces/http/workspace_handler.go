package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/workspace"
)

// WorkspaceHandler empleados y proyectos de la firma (protegido).
type WorkspaceHandler struct {
	uc *workspace.UseCase
}

// NewWorkspaceHandler construye el handler.
func NewWorkspaceHandler(uc *workspace.UseCase) *WorkspaceHandler {
	return &WorkspaceHandler{uc: uc}
}

// CreateEmployee alta de empleado; sin cupo en el plan → 402 PLAN_LIMIT.
// POST /api/employees
func (h *WorkspaceHandler) CreateEmployee(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddEmployee(c.Context(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListEmployees lista paginada.
// GET /api/employees?limit=&offset=
func (h *WorkspaceHandler) ListEmployees(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	out, err := h.uc.ListEmployees(c.Context(), companyID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteEmployee baja de empleado.
// DELETE /api/employees/:id
func (h *WorkspaceHandler) DeleteEmployee(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.RemoveEmployee(c.Context(), companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateProject alta de proyecto; sin cupo en el plan → 402 PLAN_LIMIT.
// POST /api/projects
func (h *WorkspaceHandler) CreateProject(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateProjectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddProject(c.Context(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListProjects lista paginada.
// GET /api/projects?limit=&offset=
func (h *WorkspaceHandler) ListProjects(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	out, err := h.uc.ListProjects(c.Context(), companyID, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteProject baja de proyecto.
// DELETE /api/projects/:id
func (h *WorkspaceHandler) DeleteProject(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.RemoveProject(c.Context(), companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
