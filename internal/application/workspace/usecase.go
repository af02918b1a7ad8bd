// Package workspace altas y bajas de empleados y proyectos de una firma.
// Es el único lugar que mueve los contadores de uso de la suscripción.
package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/application/dto"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/repository"
	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/subscription"
)

// TxRunner transacción con la fila de la suscripción bloqueada y los repos de la firma.
type TxRunner interface {
	RunWorkspace(ctx context.Context, fn func(
		subs repository.LockingSubscriptionRepository,
		employees repository.EmployeeRepository,
		projects repository.ProjectRepository,
	) error) error
}

// UseCase casos de uso del espacio de trabajo.
type UseCase struct {
	tx        TxRunner
	employees repository.EmployeeRepository
	projects  repository.ProjectRepository
	lifecycle *subscription.Lifecycle
	now       func() time.Time
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso. employees y projects se usan para lecturas fuera de transacción.
func NewUseCase(
	tx TxRunner,
	employees repository.EmployeeRepository,
	projects repository.ProjectRepository,
	lifecycle *subscription.Lifecycle,
	now func() time.Time,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{tx: tx, employees: employees, projects: projects, lifecycle: lifecycle, now: now, log: log}
}

// AddEmployee da de alta un empleado si el plan lo permite. Sin cupo → domain.ErrPlanLimitReached.
func (uc *UseCase) AddEmployee(ctx context.Context, ownerID string, in dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es obligatorio", domain.ErrInvalidInput)
	}
	if in.MonthlySalary.IsNegative() {
		return nil, fmt.Errorf("%w: monthly_salary no puede ser negativo", domain.ErrInvalidInput)
	}
	now := uc.now()
	emp := &entity.Employee{
		ID:            uuid.New().String(),
		CompanyID:     ownerID,
		Name:          name,
		Email:         strings.TrimSpace(in.Email),
		Position:      strings.TrimSpace(in.Position),
		MonthlySalary: in.MonthlySalary,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := uc.tx.RunWorkspace(ctx, func(
		subs repository.LockingSubscriptionRepository,
		employees repository.EmployeeRepository,
		_ repository.ProjectRepository,
	) error {
		sub, err := lockValid(ctx, subs, ownerID)
		if err != nil {
			return err
		}
		if !uc.lifecycle.CanAddEmployee(sub) {
			return fmt.Errorf("%w: empleados %d/%d (estado %s)",
				domain.ErrPlanLimitReached, sub.CurrentEmployees, sub.MaxEmployees, sub.Status)
		}
		if err := employees.Create(ctx, emp); err != nil {
			return err
		}
		sub.CurrentEmployees++
		sub.UpdatedAt = now
		return subs.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("owner_id", ownerID).Str("employee_id", emp.ID).Msg("empleado agregado")
	return toEmployeeResponse(emp), nil
}

// RemoveEmployee baja de un empleado de la firma; libera un cupo.
func (uc *UseCase) RemoveEmployee(ctx context.Context, ownerID, employeeID string) error {
	return uc.tx.RunWorkspace(ctx, func(
		subs repository.LockingSubscriptionRepository,
		employees repository.EmployeeRepository,
		_ repository.ProjectRepository,
	) error {
		sub, err := lockValid(ctx, subs, ownerID)
		if err != nil {
			return err
		}
		emp, err := employees.GetByID(ctx, employeeID)
		if err != nil {
			return err
		}
		if emp.CompanyID != ownerID {
			return domain.ErrNotFound
		}
		if err := employees.Delete(ctx, employeeID); err != nil {
			return err
		}
		if sub.CurrentEmployees > 0 {
			sub.CurrentEmployees--
		}
		sub.UpdatedAt = uc.now()
		return subs.Update(ctx, sub)
	})
}

// ListEmployees lista los empleados de la firma (solo lectura, sin chequeo de plan).
func (uc *UseCase) ListEmployees(ctx context.Context, ownerID string, page dto.PageRequest) (*dto.EmployeeListResponse, error) {
	page = page.Normalize()
	list, err := uc.employees.ListByCompany(ctx, ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EmployeeResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toEmployeeResponse(e))
	}
	return &dto.EmployeeListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// AddProject da de alta un proyecto si el plan lo permite. Código repetido → domain.ErrDuplicate.
func (uc *UseCase) AddProject(ctx context.Context, ownerID string, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code y name son obligatorios", domain.ErrInvalidInput)
	}
	if in.Budget.IsNegative() {
		return nil, fmt.Errorf("%w: budget no puede ser negativo", domain.ErrInvalidInput)
	}
	now := uc.now()
	p := &entity.Project{
		ID:         uuid.New().String(),
		CompanyID:  ownerID,
		Code:       code,
		Name:       name,
		ClientName: strings.TrimSpace(in.ClientName),
		Budget:     in.Budget,
		Status:     entity.ProjectPlanning,
		StartDate:  in.StartDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := uc.tx.RunWorkspace(ctx, func(
		subs repository.LockingSubscriptionRepository,
		_ repository.EmployeeRepository,
		projects repository.ProjectRepository,
	) error {
		sub, err := lockValid(ctx, subs, ownerID)
		if err != nil {
			return err
		}
		if !uc.lifecycle.CanAddProject(sub) {
			return fmt.Errorf("%w: proyectos %d/%d (estado %s)",
				domain.ErrPlanLimitReached, sub.CurrentProjects, sub.MaxProjects, sub.Status)
		}
		if err := projects.Create(ctx, p); err != nil {
			return err
		}
		sub.CurrentProjects++
		sub.UpdatedAt = now
		return subs.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("owner_id", ownerID).Str("project_id", p.ID).Str("code", p.Code).Msg("proyecto agregado")
	return toProjectResponse(p), nil
}

// RemoveProject baja de un proyecto; libera un cupo.
func (uc *UseCase) RemoveProject(ctx context.Context, ownerID, projectID string) error {
	return uc.tx.RunWorkspace(ctx, func(
		subs repository.LockingSubscriptionRepository,
		_ repository.EmployeeRepository,
		projects repository.ProjectRepository,
	) error {
		sub, err := lockValid(ctx, subs, ownerID)
		if err != nil {
			return err
		}
		p, err := projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if p.CompanyID != ownerID {
			return domain.ErrNotFound
		}
		if err := projects.Delete(ctx, projectID); err != nil {
			return err
		}
		if sub.CurrentProjects > 0 {
			sub.CurrentProjects--
		}
		sub.UpdatedAt = uc.now()
		return subs.Update(ctx, sub)
	})
}

// ListProjects lista los proyectos de la firma.
func (uc *UseCase) ListProjects(ctx context.Context, ownerID string, page dto.PageRequest) (*dto.ProjectListResponse, error) {
	page = page.Normalize()
	list, err := uc.projects.ListByCompany(ctx, ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProjectResponse(p))
	}
	return &dto.ProjectListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// GetProject devuelve un proyecto de la firma. Proyecto de otra firma → domain.ErrNotFound.
func (uc *UseCase) GetProject(ctx context.Context, ownerID, projectID string) (*entity.Project, error) {
	p, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != ownerID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func lockValid(ctx context.Context, subs repository.LockingSubscriptionRepository, ownerID string) (*entity.Subscription, error) {
	sub, err := subs.GetByOwnerIDForUpdate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := subscription.Validate(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func toEmployeeResponse(e *entity.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		ID:            e.ID,
		Name:          e.Name,
		Email:         e.Email,
		Position:      e.Position,
		MonthlySalary: e.MonthlySalary,
		CreatedAt:     e.CreatedAt,
	}
}

func toProjectResponse(p *entity.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:         p.ID,
		Code:       p.Code,
		Name:       p.Name,
		ClientName: p.ClientName,
		Budget:     p.Budget,
		Status:     p.Status,
		StartDate:  p.StartDate,
		CreatedAt:  p.CreatedAt,
	}
}
