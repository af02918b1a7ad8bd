package repository

import (
	"context"

	"github.com/tauntify/ASPMS-PRO-sub002/internal/domain/entity"
)

// ProjectRepository puerto de persistencia para Project.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Project, error)
	Delete(ctx context.Context, id string) error
}
