package ports

import (
	"context"
	"time"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// ProjectFilter carries the query parameters for listing projects.
// Every non-zero field is ANDed into the query.
type ProjectFilter struct {
	LeadID         string
	DeveloperID    string // matches projects whose assigned developers include this id
	Status         domain.ProjectStatus
	DeadlineBefore time.Time
}

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}
