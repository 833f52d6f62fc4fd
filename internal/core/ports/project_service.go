package ports

import (
	"context"
	"time"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// ProjectInput carries the editable fields of a project. An empty LeadID
// leaves the project without a lead.
type ProjectInput struct {
	Name        string
	Description string
	Deadline    time.Time
	LeadID      string
}

// ProjectService defines use-case operations for projects.
type ProjectService interface {
	Create(ctx context.Context, caller domain.Principal, in ProjectInput) (*domain.Project, error)
	Get(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error)
	ListForUser(ctx context.Context, caller domain.Principal) ([]*domain.Project, error)
	ListActive(ctx context.Context, caller domain.Principal) ([]*domain.Project, error)
	ListOverdue(ctx context.Context, caller domain.Principal) ([]*domain.Project, error)
	Update(ctx context.Context, caller domain.Principal, id string, in ProjectInput) (*domain.Project, error)
	AssignDevelopers(ctx context.Context, caller domain.Principal, id string, developerIDs []string) (*domain.Project, error)
	Complete(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error)
	Reactivate(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error)
	Delete(ctx context.Context, caller domain.Principal, id string) error
}
