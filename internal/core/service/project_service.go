package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pixelforge/nexus/internal/core/access"
	"github.com/pixelforge/nexus/internal/core/domain"
	"github.com/pixelforge/nexus/internal/core/ports"
)

// ProjectService implements project use cases. Every operation loads the
// project first, so a missing project is reported as not-found before any
// access decision is made.
type ProjectService struct {
	projects  ports.ProjectRepository
	documents ports.DocumentRepository
	users     ports.UserRepository
	cleaner   ports.BlobCleaner
	now       func() time.Time
	log       zerolog.Logger
}

func NewProjectService(
	projects ports.ProjectRepository,
	documents ports.DocumentRepository,
	users ports.UserRepository,
	cleaner ports.BlobCleaner,
	log zerolog.Logger,
) *ProjectService {
	return &ProjectService{
		projects:  projects,
		documents: documents,
		users:     users,
		cleaner:   cleaner,
		now:       utcNow,
		log:       log,
	}
}

func (s *ProjectService) Create(ctx context.Context, caller domain.Principal, in ports.ProjectInput) (*domain.Project, error) {
	if err := authorize(caller, access.CreateProject, access.Facts{}); err != nil {
		return nil, err
	}
	if err := validateProjectInput(in); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	if err := s.checkLead(ctx, caller, in.LeadID); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	now := s.now()
	created, err := s.projects.Create(ctx, &domain.Project{
		Name:                 strings.TrimSpace(in.Name),
		Description:          strings.TrimSpace(in.Description),
		Deadline:             in.Deadline.UTC(),
		Status:               domain.ProjectActive,
		LeadID:               in.LeadID,
		AssignedDeveloperIDs: []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.log.Info().Str("project_id", created.ID).Str("lead_id", created.LeadID).Msg("project created")
	return created, nil
}

func (s *ProjectService) Get(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.ViewProject, access.ProjectFacts(p)); err != nil {
		return nil, err
	}
	return p, nil
}

// ListForUser returns the projects visible to caller: all for ADMIN, led
// projects for PROJECT_LEAD and assigned projects for DEVELOPER.
func (s *ProjectService) ListForUser(ctx context.Context, caller domain.Principal) ([]*domain.Project, error) {
	scope := access.ListScope(caller)
	if scope.Empty() {
		return []*domain.Project{}, nil
	}
	projects, err := s.projects.List(ctx, ports.ProjectFilter{LeadID: scope.LeadID, DeveloperID: scope.DeveloperID})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return access.FilterProjects(caller, projects), nil
}

func (s *ProjectService) ListActive(ctx context.Context, caller domain.Principal) ([]*domain.Project, error) {
	if err := authorize(caller, access.ViewProjectReports, access.Facts{}); err != nil {
		return nil, err
	}
	return s.projects.List(ctx, ports.ProjectFilter{Status: domain.ProjectActive})
}

// ListOverdue returns active projects whose deadline day has passed.
func (s *ProjectService) ListOverdue(ctx context.Context, caller domain.Principal) ([]*domain.Project, error) {
	if err := authorize(caller, access.ViewProjectReports, access.Facts{}); err != nil {
		return nil, err
	}
	now := s.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	candidates, err := s.projects.List(ctx, ports.ProjectFilter{Status: domain.ProjectActive, DeadlineBefore: today})
	if err != nil {
		return nil, fmt.Errorf("list overdue projects: %w", err)
	}
	out := candidates[:0]
	for _, p := range candidates {
		if p.IsOverdue(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProjectService) Update(ctx context.Context, caller domain.Principal, id string, in ports.ProjectInput) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.UpdateProject, access.ProjectFacts(p)); err != nil {
		return nil, err
	}
	if err := validateProjectInput(in); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if in.LeadID != p.LeadID {
		if err := s.checkLead(ctx, caller, in.LeadID); err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Deadline = in.Deadline.UTC()
	p.LeadID = in.LeadID
	p.UpdatedAt = s.now()
	return s.save(ctx, p, "project updated")
}

// AssignDevelopers replaces the project's developer set. Every id must name
// a DEVELOPER; duplicates are collapsed.
func (s *ProjectService) AssignDevelopers(ctx context.Context, caller domain.Principal, id string, developerIDs []string) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.AssignDevelopers, access.ProjectFacts(p)); err != nil {
		return nil, err
	}
	if len(developerIDs) == 0 {
		return nil, fmt.Errorf("assign developers: %w: at least one developer is required", domain.ErrInvalidInput)
	}

	assigned := make([]string, 0, len(developerIDs))
	for _, devID := range developerIDs {
		if slices.Contains(assigned, devID) {
			continue
		}
		dev, err := s.users.FindByID(ctx, devID)
		if err != nil {
			return nil, fmt.Errorf("assign developers: %w", err)
		}
		if err := authorize(caller, access.AssignableDeveloperCheck, access.TargetFacts(dev)); err != nil {
			return nil, fmt.Errorf("assign developers: user %s: %w", dev.Username, err)
		}
		assigned = append(assigned, dev.ID)
	}

	p.AssignedDeveloperIDs = assigned
	p.UpdatedAt = s.now()
	return s.save(ctx, p, "developers assigned")
}

func (s *ProjectService) Complete(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.CompleteProject, access.ProjectFacts(p)); err != nil {
		return nil, err
	}
	p.MarkCompleted(s.now())
	return s.save(ctx, p, "project completed")
}

func (s *ProjectService) Reactivate(ctx context.Context, caller domain.Principal, id string) (*domain.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, access.ReactivateProject, access.ProjectFacts(p)); err != nil {
		return nil, err
	}
	p.Reactivate(s.now())
	return s.save(ctx, p, "project reactivated")
}

// Delete removes the project with its document records and schedules the
// document blobs for cleanup.
func (s *ProjectService) Delete(ctx context.Context, caller domain.Principal, id string) error {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(caller, access.DeleteProject, access.ProjectFacts(p)); err != nil {
		return err
	}

	removed, err := s.documents.DeleteByProject(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("delete project documents: %w", err)
	}
	for _, d := range removed {
		s.cleaner.Enqueue(d.FileName)
	}

	if err := s.projects.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.log.Info().Str("project_id", p.ID).Int("documents", len(removed)).Msg("project deleted")
	return nil
}

func (s *ProjectService) save(ctx context.Context, p *domain.Project, msg string) (*domain.Project, error) {
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	s.log.Info().Str("project_id", p.ID).Str("status", string(p.Status)).Msg(msg)
	return p, nil
}

// checkLead verifies a proposed lead exists and may lead projects.
// An empty id means no lead and is always accepted.
func (s *ProjectService) checkLead(ctx context.Context, caller domain.Principal, leadID string) error {
	if leadID == "" {
		return nil
	}
	lead, err := s.users.FindByID(ctx, leadID)
	if err != nil {
		return err
	}
	return authorize(caller, access.AssignableLeadCheck, access.TargetFacts(lead))
}

func validateProjectInput(in ports.ProjectInput) error {
	name := strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return fmt.Errorf("%w: name must be between 3 and 100 characters", domain.ErrInvalidInput)
	}
	desc := strings.TrimSpace(in.Description)
	if n := utf8.RuneCountInString(desc); n < 10 || n > 1000 {
		return fmt.Errorf("%w: description must be between 10 and 1000 characters", domain.ErrInvalidInput)
	}
	if in.Deadline.IsZero() {
		return fmt.Errorf("%w: deadline is required", domain.ErrInvalidInput)
	}
	return nil
}
