package domain

import "time"

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
)

// Project is a unit of work led by at most one project lead.
type Project struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	Description          string        `json:"description"`
	Deadline             time.Time     `json:"deadline"`
	Status               ProjectStatus `json:"status"`
	LeadID               string        `json:"lead_id,omitempty"`
	AssignedDeveloperIDs []string      `json:"assigned_developer_ids"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
	CompletedAt          *time.Time    `json:"completed_at,omitempty"`
}

func (p *Project) MarkCompleted(now time.Time) {
	p.Status = ProjectCompleted
	p.CompletedAt = &now
	p.UpdatedAt = now
}

func (p *Project) Reactivate(now time.Time) {
	p.Status = ProjectActive
	p.CompletedAt = nil
	p.UpdatedAt = now
}

// IsOverdue reports whether an active project's deadline day lies before today.
func (p *Project) IsOverdue(now time.Time) bool {
	if p.Status != ProjectActive || p.Deadline.IsZero() {
		return false
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return p.Deadline.UTC().Before(today)
}
