package handler

import (
	"time"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type createUserRequest struct {
	Username  string `json:"username"   validate:"required,min=3,max=50"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=50"`
	LastName  string `json:"last_name"  validate:"max=50"`
	Role      string `json:"role"       validate:"required"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// projectRequest carries the deadline as a calendar date (YYYY-MM-DD).
type projectRequest struct {
	Name        string `json:"name"        validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"required,min=10,max=1000"`
	Deadline    string `json:"deadline"    validate:"required,datetime=2006-01-02"`
	LeadID      string `json:"lead_id"`
}

type assignDevelopersRequest struct {
	DeveloperIDs []string `json:"developer_ids" validate:"required,min=1,dive,required"`
}

// --- Response types ---

type userResponse struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	Role            string    `json:"role"`
	RoleDisplayName string    `json:"role_display_name"`
	Enabled         bool      `json:"enabled"`
	CreatedAt       time.Time `json:"created_at"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type projectResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Deadline             string     `json:"deadline"`
	Status               string     `json:"status"`
	LeadID               string     `json:"lead_id,omitempty"`
	AssignedDeveloperIDs []string   `json:"assigned_developer_ids"`
	Overdue              bool       `json:"overdue"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
}

type documentResponse struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id"`
	UploaderID       string    `json:"uploader_id"`
	OriginalFileName string    `json:"original_file_name"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	Description      string    `json:"description,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

type tokenValidResponse struct {
	Valid bool         `json:"valid"`
	User  userResponse `json:"user"`
}

// --- Mappers ---

const dateLayout = "2006-01-02"

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role.String(),
		RoleDisplayName: u.Role.DisplayName(),
		Enabled:         u.Enabled,
		CreatedAt:       u.CreatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toProjectResponse(p *domain.Project, now time.Time) projectResponse {
	devs := p.AssignedDeveloperIDs
	if devs == nil {
		devs = []string{}
	}
	return projectResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Description:          p.Description,
		Deadline:             p.Deadline.UTC().Format(dateLayout),
		Status:               string(p.Status),
		LeadID:               p.LeadID,
		AssignedDeveloperIDs: devs,
		Overdue:              p.IsOverdue(now),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		CompletedAt:          p.CompletedAt,
	}
}

func toProjectResponses(projects []*domain.Project, now time.Time) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p, now))
	}
	return out
}

func toDocumentResponse(d *domain.Document) documentResponse {
	return documentResponse{
		ID:               d.ID,
		ProjectID:        d.ProjectID,
		UploaderID:       d.UploaderID,
		OriginalFileName: d.OriginalFileName,
		ContentType:      d.ContentType,
		Size:             d.Size,
		Description:      d.Description,
		UploadedAt:       d.UploadedAt,
	}
}

func toDocumentResponses(docs []*domain.Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	return out
}
