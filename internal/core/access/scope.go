package access

import (
	"slices"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// Scope restricts a project listing to what a caller may see. Exactly one of
// the fields is meaningful: All for admins, LeadID for project leads,
// DeveloperID for developers. The zero Scope matches nothing.
type Scope struct {
	All         bool
	LeadID      string
	DeveloperID string
}

// Empty reports whether the scope matches no project.
func (s Scope) Empty() bool {
	return !s.All && s.LeadID == "" && s.DeveloperID == ""
}

// ListScope returns the subset of projects caller is allowed to list.
func ListScope(caller domain.Principal) Scope {
	switch caller.Role {
	case domain.RoleAdmin:
		return Scope{All: true}
	case domain.RoleProjectLead:
		return Scope{LeadID: caller.ID}
	case domain.RoleDeveloper:
		return Scope{DeveloperID: caller.ID}
	}
	return Scope{}
}

// Matches applies the scope to a single project's facts.
func (s Scope) Matches(f Facts) bool {
	switch {
	case s.All:
		return true
	case s.LeadID != "":
		return sameID(s.LeadID, f.LeadID)
	case s.DeveloperID != "":
		return slices.Contains(f.AssignedDeveloperIDs, s.DeveloperID)
	}
	return false
}

// FilterProjects keeps the projects visible under caller's list scope.
func FilterProjects(caller domain.Principal, projects []*domain.Project) []*domain.Project {
	scope := ListScope(caller)
	out := make([]*domain.Project, 0, len(projects))
	for _, p := range projects {
		if scope.Matches(ProjectFacts(p)) {
			out = append(out, p)
		}
	}
	return out
}
