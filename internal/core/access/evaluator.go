// Package access holds the single authorization matrix for projects, documents
// and user management.
//
// Every rule is a pure function of the caller, the requested Action and the
// ownership Facts of the target resource. Nothing here performs I/O; callers
// load the facts first and must report a missing resource as not-found before
// asking for a decision.
package access

import (
	"fmt"
	"slices"

	"github.com/pixelforge/nexus/internal/core/domain"
)

// Decision is the outcome of evaluating an action.
type Decision uint8

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Facts are the ownership and assignment data of the target resource.
// For documents, LeadID and AssignedDeveloperIDs describe the owning project.
type Facts struct {
	LeadID               string
	AssignedDeveloperIDs []string
	UploaderID           string

	// TargetRole is the role of the user proposed for an assignment.
	TargetRole domain.Role
}

// ProjectFacts extracts the facts of a project.
func ProjectFacts(p *domain.Project) Facts {
	return Facts{LeadID: p.LeadID, AssignedDeveloperIDs: p.AssignedDeveloperIDs}
}

// DocumentFacts extracts the facts of a document and its owning project.
func DocumentFacts(d *domain.Document, owner *domain.Project) Facts {
	f := ProjectFacts(owner)
	f.UploaderID = d.UploaderID
	return f
}

// TargetFacts wraps the role of a proposed lead or assignee.
func TargetFacts(target *domain.User) Facts {
	return Facts{TargetRole: target.Role}
}

type rule func(caller domain.Principal, f Facts) bool

var rules = map[Action]rule{
	ViewProject:          canView,
	ViewDocument:         canView,
	ListProjectDocuments: canView,
	DownloadDocument:     canView,

	CreateProject:       adminOnly,
	UpdateProject:       adminOnly,
	DeleteProject:       adminOnly,
	CompleteProject:     adminOnly,
	ReactivateProject:   adminOnly,
	ViewProjectReports:  adminOnly,
	ManageUsers:         adminOnly,
	ListAssignableUsers: func(c domain.Principal, _ Facts) bool { return c.Role.CanLeadProjects() },

	AssignDevelopers: leadsProject,
	UploadDocument:   leadsProject,
	DeleteDocument: func(c domain.Principal, f Facts) bool {
		return c.Role.IsAdmin() || sameID(c.ID, f.UploaderID) || leadsProject(c, f)
	},

	AssignableLeadCheck:      func(_ domain.Principal, f Facts) bool { return f.TargetRole.CanLeadProjects() },
	AssignableDeveloperCheck: func(_ domain.Principal, f Facts) bool { return f.TargetRole == domain.RoleDeveloper },
}

// Evaluate decides whether caller may perform action on a resource described
// by facts. Unknown actions and callers without a valid role are denied.
// ADMIN is allowed every caller-gated action.
func Evaluate(caller domain.Principal, action Action, facts Facts) Decision {
	r, ok := rules[action]
	if !ok {
		return Deny
	}
	if !action.ChecksTarget() {
		if !caller.Role.Valid() {
			return Deny
		}
		if caller.Role.IsAdmin() {
			return Allow
		}
	}
	if r(caller, facts) {
		return Allow
	}
	return Deny
}

// Authorize is Evaluate surfaced as an error. A denial wraps
// domain.ErrForbidden; a rejected assignment target additionally wraps
// domain.ErrInvalidAssignment.
func Authorize(caller domain.Principal, action Action, facts Facts) error {
	if Evaluate(caller, action, facts) == Allow {
		return nil
	}
	if action.ChecksTarget() {
		return fmt.Errorf("%w: %w: %s not permitted for role %s", domain.ErrForbidden, domain.ErrInvalidAssignment, action, facts.TargetRole)
	}
	return fmt.Errorf("%w: %s", domain.ErrForbidden, action)
}

func adminOnly(c domain.Principal, _ Facts) bool {
	return c.Role.IsAdmin()
}

func canView(c domain.Principal, f Facts) bool {
	return sameID(c.ID, f.LeadID) || (c.ID != "" && slices.Contains(f.AssignedDeveloperIDs, c.ID))
}

func leadsProject(c domain.Principal, f Facts) bool {
	return c.Role == domain.RoleProjectLead && sameID(c.ID, f.LeadID)
}

// sameID never matches two empty identifiers, so a project without a lead
// cannot be claimed by a caller with no ID.
func sameID(a, b string) bool {
	return a != "" && a == b
}
