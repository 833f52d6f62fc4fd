package access

// Action is an operation subject to authorization.
type Action uint8

const (
	ViewProject Action = iota + 1
	CreateProject
	UpdateProject
	DeleteProject
	CompleteProject
	ReactivateProject
	AssignDevelopers
	ViewProjectReports

	UploadDocument
	ViewDocument
	ListProjectDocuments
	DownloadDocument
	DeleteDocument

	ManageUsers
	ListAssignableUsers

	AssignableLeadCheck
	AssignableDeveloperCheck
)

// Actions lists every action, for exhaustive tests and metrics.
var Actions = []Action{
	ViewProject, CreateProject, UpdateProject, DeleteProject, CompleteProject,
	ReactivateProject, AssignDevelopers, ViewProjectReports,
	UploadDocument, ViewDocument, ListProjectDocuments, DownloadDocument, DeleteDocument,
	ManageUsers, ListAssignableUsers,
	AssignableLeadCheck, AssignableDeveloperCheck,
}

var actionNames = map[Action]string{
	ViewProject:              "view_project",
	CreateProject:            "create_project",
	UpdateProject:            "update_project",
	DeleteProject:            "delete_project",
	CompleteProject:          "complete_project",
	ReactivateProject:        "reactivate_project",
	AssignDevelopers:         "assign_developers",
	ViewProjectReports:       "view_project_reports",
	UploadDocument:           "upload_document",
	ViewDocument:             "view_document",
	ListProjectDocuments:     "list_project_documents",
	DownloadDocument:         "download_document",
	DeleteDocument:           "delete_document",
	ManageUsers:              "manage_users",
	ListAssignableUsers:      "list_assignable_users",
	AssignableLeadCheck:      "assignable_lead_check",
	AssignableDeveloperCheck: "assignable_developer_check",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown_action"
}

// ChecksTarget is true for actions that validate a proposed assignee rather
// than the caller.
func (a Action) ChecksTarget() bool {
	return a == AssignableLeadCheck || a == AssignableDeveloperCheck
}
