package models

import "slices"

// PermissionAction names a workflow operation gated by permissions.
type PermissionAction string

const (
	PermissionView    PermissionAction = "view"
	PermissionEdit    PermissionAction = "edit"
	PermissionExecute PermissionAction = "execute"
	PermissionDelete  PermissionAction = "delete"
)

// Permissions lists the actors allowed per operation. The owner is always
// allowed; public workflows allow anyone to view and execute. An empty actor
// list means owner-only.
type Permissions struct {
	View    []string `json:"view,omitempty"`
	Edit    []string `json:"edit,omitempty"`
	Execute []string `json:"execute,omitempty"`
	Delete  []string `json:"delete,omitempty"`
	Public  bool     `json:"public,omitempty"`
}

// Allows reports whether userID may perform action on a workflow owned by
// owner. An empty userID is treated as a system caller and always allowed.
func (p Permissions) Allows(action PermissionAction, owner, userID string) bool {
	if userID == "" || userID == owner {
		return true
	}

	if p.Public && (action == PermissionView || action == PermissionExecute) {
		return true
	}

	var actors []string

	switch action {
	case PermissionView:
		actors = p.View
	case PermissionEdit:
		actors = p.Edit
	case PermissionExecute:
		actors = p.Execute
	case PermissionDelete:
		actors = p.Delete
	}

	return slices.Contains(actors, userID)
}
