// Package workflow governs the issue lifecycle field.
package workflow

import (
	"civicreport-be/internal/auth"
	"civicreport-be/internal/models"
)

// Workflow validates status transitions. Only the role gate and enum
// membership are enforced: an admin may set any defined status from any
// current one, matching the existing behavior. CanFollow documents the
// nominal lifecycle graph without enforcing it.
type Workflow struct {
	guard *auth.Guard
}

// New returns a status workflow backed by the given guard.
func New(guard *auth.Guard) *Workflow {
	return &Workflow{guard: guard}
}

// Transition checks that the actor may change status and that the
// requested value is a defined status, then returns the new status.
func (w *Workflow) Transition(current, requested models.IssueStatus, role models.Role) (models.IssueStatus, error) {
	if !w.guard.CanChangeStatus(role) {
		return current, models.ErrForbidden
	}
	if !requested.Valid() {
		return current, models.InvalidEnum("status", string(requested))
	}
	return requested, nil
}

// CanFollow reports whether the transition exists in the nominal lifecycle
// graph: NEW -> IN_PROGRESS -> RESOLVED, with REJECTED reachable from NEW
// or IN_PROGRESS. RESOLVED and REJECTED are terminal. Not enforced by
// Transition; tightening it would be a behavior change.
func CanFollow(from, to models.IssueStatus) bool {
	switch from {
	case models.StatusNew:
		return to == models.StatusInProgress || to == models.StatusRejected
	case models.StatusInProgress:
		return to == models.StatusResolved || to == models.StatusRejected
	}
	return false
}
