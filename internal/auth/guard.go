// Package auth holds the authorization policy and JWT helpers. Every
// mutation path goes through the Guard so the policy lives in one place.
package auth

import "civicreport-be/internal/models"

// Guard decides whether an actor may perform an operation. It is pure and
// stateless; it never touches storage.
type Guard struct{}

// NewGuard returns the authorization guard.
func NewGuard() *Guard {
	return &Guard{}
}

// CanMutate reports whether the actor may modify or delete a resource
// owned by ownerID. Admins may mutate anything; users only their own.
func (Guard) CanMutate(actorID string, role models.Role, ownerID string) bool {
	if role == models.RoleAdmin {
		return true
	}
	return actorID != "" && actorID == ownerID
}

// CanChangeStatus reports whether the role may drive the issue lifecycle.
func (Guard) CanChangeStatus(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanViewAdminData reports whether the role may read admin-only views.
func (Guard) CanViewAdminData(role models.Role) bool {
	return role == models.RoleAdmin
}
