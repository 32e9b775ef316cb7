// Package authz holds the single authorization policy shared by the edge
// route guard and every mutating API handler. Both enforcement points call
// Allowed with the same inputs so the two checks cannot drift apart.
package authz

import "elshome/internal/domain/roles"

type Capability int

const (
	// CapWrite covers creating a resource and updating one's own rows.
	CapWrite Capability = iota
	// CapDelete on someone else's row is admin-only; on an owned row it
	// follows CanWrite.
	CapDelete
	// CapReadSecurity gates documents in the security category.
	CapReadSecurity
	// CapManageBranchTags allows editing branch tag lists.
	CapManageBranchTags
	// CapAdmin is the administrative surface itself.
	CapAdmin
)

// Allowed decides whether an identity holding rec may exercise cap against
// a resource owned by ownerID. ownerID == 0 means the resource has no owner
// (or the operation is not ownership-scoped).
//
// Admins are allowed everything. Everyone else gets exactly what their
// capability flags and ownership grant; a visitor record (the fail-closed
// default for missing or unreadable role rows) grants nothing mutating.
func Allowed(rec roles.Record, userID, ownerID int64, cap Capability) bool {
	if rec.IsAdmin() {
		return true
	}

	switch cap {
	case CapWrite:
		if !rec.CanWrite {
			return false
		}
		return ownerID == 0 || ownerID == userID
	case CapDelete:
		return rec.CanWrite && ownerID != 0 && ownerID == userID
	case CapReadSecurity:
		return rec.CanReadSecurity
	case CapManageBranchTags:
		return rec.Role == roles.RoleBranchTags
	case CapAdmin:
		return false
	default:
		return false
	}
}
