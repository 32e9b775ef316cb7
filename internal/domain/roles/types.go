package roles

import "time"

type RoleName string

const (
	RoleAdmin      RoleName = "admin"
	RoleBranchTags RoleName = "branch-tags"
	RoleVisitor    RoleName = "visitor"
)

// Record is the per-user role row. A user without a row is a visitor with
// every capability flag off; Visitor() returns that default.
type Record struct {
	UserID          int64     `json:"user_id"`
	Role            RoleName  `json:"role"`
	CanWrite        bool      `json:"can_write"`
	CanReadSecurity bool      `json:"can_read_security"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Visitor is the default record for identities with no role row.
func Visitor(userID int64) Record {
	return Record{
		UserID: userID,
		Role:   RoleVisitor,
	}
}

func (r Record) IsAdmin() bool {
	return r.Role == RoleAdmin
}
