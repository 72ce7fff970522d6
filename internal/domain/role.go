package domain

import (
	"fmt"
	"time"
)

// Role is a grantable application role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
	RoleUser    Role = "user"
)

// rolePrecedence orders roles from highest privilege to lowest.
var rolePrecedence = []Role{RoleAdmin, RoleManager, RoleAgent, RoleUser}

// Valid reports whether the role is a known member of the enum.
func (r Role) Valid() bool {
	for _, known := range rolePrecedence {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", raw)
	}
	return r, nil
}

// RoleGrant is a (user, role) pair stored by the remote store.
// Grants are not mutually exclusive; a user may hold several.
type RoleGrant struct {
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// Facts are the derived capability flags for a principal. They are a pure
// function of the grant list and are recomputed whenever it changes.
type Facts struct {
	IsAdmin       bool
	IsManager     bool
	IsAgent       bool
	IsITStaff     bool
	IsFrontOffice bool
	PrimaryRole   Role
}

// IsTechnician is an alias for IsManager kept for the IT vocabulary.
func (f Facts) IsTechnician() bool {
	return f.IsManager
}

// DeriveFacts computes capability flags from a raw grant list.
//
// Precedence for PrimaryRole is fixed: admin > manager > agent > user,
// defaulting to user when no grants exist. An admin counts as an agent even
// without an explicit agent grant.
func DeriveFacts(grants []RoleGrant) Facts {
	has := func(role Role) bool {
		for _, g := range grants {
			if g.Role == role {
				return true
			}
		}
		return false
	}

	facts := Facts{
		IsAdmin:   has(RoleAdmin),
		IsManager: has(RoleManager),
	}
	facts.IsAgent = has(RoleAgent) || facts.IsAdmin
	facts.IsITStaff = facts.IsManager || facts.IsAdmin
	facts.IsFrontOffice = !facts.IsITStaff

	facts.PrimaryRole = RoleUser
	for _, role := range rolePrecedence {
		if has(role) {
			facts.PrimaryRole = role
			break
		}
	}
	return facts
}
