package authz

import (
	"github.com/spec-kit/itsm-console/internal/domain"
)

// ResolutionState tracks the grant-fetch lifecycle. While grants are still
// loading the guard suspends instead of defaulting to the user role.
type ResolutionState int

const (
	ResolutionLoading ResolutionState = iota
	ResolutionReady
	ResolutionFailed
)

// Resolution is the role resolver output consumed by the route guard.
// It never carries an error as a panic or throw; failure is part of the
// normal output domain.
type Resolution struct {
	State ResolutionState
	Facts domain.Facts
	Err   error
}

// Loading reports a resolution whose grants have not arrived yet.
func Loading() Resolution {
	return Resolution{State: ResolutionLoading}
}

// Ready wraps derived facts.
func Ready(facts domain.Facts) Resolution {
	return Resolution{State: ResolutionReady, Facts: facts}
}

// Failed wraps a grant-fetch error.
func Failed(err error) Resolution {
	return Resolution{State: ResolutionFailed, Err: err}
}

// Resolve derives facts from a fetched grant list.
func Resolve(grants []domain.RoleGrant) Resolution {
	return Ready(domain.DeriveFacts(grants))
}
