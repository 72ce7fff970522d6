package authz

import (
	"net/url"

	"github.com/spec-kit/itsm-console/internal/domain"
)

// Capability is the access requirement attached to a navigation target.
type Capability int

const (
	CapabilityAny Capability = iota
	RequireAgent
	RequireAdmin
	RequireITStaff
	RequireFrontOffice
)

// Well-known navigation roots.
const (
	PathBackOfficeRoot = "/"
	PathPortalRoot     = "/portal"
	PathSignIn         = "/auth"
)

// DecisionKind classifies a guard outcome.
type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionSuspend
	DecisionRedirect
)

// Decision is the pure outcome of a guard evaluation. Redirects carry the
// target location; the navigation mechanics live with the caller.
type Decision struct {
	Kind     DecisionKind
	Location string
}

func allow() Decision {
	return Decision{Kind: DecisionAllow}
}

func suspend() Decision {
	return Decision{Kind: DecisionSuspend}
}

func redirect(location string) Decision {
	return Decision{Kind: DecisionRedirect, Location: location}
}

// GuardInput bundles everything a guard evaluation depends on.
type GuardInput struct {
	Authenticated bool
	Resolution    Resolution
	Capability    Capability
	// PortalSurface is true when an IT-staff principal is viewing the
	// portal surface (interface mode "user").
	PortalSurface bool
	Path          string
}

// HomeRoute returns the default landing location for a primary role.
func HomeRoute(role domain.Role) string {
	switch role {
	case domain.RoleAdmin, domain.RoleManager:
		return PathBackOfficeRoot
	default:
		return PathPortalRoot
	}
}

// SignInLocation builds the sign-in redirect preserving the requested path.
func SignInLocation(from string) string {
	if from == "" || from == PathSignIn {
		return PathSignIn
	}
	return PathSignIn + "?redirect=" + url.QueryEscape(from)
}

// Decide evaluates a navigation request against the resolver output.
//
// Unauthenticated principals go to sign-in with the original location
// preserved. A still-loading resolution suspends rather than redirecting.
// Failed capability checks redirect to a role-appropriate landing location,
// never to a generic error page. IT staff browsing in portal mode are
// redirected from back-office paths to their portal equivalents: they are
// authorized, only viewing a different surface.
func Decide(in GuardInput) Decision {
	if !in.Authenticated {
		return redirect(SignInLocation(in.Path))
	}

	switch in.Resolution.State {
	case ResolutionLoading:
		return suspend()
	case ResolutionFailed:
		return suspend()
	}

	facts := in.Resolution.Facts

	switch in.Capability {
	case RequireAdmin:
		if !facts.IsAdmin {
			return redirect(HomeRoute(facts.PrimaryRole))
		}
	case RequireAgent:
		if !facts.IsAgent {
			return redirect(HomeRoute(facts.PrimaryRole))
		}
	case RequireITStaff:
		if !facts.IsITStaff {
			// non-staff have no back-office fallback
			return redirect(PathPortalRoot)
		}
	case RequireFrontOffice:
		// IT staff in portal mode count as front office: the portal
		// routing table takes precedence over their role.
		if !facts.IsFrontOffice && !in.PortalSurface {
			return redirect(PathBackOfficeRoot)
		}
	}

	if facts.IsITStaff && in.PortalSurface {
		if target, ok := PortalEquivalent(in.Path); ok {
			return redirect(target)
		}
	}

	return allow()
}
