package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-console/internal/auth"
	"github.com/spec-kit/itsm-console/internal/authz"
	"github.com/spec-kit/itsm-console/internal/session"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// Guard evaluates the route's capability against the caller's session and
// renders the decision over HTTP. Allow falls through to the handler,
// redirect decisions become 303s carrying the navigation target, and a
// failed role resolution holds the request at 503 rather than guessing.
func Guard(capability authz.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := authz.GuardInput{
			Capability: capability,
			Path:       c.Path(),
		}
		if sess, ok := auth.FromContext(c); ok {
			facts := sess.Facts()
			in.Authenticated = true
			in.Resolution = authz.Ready(facts)
			in.PortalSurface = facts.IsITStaff && sess.Mode() == session.ModeUser
		}

		decision := authz.Decide(in)
		switch decision.Kind {
		case authz.DecisionAllow:
			return c.Next()
		case authz.DecisionSuspend:
			return apperrors.NewDomainError(apperrors.CodeRemoteFailure, "role resolution unavailable", fiber.StatusServiceUnavailable, nil)
		default:
			return c.Redirect(decision.Location, fiber.StatusSeeOther)
		}
	}
}
