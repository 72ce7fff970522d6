package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-console/internal/auth"
	"github.com/spec-kit/itsm-console/internal/service"
	"github.com/spec-kit/itsm-console/internal/session"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

// requireSession pulls the authenticated session out of the request and
// shapes it into a service actor.
func requireSession(c *fiber.Ctx) (*session.Session, service.Actor, error) {
	sess, ok := auth.FromContext(c)
	if !ok {
		return nil, service.Actor{}, apperrors.NewUnauthenticated("authentication required")
	}
	return sess, service.Actor{ID: sess.PrincipalID, Facts: sess.Facts()}, nil
}
