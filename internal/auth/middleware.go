package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-console/internal/repository"
	"github.com/spec-kit/itsm-console/internal/session"
	apperrors "github.com/spec-kit/itsm-console/pkg/util"
)

const sessionKey = "auth_session"

// deviceHeader scopes the interface-mode slot to the browser/device. When
// the client sends nothing the principal id stands in.
const deviceHeader = "X-Device-ID"

// Middleware validates bearer tokens and materializes the per-principal
// session (profile, fresh grant list, interface mode) for the request.
type Middleware struct {
	tokens    *TokenManager
	profiles  repository.ProfileRepository
	roles     repository.RoleRepository
	modeStore session.ModeStore
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, profiles repository.ProfileRepository, roles repository.RoleRepository, modeStore session.ModeStore) *Middleware {
	return &Middleware{tokens: tokens, profiles: profiles, roles: roles, modeStore: modeStore}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	profile, err := m.profiles.GetByID(c.Context(), claims.PrincipalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("principal not found")
		}
		return apperrors.MapError(err)
	}

	grants, err := m.roles.ListByUser(c.Context(), profile.ID)
	if err != nil {
		return apperrors.MapError(err)
	}

	deviceID := strings.TrimSpace(c.Get(deviceHeader))
	if deviceID == "" {
		deviceID = profile.ID
	}

	sess := session.New(c.Context(), profile, grants, deviceID, m.modeStore)
	c.Locals(sessionKey, sess)
	return c.Next()
}

// FromContext retrieves the authenticated session.
func FromContext(c *fiber.Ctx) (*session.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*session.Session)
	return sess, ok
}
