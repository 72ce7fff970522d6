package session

import (
	"context"
	"sync"

	"github.com/spec-kit/itsm-console/internal/domain"
)

// Session is the explicit per-principal state created at sign-in and torn
// down at sign-out. It owns the grant list, the derived role facts, and
// the interface-mode preference. All derived facts are pure functions of
// the current grant list; nothing here is a hidden singleton.
type Session struct {
	PrincipalID string
	Profile     *domain.Profile
	DeviceID    string

	mu     sync.RWMutex
	grants []domain.RoleGrant
	facts  domain.Facts
	mode   Mode

	store ModeStore
}

// New builds a session from a freshly fetched grant list and reads the
// persisted interface-mode slot for the device. Absent or malformed slot
// values default to si for staff; non-staff are forced to user regardless
// of what the slot holds.
func New(ctx context.Context, profile *domain.Profile, grants []domain.RoleGrant, deviceID string, store ModeStore) *Session {
	s := &Session{
		PrincipalID: profile.ID,
		Profile:     profile,
		DeviceID:    deviceID,
		grants:      grants,
		facts:       domain.DeriveFacts(grants),
		mode:        ModeSI,
		store:       store,
	}
	if store != nil {
		if raw, err := store.Get(ctx, deviceID); err == nil && raw != "" {
			s.mode = ParseMode(raw)
		}
	}
	return s
}

// Facts returns the derived capability flags.
func (s *Session) Facts() domain.Facts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facts
}

// Grants returns a copy of the raw grant list.
func (s *Session) Grants() []domain.RoleGrant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoleGrant, len(s.grants))
	copy(out, s.grants)
	return out
}

// ReplaceGrants installs a refreshed grant list and recomputes the facts.
func (s *Session) ReplaceGrants(grants []domain.RoleGrant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants = grants
	s.facts = domain.DeriveFacts(grants)
}

// Mode reports the externally visible interface mode. It is re-derived
// from the current role facts on every read: a principal downgraded
// mid-session observes user even while the internal state still holds si.
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.facts.IsITStaff {
		return ModeUser
	}
	return s.mode
}

// CanSwitchMode reports whether the principal may toggle surfaces.
func (s *Session) CanSwitchMode() bool {
	return s.Facts().IsITStaff
}

// SetMode switches surfaces and persists the choice to the device slot.
// A non-staff caller is a no-op: neither internal nor persisted state
// changes.
func (s *Session) SetMode(ctx context.Context, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.facts.IsITStaff {
		return nil
	}
	if mode != ModeSI && mode != ModeUser {
		mode = ModeSI
	}
	s.mode = mode
	if s.store == nil {
		return nil
	}
	return s.store.Set(ctx, s.DeviceID, mode)
}

// ToggleMode flips si and user for staff; no-op otherwise.
func (s *Session) ToggleMode(ctx context.Context) error {
	if !s.CanSwitchMode() {
		return nil
	}
	next := ModeSI
	if s.Mode() == ModeSI {
		next = ModeUser
	}
	return s.SetMode(ctx, next)
}
