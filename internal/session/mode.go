package session

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Mode selects which interface surface the console renders.
type Mode string

const (
	// ModeSI is the back-office surface for IT staff.
	ModeSI Mode = "si"
	// ModeUser is the portal surface.
	ModeUser Mode = "user"
)

// modeSlotPrefix is the device-local key-value slot holding the literal
// "si" or "user".
const modeSlotPrefix = "itsm-interface-mode:"

// ParseMode reads a persisted slot value. Absent or malformed values fall
// back to si; the caller applies the staff-only gate on top.
func ParseMode(raw string) Mode {
	switch Mode(strings.TrimSpace(raw)) {
	case ModeUser:
		return ModeUser
	case ModeSI:
		return ModeSI
	default:
		return ModeSI
	}
}

// ModeStore persists the interface-mode preference per device, not per
// account.
type ModeStore interface {
	Get(ctx context.Context, deviceID string) (string, error)
	Set(ctx context.Context, deviceID string, value Mode) error
}

type redisModeStore struct {
	client *redis.Client
}

// NewRedisModeStore returns a Redis-backed mode store.
func NewRedisModeStore(client *redis.Client) ModeStore {
	return &redisModeStore{client: client}
}

func (s *redisModeStore) Get(ctx context.Context, deviceID string) (string, error) {
	val, err := s.client.Get(ctx, modeSlotPrefix+deviceID).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *redisModeStore) Set(ctx context.Context, deviceID string, value Mode) error {
	return s.client.Set(ctx, modeSlotPrefix+deviceID, string(value), 0).Err()
}

// MemoryModeStore is an in-process ModeStore for tests and single-node
// development.
type MemoryModeStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemoryModeStore constructs an empty store.
func NewMemoryModeStore() *MemoryModeStore {
	return &MemoryModeStore{slots: make(map[string]string)}
}

func (s *MemoryModeStore) Get(_ context.Context, deviceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots[deviceID], nil
}

func (s *MemoryModeStore) Set(_ context.Context, deviceID string, value Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[deviceID] = string(value)
	return nil
}

// Seed writes a raw slot value, bypassing validation. Test helper.
func (s *MemoryModeStore) Seed(deviceID, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[deviceID] = raw
}
