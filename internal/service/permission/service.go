package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

var (
	// ErrAdminImmutable is returned when a caller tries to edit the admin
	// role's capabilities. Admin stays all-true so the system can never be
	// locked out of its own administration.
	ErrAdminImmutable = errors.New("admin permissions cannot be modified")

	// ErrUnknownKey is returned for capability keys outside the registry.
	ErrUnknownKey = errors.New("unknown capability key")

	// ErrUnknownRole is returned when editing capabilities of a role that
	// does not exist.
	ErrUnknownRole = errors.New("unknown role")
)

// Service resolves role capability sets: built-in defaults overlaid with
// persisted runtime overrides. Reads are served from memory; writes go to
// the store first, then the in-memory copy.
type Service struct {
	repo    repository.PermissionRepository
	auditor *audit.Service
	logger  *logger.Logger

	mu        sync.RWMutex
	overrides map[model.Role]map[string]bool
	version   int64
	onChange  []func()
}

func NewService(repo repository.PermissionRepository, auditor *audit.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		auditor:   auditor,
		logger:    logger,
		overrides: make(map[model.Role]map[string]bool),
	}
}

// Load hydrates the in-memory override table from the store. Call once at
// startup; SetCapability keeps the table current afterwards.
func (s *Service) Load(ctx context.Context) error {
	rows, err := s.repo.ListOverrides(ctx)
	if err != nil {
		return fmt.Errorf("failed to load permission overrides: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides = make(map[model.Role]map[string]bool)
	for _, row := range rows {
		if row.Role == model.RoleAdmin || !row.Role.Valid() || !KnownKey(row.Key) {
			s.logger.Warn("skipping invalid permission override", "role", string(row.Role), "key", row.Key)
			continue
		}
		if s.overrides[row.Role] == nil {
			s.overrides[row.Role] = make(map[string]bool)
		}
		s.overrides[row.Role][row.Key] = row.Value
		if row.Version > s.version {
			s.version = row.Version
		}
	}
	return nil
}

// GetPermissions returns the effective capability set for role. Unknown
// roles resolve to an all-false set.
func (s *Service) GetPermissions(role model.Role) Set {
	set := Defaults(role)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, value := range s.overrides[role] {
		set[key] = value
	}
	return set
}

// HasCapability reports whether role currently holds key. Unknown roles
// and unknown keys answer false.
func (s *Service) HasCapability(role model.Role, key string) bool {
	if !KnownKey(key) {
		return false
	}

	s.mu.RLock()
	if value, ok := s.overrides[role][key]; ok {
		s.mu.RUnlock()
		return value
	}
	s.mu.RUnlock()

	return Defaults(role)[key]
}

// SetCapability persists a capability override for role and applies it to
// the live table. The change is audited against actorID.
func (s *Service) SetCapability(ctx context.Context, actorID uuid.UUID, role model.Role, key string, value bool, ipAddress string) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	if role == model.RoleAdmin {
		return ErrAdminImmutable
	}
	if !KnownKey(key) {
		return ErrUnknownKey
	}

	override := &repository.PermissionOverride{
		Role:      role,
		Key:       key,
		Value:     value,
		UpdatedBy: actorID,
	}
	if err := s.repo.UpsertOverride(ctx, override); err != nil {
		return fmt.Errorf("failed to persist capability override: %w", err)
	}

	s.mu.Lock()
	if s.overrides[role] == nil {
		s.overrides[role] = make(map[string]bool)
	}
	s.overrides[role][key] = value
	s.version++
	listeners := make([]func(), len(s.onChange))
	copy(listeners, s.onChange)
	s.mu.Unlock()

	if err := s.auditor.Record(ctx, actorID, model.AuditActionUpdatePermissions, map[string]interface{}{
		"role":  role,
		"key":   key,
		"value": value,
	}, ipAddress); err != nil {
		s.logger.Error(err, "failed to audit permission change", "role", string(role), "key", key)
	}

	for _, fn := range listeners {
		fn()
	}
	return nil
}

// Version increments on every capability change. Authorization caches use
// it to detect staleness.
func (s *Service) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// OnChange registers a callback invoked after each successful capability
// edit.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}
