package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

// SectionGeneral is the catch-all for actions without a dedicated section.
const SectionGeneral = "general"

var sectionFor = map[string]string{
	model.AuditActionCreatePatient:     "patients",
	model.AuditActionUpdatePatient:     "patients",
	model.AuditActionDeletePatient:     "patients",
	model.AuditActionCreateDoctor:      "doctors",
	model.AuditActionUpdateDoctor:      "doctors",
	model.AuditActionDeleteDoctor:      "doctors",
	model.AuditActionCreateAppointment: "appointments",
	model.AuditActionUpdateStatus:      "appointments",
	model.AuditActionCreateInvoice:     "billing",
	model.AuditActionAutoInvoice:       "billing",
	model.AuditActionCreateUser:        "users",
	model.AuditActionUpdateUser:        "users",
	model.AuditActionDeleteUser:        "users",
	model.AuditActionUpdatePermissions: "permissions",
	model.AuditActionUpdateSettings:    "settings",
}

// SectionFor maps an action label to its log section, falling back to
// SectionGeneral for labels it does not recognize.
func SectionFor(action string) string {
	if s, ok := sectionFor[action]; ok {
		return s
	}
	return SectionGeneral
}

type Service struct {
	repo     repository.AuditRepository
	userRepo repository.UserRepository
	logger   *logger.Logger
}

func NewService(repo repository.AuditRepository, userRepo repository.UserRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Record writes an audit entry. The actor must be a real user: entries
// attributed to unknown users are rejected rather than written with a
// dangling reference.
func (s *Service) Record(ctx context.Context, actorID uuid.UUID, action string, details interface{}, ipAddress string) error {
	if actorID == uuid.Nil {
		return fmt.Errorf("audit entry requires an actor")
	}
	if _, err := s.userRepo.Get(ctx, actorID); err != nil {
		return fmt.Errorf("audit actor lookup failed: %w", err)
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	entry := &model.AuditLog{
		ID:        uuid.New(),
		UserID:    actorID,
		Action:    action,
		Details:   payload,
		Section:   SectionFor(action),
		IPAddress: ipAddress,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Entry builds an audit row without writing it, for callers that persist
// the entry inside their own database transaction.
func Entry(actorID uuid.UUID, action string, details interface{}, ipAddress string) (*model.AuditLog, error) {
	payload, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit details: %w", err)
	}
	return &model.AuditLog{
		ID:        uuid.New(),
		UserID:    actorID,
		Action:    action,
		Details:   payload,
		Section:   SectionFor(action),
		IPAddress: ipAddress,
		CreatedAt: time.Now(),
	}, nil
}

func (s *Service) List(ctx context.Context, filters *model.AuditLogFilters, p *model.Pagination) ([]*model.AuditLog, int64, error) {
	return s.repo.List(ctx, filters, p)
}

// Cleanup deletes entries older than the retention window.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	before := time.Now().Add(-retention)
	deleted, err := s.repo.Cleanup(ctx, before)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("audit log cleanup", "deleted", deleted, "before", before)
	}
	return deleted, nil
}
