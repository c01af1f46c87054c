package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	apperrors "github.com/saaabeeer7719-creator/sehatech-full-system/pkg/errors"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

type Service struct {
	repo    repository.SettingsRepository
	auditor *audit.Service
	logger  *logger.Logger
}

func NewService(repo repository.SettingsRepository, auditor *audit.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

func (s *Service) Get(ctx context.Context, key string) (*model.Setting, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("setting", err)
		}
		return nil, apperrors.Internal(err)
	}
	return setting, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return settings, nil
}

func (s *Service) Set(ctx context.Context, actorID uuid.UUID, key, value, ipAddress string) (*model.Setting, error) {
	setting := &model.Setting{
		Key:   key,
		Value: value,
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to store setting: %w", err))
	}

	if err := s.auditor.Record(ctx, actorID, model.AuditActionUpdateSettings, map[string]interface{}{
		"key":   key,
		"value": value,
	}, ipAddress); err != nil {
		s.logger.Error(err, "failed to audit settings change", "key", key)
	}

	return setting, nil
}
