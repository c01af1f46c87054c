package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/email"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/security"
)

var ErrEmailTaken = errors.New("email already registered")

type Service struct {
	repo     repository.UserRepository
	hasher   security.PasswordHasher
	emailSvc email.Service
	auditor  *audit.Service
	logger   *logger.Logger
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, emailSvc email.Service, auditor *audit.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		emailSvc: emailSvc,
		auditor:  auditor,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateUserRequest, ipAddress string) (*model.User, error) {
	if existing, _ := s.repo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name, req.Password); err != nil {
		s.logger.Error(err, "failed to send welcome email", "email", user.Email)
	}

	if err := s.auditor.Record(ctx, actorID, model.AuditActionCreateUser, map[string]interface{}{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"role":    user.Role,
	}, ipAddress); err != nil {
		s.logger.Error(err, "failed to audit user creation", "user_id", user.ID.String())
	}

	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *model.UpdateUserRequest, ipAddress string) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if existing, _ := s.repo.GetByEmail(ctx, *req.Email); existing != nil {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := s.auditor.Record(ctx, actorID, model.AuditActionUpdateUser, map[string]interface{}{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    user.Role,
	}, ipAddress); err != nil {
		s.logger.Error(err, "failed to audit user update", "user_id", user.ID.String())
	}

	return user, nil
}

func (s *Service) Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID, ipAddress string) error {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.auditor.Record(ctx, actorID, model.AuditActionDeleteUser, map[string]interface{}{
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
	}, ipAddress); err != nil {
		s.logger.Error(err, "failed to audit user deletion", "user_id", id.String())
	}

	return nil
}

func (s *Service) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	return s.repo.List(ctx, filters)
}
