package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

type Service struct {
	repo    repository.DoctorRepository
	auditor *audit.Service
	logger  *logger.Logger
}

func NewService(repo repository.DoctorRepository, auditor *audit.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateDoctorRequest, ipAddress string) (*model.Doctor, error) {
	now := time.Now()
	doctor := &model.Doctor{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:           req.Name,
		Specialty:      req.Specialty,
		Image:          req.Image,
		ServicePrice:   req.ServicePrice,
		FreeReturnDays: req.FreeReturnDays,
		AvailableDays:  req.AvailableDays,
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	s.audit(ctx, actorID, model.AuditActionCreateDoctor, doctor, ipAddress)
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *model.UpdateDoctorRequest, ipAddress string) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.Image != nil {
		doctor.Image = *req.Image
	}
	if req.ServicePrice != nil {
		doctor.ServicePrice = req.ServicePrice
	}
	if req.FreeReturnDays != nil {
		doctor.FreeReturnDays = req.FreeReturnDays
	}
	if req.AvailableDays != nil {
		doctor.AvailableDays = req.AvailableDays
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}

	s.audit(ctx, actorID, model.AuditActionUpdateDoctor, doctor, ipAddress)
	return doctor, nil
}

func (s *Service) Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID, ipAddress string) error {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	s.audit(ctx, actorID, model.AuditActionDeleteDoctor, doctor, ipAddress)
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) audit(ctx context.Context, actorID uuid.UUID, action string, doctor *model.Doctor, ipAddress string) {
	err := s.auditor.Record(ctx, actorID, action, map[string]interface{}{
		"doctor_id": doctor.ID,
		"name":      doctor.Name,
		"specialty": doctor.Specialty,
	}, ipAddress)
	if err != nil {
		s.logger.Error(err, "failed to audit doctor change", "action", action, "doctor_id", doctor.ID.String())
	}
}
