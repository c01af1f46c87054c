package patient

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
	repo    repository.PatientRepository
	auditor *audit.Service
	logger  *logger.Logger
}

func NewService(repo repository.PatientRepository, auditor *audit.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreatePatientRequest, ipAddress string) (*model.Patient, error) {
	now := time.Now()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:    req.Name,
		DOB:     req.DOB,
		Gender:  req.Gender,
		Phone:   req.Phone,
		Address: req.Address,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.audit(ctx, actorID, model.AuditActionCreatePatient, patient, ipAddress)
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req *model.UpdatePatientRequest, ipAddress string) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.DOB != nil {
		patient.DOB = req.DOB
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.audit(ctx, actorID, model.AuditActionUpdatePatient, patient, ipAddress)
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID, ipAddress string) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.audit(ctx, actorID, model.AuditActionDeletePatient, patient, ipAddress)
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) audit(ctx context.Context, actorID uuid.UUID, action string, patient *model.Patient, ipAddress string) {
	err := s.auditor.Record(ctx, actorID, action, map[string]interface{}{
		"patient_id": patient.ID,
		"name":       patient.Name,
	}, ipAddress)
	if err != nil {
		s.logger.Error(err, "failed to audit patient change", "action", action, "patient_id", patient.ID.String())
	}
}
