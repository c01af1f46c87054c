package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/metrics"
)

// Service handles manual billing. Automatic completion invoices are
// written by the appointment transition inside its own transaction; this
// service only appends operator-entered transactions.
type Service struct {
	repo        repository.TransactionRepository
	patientRepo repository.PatientRepository
	auditor     *audit.Service
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewService(repo repository.TransactionRepository, patientRepo repository.PatientRepository, auditor *audit.Service, m *metrics.Metrics, logger *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		auditor:     auditor,
		metrics:     m,
		logger:      logger,
	}
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateTransactionRequest, ipAddress string) (*model.Transaction, error) {
	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient lookup failed: %w", err)
	}

	txn := &model.Transaction{
		ID:          uuid.New(),
		PatientID:   patient.ID,
		PatientName: patient.Name,
		Date:        time.Now(),
		Amount:      req.Amount,
		Status:      req.Status,
		Service:     req.Service,
	}

	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := s.auditor.Record(ctx, actorID, model.AuditActionCreateInvoice, map[string]interface{}{
		"transaction_id": txn.ID,
		"patient_name":   txn.PatientName,
		"amount":         txn.Amount,
		"service":        txn.Service,
	}, ipAddress); err != nil {
		s.logger.Error(err, "failed to audit transaction", "transaction_id", txn.ID.String())
	}

	s.metrics.InvoicesCreated.WithLabelValues("manual").Inc()
	return txn, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.TransactionFilters) ([]*model.Transaction, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Transaction, error) {
	return s.repo.ListByAppointment(ctx, appointmentID)
}
