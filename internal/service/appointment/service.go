package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/metrics"
)

// ErrInvalidTransition is returned when a requested status change is not
// an edge of the lifecycle graph.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the lifecycle graph. Re-entering the current status is
// always allowed and treated as a no-op refresh; moving back to Scheduled
// is never allowed.
var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusScheduled: {model.AppointmentStatusWaiting, model.AppointmentStatusCompleted, model.AppointmentStatusFollowUp},
	model.AppointmentStatusWaiting:   {model.AppointmentStatusCompleted, model.AppointmentStatusFollowUp},
	model.AppointmentStatusCompleted: {model.AppointmentStatusFollowUp},
	model.AppointmentStatusFollowUp:  {model.AppointmentStatusWaiting, model.AppointmentStatusCompleted},
}

// CanTransition reports whether the lifecycle graph permits from -> to.
func CanTransition(from, to model.AppointmentStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if to == allowed {
			return true
		}
	}
	return false
}

type Service struct {
	runner  repository.TxRunner
	repo    repository.AppointmentRepository
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(runner repository.TxRunner, repo repository.AppointmentRepository, m *metrics.Metrics, logger *logger.Logger) *Service {
	return &Service{
		runner:  runner,
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// Create books an appointment. Patient and doctor identity fields are
// copied onto the row at this moment and never refreshed afterwards, so a
// later rename does not rewrite history.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *model.CreateAppointmentRequest, ipAddress string) (*model.Appointment, error) {
	var apt *model.Appointment

	err := s.runner.WithTx(ctx, func(tx repository.Tx) error {
		patient, err := tx.GetPatient(ctx, req.PatientID)
		if err != nil {
			return fmt.Errorf("patient lookup failed: %w", err)
		}
		doctor, err := tx.GetDoctor(ctx, req.DoctorID)
		if err != nil {
			return fmt.Errorf("doctor lookup failed: %w", err)
		}
		if _, err := tx.GetUser(ctx, actorID); err != nil {
			return fmt.Errorf("actor lookup failed: %w", err)
		}

		now := time.Now()
		apt = &model.Appointment{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			PatientID:       patient.ID,
			PatientName:     patient.Name,
			DoctorID:        doctor.ID,
			DoctorName:      doctor.Name,
			DoctorSpecialty: doctor.Specialty,
			DateTime:        req.DateTime,
			Status:          model.AppointmentStatusScheduled,
			SnapshotAt:      now,
		}

		if err := tx.CreateAppointment(ctx, apt); err != nil {
			return err
		}

		entry, err := audit.Entry(actorID, model.AuditActionCreateAppointment, map[string]interface{}{
			"appointment_id": apt.ID,
			"patient_name":   apt.PatientName,
			"doctor_name":    apt.DoctorName,
			"date_time":      apt.DateTime,
		}, ipAddress)
		if err != nil {
			return err
		}
		if err := tx.CreateAuditLog(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		return s.enqueueEvent(ctx, tx, model.EventAppointmentCreated, apt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment created", "appointment_id", apt.ID.String(), "doctor", apt.DoctorName)
	return apt, nil
}

// TransitionStatus moves an appointment along the lifecycle graph. The
// status update, any automatic invoice, the audit entries and the outbox
// events commit in one database transaction: either everything lands or
// nothing does.
func (s *Service) TransitionStatus(ctx context.Context, actorID uuid.UUID, id uuid.UUID, to model.AppointmentStatus, ipAddress string) (*model.TransitionResult, error) {
	if !to.Valid() {
		return nil, ErrInvalidTransition
	}

	transitionID := uuid.New()
	result := &model.TransitionResult{}

	err := s.runner.WithTx(ctx, func(tx repository.Tx) error {
		apt, err := tx.GetAppointmentForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, actorID); err != nil {
			return fmt.Errorf("actor lookup failed: %w", err)
		}

		from := apt.Status
		if !CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}

		if err := tx.UpdateAppointmentStatus(ctx, id, from, to); err != nil {
			return err
		}
		apt.Status = to
		apt.UpdatedAt = time.Now()
		result.Appointment = apt

		entry, err := audit.Entry(actorID, model.AuditActionUpdateStatus, map[string]interface{}{
			"appointment_id": apt.ID,
			"patient_name":   apt.PatientName,
			"from":           from,
			"to":             to,
		}, ipAddress)
		if err != nil {
			return err
		}
		if err := tx.CreateAuditLog(ctx, entry); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}

		if err := s.enqueueEvent(ctx, tx, model.EventAppointmentStatus, map[string]interface{}{
			"appointment_id": apt.ID,
			"transition_id":  transitionID,
			"from":           from,
			"to":             to,
		}); err != nil {
			return err
		}

		if to == model.AppointmentStatusCompleted {
			invoice, err := s.billCompletion(ctx, tx, actorID, apt, transitionID, ipAddress)
			if err != nil {
				return err
			}
			result.Invoice = invoice
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StatusTransitions.WithLabelValues(string(to)).Inc()
	return result, nil
}

// billCompletion writes the automatic invoice for a completed appointment.
// Doctors without a configured service price bill nothing. At most one
// automatic invoice ever exists per appointment; a repeat completion finds
// the existing row and writes nothing.
func (s *Service) billCompletion(ctx context.Context, tx repository.Tx, actorID uuid.UUID, apt *model.Appointment, transitionID uuid.UUID, ipAddress string) (*model.Transaction, error) {
	doctor, err := tx.GetDoctor(ctx, apt.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor lookup failed: %w", err)
	}
	if doctor.ServicePrice == nil {
		return nil, nil
	}

	aptID := apt.ID
	txnID := transitionID
	invoice := &model.Transaction{
		ID:            uuid.New(),
		PatientID:     apt.PatientID,
		PatientName:   apt.PatientName,
		Date:          time.Now(),
		Amount:        *doctor.ServicePrice,
		Status:        model.TransactionStatusSuccess,
		Service:       fmt.Sprintf("%s Consultation", doctor.Specialty),
		AppointmentID: &aptID,
		TransitionID:  &txnID,
	}

	billed, err := tx.CreateAutoInvoice(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	if !billed {
		return nil, nil
	}

	entry, err := audit.Entry(actorID, model.AuditActionAutoInvoice, map[string]interface{}{
		"appointment_id": apt.ID,
		"transaction_id": invoice.ID,
		"patient_name":   invoice.PatientName,
		"amount":         invoice.Amount,
		"service":        invoice.Service,
	}, ipAddress)
	if err != nil {
		return nil, err
	}
	if err := tx.CreateAuditLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	completed := model.AppointmentCompletedEvent{
		AppointmentID: apt.ID,
		TransitionID:  transitionID,
		PatientID:     apt.PatientID,
		PatientName:   apt.PatientName,
		DoctorID:      apt.DoctorID,
		ActorID:       actorID,
		CompletedAt:   time.Now(),
	}
	if err := s.enqueueEvent(ctx, tx, model.EventAppointmentCompleted, completed); err != nil {
		return nil, err
	}

	s.metrics.InvoicesCreated.WithLabelValues("auto").Inc()
	return invoice, nil
}

func (s *Service) enqueueEvent(ctx context.Context, tx repository.Tx, eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   raw,
	}
	if err := tx.CreateOutboxEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to enqueue %s event: %w", eventType, err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}
