package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/messaging"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/metrics"
)

// BillingReconciler listens for completed appointments and makes sure the
// automatic invoice exists. The transition normally writes it in the same
// transaction, so this is a safety net: the unique index on the
// appointment keeps a replayed or duplicated event from billing twice.
type BillingReconciler struct {
	broker  messaging.Broker
	runner  repository.TxRunner
	txnRepo repository.TransactionRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewBillingReconciler(broker messaging.Broker, runner repository.TxRunner, txnRepo repository.TransactionRepository, logger *logger.Logger, m *metrics.Metrics) *BillingReconciler {
	return &BillingReconciler{
		broker:  broker,
		runner:  runner,
		txnRepo: txnRepo,
		logger:  logger,
		metrics: m,
	}
}

func (r *BillingReconciler) Start(ctx context.Context) error {
	feed, err := r.broker.Subscribe(ctx, model.EventAppointmentCompleted)
	if err != nil {
		return fmt.Errorf("failed to subscribe to completion events: %w", err)
	}

	r.logger.Info("starting billing reconciler")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down billing reconciler")
			return nil
		case raw, open := <-feed:
			if !open {
				return nil
			}
			if err := r.handle(ctx, raw); err != nil {
				r.logger.Error(err, "failed to reconcile completion event")
			}
		}
	}
}

func (r *BillingReconciler) handle(ctx context.Context, raw []byte) error {
	var envelope messaging.Message
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	payload, err := json.Marshal(envelope.Payload)
	if err != nil {
		return fmt.Errorf("failed to re-encode payload: %w", err)
	}
	var event model.AppointmentCompletedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode completion event: %w", err)
	}

	existing, err := r.txnRepo.ListByAppointment(ctx, event.AppointmentID)
	if err != nil {
		return fmt.Errorf("failed to check existing invoices: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	return r.runner.WithTx(ctx, func(tx repository.Tx) error {
		apt, err := tx.GetAppointmentForUpdate(ctx, event.AppointmentID)
		if err != nil {
			return err
		}
		if apt.Status != model.AppointmentStatusCompleted {
			return nil
		}

		doctor, err := tx.GetDoctor(ctx, apt.DoctorID)
		if err != nil {
			return err
		}
		if doctor.ServicePrice == nil {
			return nil
		}

		aptID := apt.ID
		transitionID := event.TransitionID
		invoice := &model.Transaction{
			ID:            uuid.New(),
			PatientID:     apt.PatientID,
			PatientName:   apt.PatientName,
			Date:          time.Now(),
			Amount:        *doctor.ServicePrice,
			Status:        model.TransactionStatusSuccess,
			Service:       fmt.Sprintf("%s Consultation", doctor.Specialty),
			AppointmentID: &aptID,
			TransitionID:  &transitionID,
		}

		billed, err := tx.CreateAutoInvoice(ctx, invoice)
		if err != nil {
			return err
		}
		if !billed {
			return nil
		}

		entry, err := audit.Entry(event.ActorID, model.AuditActionAutoInvoice, map[string]interface{}{
			"appointment_id": apt.ID,
			"transaction_id": invoice.ID,
			"patient_name":   invoice.PatientName,
			"amount":         invoice.Amount,
			"service":        invoice.Service,
			"reconciled":     true,
		}, "")
		if err != nil {
			return err
		}
		if err := tx.CreateAuditLog(ctx, entry); err != nil {
			return err
		}

		r.metrics.InvoicesCreated.WithLabelValues("reconciled").Inc()
		r.logger.Warn("reconciled missing invoice", "appointment_id", apt.ID.String())
		return nil
	})
}
