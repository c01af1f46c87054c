package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(ctx context.Context, patient *model.Patient) error { return nil }
func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}
func (r *fakePatientRepo) Update(ctx context.Context, patient *model.Patient) error { return nil }
func (r *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }
func (r *fakePatientRepo) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (r *fakeDoctorRepo) Create(ctx context.Context, doctor *model.Doctor) error { return nil }
func (r *fakeDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}
func (r *fakeDoctorRepo) Update(ctx context.Context, doctor *model.Doctor) error { return nil }
func (r *fakeDoctorRepo) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (r *fakeDoctorRepo) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error) {
	return nil, nil
}

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	for _, a := range r.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return r.appointments, nil
}

type fakeTransactionRepo struct {
	transactions []*model.Transaction
}

func (r *fakeTransactionRepo) Create(ctx context.Context, txn *model.Transaction) error { return nil }
func (r *fakeTransactionRepo) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeTransactionRepo) List(ctx context.Context, filters *model.TransactionFilters) ([]*model.Transaction, error) {
	return r.transactions, nil
}
func (r *fakeTransactionRepo) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Transaction, error) {
	return nil, nil
}

// captureServer records the prompt it received and replies with a fixed
// completion.
func captureServer(t *testing.T, reply string) (*httptest.Server, *chatRequest) {
	t.Helper()
	captured := &chatRequest{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func TestSummarizePatientHistoryPrompt(t *testing.T) {
	srv, captured := captureServer(t, "elderly patient, two cardiology visits")

	patientID := uuid.New()
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{
		patientID: {Base: model.Base{ID: patientID}, Name: "Ahmed Said", Gender: "male"},
	}}
	appointments := &fakeAppointmentRepo{appointments: []*model.Appointment{
		{
			Base:            model.Base{ID: uuid.New()},
			PatientID:       patientID,
			PatientName:     "Ahmed Said",
			DoctorName:      "Dr. Mona",
			DoctorSpecialty: "Cardiology",
			DateTime:        time.Date(2026, 8, 12, 10, 30, 0, 0, time.UTC),
			Status:          model.AppointmentStatusCompleted,
		},
	}}
	transactions := &fakeTransactionRepo{transactions: []*model.Transaction{
		{ID: uuid.New(), PatientID: patientID, Service: "Cardiology Consultation", Amount: 5000, Status: model.TransactionStatusSuccess, Date: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)},
	}}

	svc := NewService(newTestClient(srv.URL), patients, &fakeDoctorRepo{}, appointments, transactions, logger.NewLogger(nil))

	summary, err := svc.SummarizePatientHistory(context.Background(), patientID)
	require.NoError(t, err)
	assert.Equal(t, "elderly patient, two cardiology visits", summary)

	require.Len(t, captured.Messages, 2)
	prompt := captured.Messages[1].Content
	assert.Contains(t, prompt, "Ahmed Said")
	assert.Contains(t, prompt, "Dr. Mona")
	assert.Contains(t, prompt, "Cardiology Consultation")
	assert.Contains(t, prompt, "5000.00")
	assert.Contains(t, captured.Messages[0].Content, "clinic staff")
}

func TestSummarizeUnknownPatient(t *testing.T) {
	srv, _ := captureServer(t, "unused")

	svc := NewService(newTestClient(srv.URL), &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}},
		&fakeDoctorRepo{}, &fakeAppointmentRepo{}, &fakeTransactionRepo{}, logger.NewLogger(nil))

	_, err := svc.SummarizePatientHistory(context.Background(), uuid.New())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSuggestBillingServicePrompt(t *testing.T) {
	srv, captured := captureServer(t, "Cardiology Consultation, 5000")

	doctorID := uuid.New()
	aptID := uuid.New()
	servicePrice := 5000.0

	doctors := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{
		doctorID: {Base: model.Base{ID: doctorID}, Name: "Dr. Mona", Specialty: "Cardiology", ServicePrice: &servicePrice},
	}}
	appointments := &fakeAppointmentRepo{appointments: []*model.Appointment{
		{Base: model.Base{ID: aptID}, DoctorID: doctorID, PatientName: "Ahmed Said", DateTime: time.Now()},
	}}

	svc := NewService(newTestClient(srv.URL), &fakePatientRepo{}, doctors, appointments, &fakeTransactionRepo{}, logger.NewLogger(nil))

	suggestion, err := svc.SuggestBillingService(context.Background(), aptID)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology Consultation, 5000", suggestion)

	prompt := captured.Messages[1].Content
	assert.Contains(t, prompt, "Dr. Mona")
	assert.Contains(t, prompt, "5000.00")
	assert.Contains(t, prompt, "- none")
}

func TestSuggestAppointmentSlotsPrompt(t *testing.T) {
	srv, captured := captureServer(t, "Tuesday 10:00, Thursday 14:00")

	doctorID := uuid.New()
	doctors := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{
		doctorID: {Base: model.Base{ID: doctorID}, Name: "Dr. Mona", Specialty: "Cardiology", AvailableDays: pq.StringArray{"Tuesday", "Thursday"}},
	}}
	appointments := &fakeAppointmentRepo{appointments: []*model.Appointment{
		{Base: model.Base{ID: uuid.New()}, DoctorID: doctorID, DateTime: time.Now().Add(48 * time.Hour)},
	}}

	svc := NewService(newTestClient(srv.URL), &fakePatientRepo{}, doctors, appointments, &fakeTransactionRepo{}, logger.NewLogger(nil))

	slots, err := svc.SuggestAppointmentSlots(context.Background(), doctorID)
	require.NoError(t, err)
	assert.Equal(t, "Tuesday 10:00, Thursday 14:00", slots)

	prompt := captured.Messages[1].Content
	assert.Contains(t, prompt, "Tuesday, Thursday")
	assert.Contains(t, prompt, "Booked slots:")
}
