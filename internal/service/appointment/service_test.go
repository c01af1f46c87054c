package appointment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/metrics"
)

var testMetrics = metrics.New("appointment_test")

// fakeStore is an in-memory stand-in for the database. WithTx snapshots the
// write sets and restores them when fn fails, mimicking a rollback.
type fakeStore struct {
	users        map[uuid.UUID]*model.User
	patients     map[uuid.UUID]*model.Patient
	doctors      map[uuid.UUID]*model.Doctor
	appointments map[uuid.UUID]*model.Appointment
	invoices     map[uuid.UUID]*model.Transaction // keyed by appointment ID
	audits       []*model.AuditLog
	events       []*model.OutboxEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[uuid.UUID]*model.User),
		patients:     make(map[uuid.UUID]*model.Patient),
		doctors:      make(map[uuid.UUID]*model.Doctor),
		appointments: make(map[uuid.UUID]*model.Appointment),
		invoices:     make(map[uuid.UUID]*model.Transaction),
	}
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	savedAudits := len(s.audits)
	savedEvents := len(s.events)
	savedStatuses := make(map[uuid.UUID]model.AppointmentStatus)
	for id, apt := range s.appointments {
		savedStatuses[id] = apt.Status
	}
	savedInvoices := make(map[uuid.UUID]*model.Transaction)
	for id, inv := range s.invoices {
		savedInvoices[id] = inv
	}
	savedAppointments := make(map[uuid.UUID]bool)
	for id := range s.appointments {
		savedAppointments[id] = true
	}

	if err := fn(s); err != nil {
		s.audits = s.audits[:savedAudits]
		s.events = s.events[:savedEvents]
		s.invoices = savedInvoices
		for id, apt := range s.appointments {
			if !savedAppointments[id] {
				delete(s.appointments, id)
				continue
			}
			apt.Status = savedStatuses[id]
		}
		return err
	}
	return nil
}

func (s *fakeStore) GetAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *apt
	return &copied, nil
}

func (s *fakeStore) CreateAppointment(ctx context.Context, apt *model.Appointment) error {
	s.appointments[apt.ID] = apt
	return nil
}

func (s *fakeStore) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) error {
	apt, ok := s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if apt.Status != from {
		return repository.ErrConcurrentUpdate
	}
	apt.Status = to
	return nil
}

func (s *fakeStore) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (s *fakeStore) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) CreateAutoInvoice(ctx context.Context, txn *model.Transaction) (bool, error) {
	if _, exists := s.invoices[*txn.AppointmentID]; exists {
		return false, nil
	}
	s.invoices[*txn.AppointmentID] = txn
	return true, nil
}

func (s *fakeStore) CreateAuditLog(ctx context.Context, log *model.AuditLog) error {
	s.audits = append(s.audits, log)
	return nil
}

func (s *fakeStore) CreateOutboxEvent(ctx context.Context, event *model.OutboxEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.GetAppointmentForUpdate(ctx, id)
}

func (s *fakeStore) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	out := make([]*model.Appointment, 0, len(s.appointments))
	for _, apt := range s.appointments {
		out = append(out, apt)
	}
	return out, nil
}

func price(v float64) *float64 { return &v }

func seed(store *fakeStore, servicePrice *float64) (actorID uuid.UUID, req *model.CreateAppointmentRequest) {
	actor := &model.User{Base: model.Base{ID: uuid.New()}, Name: "Reception A", Role: model.RoleReceptionist}
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, Name: "Ahmed Said"}
	doctor := &model.Doctor{Base: model.Base{ID: uuid.New()}, Name: "Dr. Mona", Specialty: "Cardiology", ServicePrice: servicePrice}

	store.users[actor.ID] = actor
	store.patients[patient.ID] = patient
	store.doctors[doctor.ID] = doctor

	return actor.ID, &model.CreateAppointmentRequest{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		DateTime:  time.Now().Add(24 * time.Hour),
	}
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, store, testMetrics, logger.NewLogger(nil))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.AppointmentStatus
		want     bool
	}{
		{model.AppointmentStatusScheduled, model.AppointmentStatusWaiting, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusScheduled, model.AppointmentStatusFollowUp, true},
		{model.AppointmentStatusWaiting, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusWaiting, model.AppointmentStatusFollowUp, true},
		{model.AppointmentStatusWaiting, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusFollowUp, true},
		{model.AppointmentStatusCompleted, model.AppointmentStatusWaiting, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusFollowUp, model.AppointmentStatusWaiting, true},
		{model.AppointmentStatusFollowUp, model.AppointmentStatusCompleted, true},
		{model.AppointmentStatusFollowUp, model.AppointmentStatusScheduled, false},
		{model.AppointmentStatusCompleted, model.AppointmentStatusCompleted, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCreateSnapshotsNames(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, price(5000))
	svc := newTestService(store)

	apt, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "Ahmed Said", apt.PatientName)
	assert.Equal(t, "Dr. Mona", apt.DoctorName)
	assert.Equal(t, "Cardiology", apt.DoctorSpecialty)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.False(t, apt.SnapshotAt.IsZero())

	require.Len(t, store.audits, 1)
	assert.Equal(t, model.AuditActionCreateAppointment, store.audits[0].Action)
	require.Len(t, store.events, 1)
	assert.Equal(t, model.EventAppointmentCreated, store.events[0].EventType)
}

func TestCreateUnknownPatientWritesNothing(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, nil)
	req.PatientID = uuid.New()
	svc := newTestService(store)

	_, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	assert.Empty(t, store.appointments)
	assert.Empty(t, store.audits)
	assert.Empty(t, store.events)
}

func TestCompleteCreatesInvoice(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, price(5000))
	svc := newTestService(store)

	apt, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.NoError(t, err)

	result, err := svc.TransitionStatus(context.Background(), actorID, apt.ID, model.AppointmentStatusCompleted, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusCompleted, result.Appointment.Status)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, 5000.0, result.Invoice.Amount)
	assert.Equal(t, "Cardiology Consultation", result.Invoice.Service)
	assert.Equal(t, "Ahmed Said", result.Invoice.PatientName)
	assert.Equal(t, model.TransactionStatusSuccess, result.Invoice.Status)
	require.NotNil(t, result.Invoice.AppointmentID)
	assert.Equal(t, apt.ID, *result.Invoice.AppointmentID)

	// create + transition + auto invoice
	require.Len(t, store.audits, 3)
	assert.Equal(t, model.AuditActionUpdateStatus, store.audits[1].Action)
	assert.Equal(t, model.AuditActionAutoInvoice, store.audits[2].Action)

	var types []string
	for _, e := range store.events {
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, model.EventAppointmentStatus)
	assert.Contains(t, types, model.EventAppointmentCompleted)
}

func TestCompleteWithoutServicePriceBillsNothing(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, nil)
	svc := newTestService(store)

	apt, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.NoError(t, err)

	result, err := svc.TransitionStatus(context.Background(), actorID, apt.ID, model.AppointmentStatusCompleted, "10.0.0.1")
	require.NoError(t, err)

	assert.Nil(t, result.Invoice)
	assert.Empty(t, store.invoices)
}

func TestRepeatCompletionDoesNotBillTwice(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, price(3000))
	svc := newTestService(store)

	apt, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.NoError(t, err)

	first, err := svc.TransitionStatus(context.Background(), actorID, apt.ID, model.AppointmentStatusCompleted, "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, first.Invoice)

	// Same-state re-entry is allowed but finds the existing invoice.
	second, err := svc.TransitionStatus(context.Background(), actorID, apt.ID, model.AppointmentStatusCompleted, "10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, second.Invoice)
	assert.Len(t, store.invoices, 1)
}

func TestTransitionBackToScheduledRejected(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, price(3000))
	svc := newTestService(store)

	apt, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), actorID, apt.ID, model.AppointmentStatusWaiting, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), actorID, apt.ID, model.AppointmentStatusScheduled, "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidTransition)

	got := store.appointments[apt.ID]
	assert.Equal(t, model.AppointmentStatusWaiting, got.Status)
}

func TestTransitionUnknownStatusRejected(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, nil)
	svc := newTestService(store)

	apt, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), actorID, apt.ID, model.AppointmentStatus("Cancelled"), "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionUnknownActorRejected(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, price(3000))
	svc := newTestService(store)

	apt, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), uuid.New(), apt.ID, model.AppointmentStatusCompleted, "10.0.0.1")
	require.Error(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, store.appointments[apt.ID].Status)
	assert.Empty(t, store.invoices)
}

func TestStatusEventCarriesTransition(t *testing.T) {
	store := newFakeStore()
	actorID, req := seed(store, nil)
	svc := newTestService(store)

	apt, err := svc.Create(context.Background(), actorID, req, "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), actorID, apt.ID, model.AppointmentStatusWaiting, "10.0.0.1")
	require.NoError(t, err)

	var statusEvent *model.OutboxEvent
	for _, e := range store.events {
		if e.EventType == model.EventAppointmentStatus {
			statusEvent = e
		}
	}
	require.NotNil(t, statusEvent)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(statusEvent.Payload, &payload))
	assert.Equal(t, string(model.AppointmentStatusScheduled), payload["from"])
	assert.Equal(t, string(model.AppointmentStatusWaiting), payload["to"])
	assert.NotEmpty(t, payload["transition_id"])
}
