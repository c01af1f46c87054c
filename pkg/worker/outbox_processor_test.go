package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/metrics"
)

var testMetrics = metrics.New("outbox_test")

type fakeOutboxRepo struct {
	pending []*model.OutboxEvent
	updates []statusUpdate
	deleted int64
}

type statusUpdate struct {
	id      uuid.UUID
	status  model.OutboxStatus
	errMsg  *string
	retryAt *time.Time
}

func (r *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.pending = append(r.pending, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if limit > len(r.pending) {
		limit = len(r.pending)
	}
	return r.pending[:limit], nil
}

func (r *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	r.updates = append(r.updates, statusUpdate{id: id, status: status, errMsg: errorMessage, retryAt: retryAt})
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.deleted, nil
}

type fakeBroker struct {
	published map[string][]interface{}
	err       error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string][]interface{})}
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if b.err != nil {
		return b.err
	}
	b.published[channel] = append(b.published[channel], message)
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:    10,
		PollInterval: time.Second,
		MaxRetries:   3,
		RetryBackoff: time.Minute,
	}
}

func pendingEvent(eventType string, retryCount int) *model.OutboxEvent {
	payload, _ := json.Marshal(map[string]string{"k": "v"})
	return &model.OutboxEvent{
		ID:         uuid.New(),
		EventType:  eventType,
		Payload:    payload,
		Status:     model.OutboxStatusPending,
		RetryCount: retryCount,
		CreatedAt:  time.Now(),
	}
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{
		pendingEvent(model.EventAppointmentCreated, 0),
		pendingEvent(model.EventAppointmentCompleted, 0),
	}}
	broker := newFakeBroker()
	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Len(t, broker.published[model.EventAppointmentCreated], 1)
	assert.Len(t, broker.published[model.EventAppointmentCompleted], 1)

	require.Len(t, repo.updates, 2)
	for _, u := range repo.updates {
		assert.Equal(t, model.OutboxStatusProcessed, u.status)
	}
}

func TestPublishFailureSchedulesRetry(t *testing.T) {
	event := pendingEvent(model.EventAppointmentCreated, 0)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{event}}
	broker := newFakeBroker()
	broker.err = errors.New("redis down")
	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	require.Len(t, repo.updates, 1)
	u := repo.updates[0]
	assert.Equal(t, model.OutboxStatusRetry, u.status)
	require.NotNil(t, u.errMsg)
	assert.Equal(t, "redis down", *u.errMsg)
	require.NotNil(t, u.retryAt)
	assert.WithinDuration(t, time.Now().Add(time.Minute), *u.retryAt, 5*time.Second)
}

func TestRetryBackoffGrowsWithRetryCount(t *testing.T) {
	event := pendingEvent(model.EventAppointmentCreated, 1)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{event}}
	broker := newFakeBroker()
	broker.err = errors.New("redis down")
	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	require.Len(t, repo.updates, 1)
	require.NotNil(t, repo.updates[0].retryAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), *repo.updates[0].retryAt, 5*time.Second)
}

func TestExhaustedRetriesParkEventAsFailed(t *testing.T) {
	event := pendingEvent(model.EventAppointmentCreated, 2)
	repo := &fakeOutboxRepo{pending: []*model.OutboxEvent{event}}
	broker := newFakeBroker()
	broker.err = errors.New("redis down")
	p := NewOutboxProcessor(repo, broker, testConfig(), logger.NewLogger(nil), testMetrics)

	require.NoError(t, p.processEvents(context.Background()))

	require.Len(t, repo.updates, 1)
	u := repo.updates[0]
	assert.Equal(t, model.OutboxStatusFailed, u.status)
	assert.Nil(t, u.retryAt)
}

func TestInvalidConfigPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(&fakeOutboxRepo{}, newFakeBroker(), OutboxProcessorConfig{}, logger.NewLogger(nil), testMetrics)
	})
}
