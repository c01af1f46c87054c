package chat

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/messaging"
)

type fakeMessageRepo struct {
	messages []*model.Message
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeMessageRepo) ListConversation(ctx context.Context, a, b uuid.UUID, limit int) ([]*model.Message, error) {
	var out []*model.Message
	for _, m := range r.messages {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (r *fakeUserRepo) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}

type fakeBroker struct {
	published map[string][]interface{}
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string][]interface{})}
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.published[channel] = append(b.published[channel], message)
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func TestSendPersistsAndPublishes(t *testing.T) {
	sender := uuid.New()
	recipient := uuid.New()
	repo := &fakeMessageRepo{}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		recipient: {Base: model.Base{ID: recipient}, Name: "Dr. Mona"},
	}}
	broker := newFakeBroker()
	svc := NewService(repo, users, broker, logger.NewLogger(nil))

	msg, err := svc.Send(context.Background(), sender, &model.SendMessageRequest{
		RecipientID: recipient,
		Text:        "patient in room 3",
	})
	require.NoError(t, err)

	assert.Equal(t, sender, msg.SenderID)
	require.Len(t, repo.messages, 1)

	published := broker.published[Channel(recipient)]
	require.Len(t, published, 1)
	envelope := published[0].(*messaging.Message)
	assert.Equal(t, "chat.message", envelope.Type)
}

func TestSendToSelfRejected(t *testing.T) {
	id := uuid.New()
	svc := NewService(&fakeMessageRepo{}, &fakeUserRepo{}, newFakeBroker(), logger.NewLogger(nil))

	_, err := svc.Send(context.Background(), id, &model.SendMessageRequest{RecipientID: id, Text: "hi"})
	require.ErrorIs(t, err, ErrSelfMessage)
}

func TestSendToUnknownRecipientRejected(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewService(repo, &fakeUserRepo{users: map[uuid.UUID]*model.User{}}, newFakeBroker(), logger.NewLogger(nil))

	_, err := svc.Send(context.Background(), uuid.New(), &model.SendMessageRequest{RecipientID: uuid.New(), Text: "hi"})
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, repo.messages)
}

func TestConversationIsBidirectional(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	repo := &fakeMessageRepo{}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		a: {Base: model.Base{ID: a}},
		b: {Base: model.Base{ID: b}},
	}}
	svc := NewService(repo, users, newFakeBroker(), logger.NewLogger(nil))
	ctx := context.Background()

	_, err := svc.Send(ctx, a, &model.SendMessageRequest{RecipientID: b, Text: "one"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, b, &model.SendMessageRequest{RecipientID: a, Text: "two"})
	require.NoError(t, err)

	msgs, err := svc.Conversation(ctx, a, b, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}
