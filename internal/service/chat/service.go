package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/messaging"
)

// ErrSelfMessage is returned when a user addresses a message to themselves.
var ErrSelfMessage = errors.New("cannot send a message to yourself")

const defaultConversationLimit = 50

type Service struct {
	repo     repository.MessageRepository
	userRepo repository.UserRepository
	broker   messaging.Broker
	logger   *logger.Logger
}

func NewService(repo repository.MessageRepository, userRepo repository.UserRepository, broker messaging.Broker, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		broker:   broker,
		logger:   logger,
	}
}

// Send persists a message and fans it out on the recipient's channel.
// Persistence comes first: a reader that missed the live publish still
// finds the message in the conversation history.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, req *model.SendMessageRequest) (*model.Message, error) {
	if senderID == req.RecipientID {
		return nil, ErrSelfMessage
	}
	if _, err := s.userRepo.Get(ctx, req.RecipientID); err != nil {
		return nil, fmt.Errorf("recipient lookup failed: %w", err)
	}

	msg := &model.Message{
		ID:          uuid.New(),
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Text:        req.Text,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if err := s.broker.Publish(ctx, Channel(req.RecipientID), &messaging.Message{
		Type:    "chat.message",
		Payload: msg,
	}); err != nil {
		s.logger.Error(err, "failed to publish chat message", "message_id", msg.ID.String())
	}

	return msg, nil
}

// Conversation returns the most recent messages between two users.
func (s *Service) Conversation(ctx context.Context, a, b uuid.UUID, limit int) ([]*model.Message, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	return s.repo.ListConversation(ctx, a, b, limit)
}

// Subscribe opens a live feed of the user's incoming messages.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan []byte, error) {
	return s.broker.Subscribe(ctx, Channel(userID))
}

// Channel names the per-user chat topic.
func Channel(userID uuid.UUID) string {
	return "chat:" + userID.String()
}
