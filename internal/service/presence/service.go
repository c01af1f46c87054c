package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/config"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/messaging"
)

const (
	leasePrefix = "presence:lease:"
	statePrefix = "presence:state:"
	channel     = "presence"
)

// Service tracks who is online through expiring leases. A heartbeat
// renews the caller's lease; when the lease is gone the user is offline,
// whether they logged out or their connection died.
type Service struct {
	redis  *redis.Client
	broker messaging.Broker
	ttl    time.Duration
	logger *logger.Logger
}

func NewService(rdb *redis.Client, broker messaging.Broker, cfg config.PresenceConfig, logger *logger.Logger) *Service {
	return &Service{
		redis:  rdb,
		broker: broker,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
		logger: logger,
	}
}

// Heartbeat renews the user's lease. The first heartbeat after an absence
// flips the user online and publishes the change.
func (s *Service) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	created, err := s.redis.SetNX(ctx, leasePrefix+userID.String(), "1", s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to renew presence lease: %w", err)
	}
	if !created {
		if err := s.redis.Expire(ctx, leasePrefix+userID.String(), s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to extend presence lease: %w", err)
		}
		return nil
	}
	return s.recordChange(ctx, userID, model.PresenceOnline)
}

// Disconnect drops the lease immediately instead of waiting for expiry.
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID) error {
	deleted, err := s.redis.Del(ctx, leasePrefix+userID.String()).Result()
	if err != nil {
		return fmt.Errorf("failed to drop presence lease: %w", err)
	}
	if deleted == 0 {
		return nil
	}
	return s.recordChange(ctx, userID, model.PresenceOffline)
}

// Get resolves the user's current presence. A live lease means online;
// anything else reads as offline, with the last recorded change time when
// one is known.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*model.Presence, error) {
	exists, err := s.redis.Exists(ctx, leasePrefix+userID.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check presence lease: %w", err)
	}

	p := &model.Presence{
		UserID: userID,
		State:  model.PresenceOffline,
	}
	if exists > 0 {
		p.State = model.PresenceOnline
	}

	raw, err := s.redis.Get(ctx, statePrefix+userID.String()).Result()
	if err == nil {
		var last model.Presence
		if jsonErr := json.Unmarshal([]byte(raw), &last); jsonErr == nil {
			p.LastChanged = last.LastChanged
		}
	}
	return p, nil
}

// Attach fills the Presence field on each user in place.
func (s *Service) Attach(ctx context.Context, users []*model.User) {
	for _, u := range users {
		p, err := s.Get(ctx, u.ID)
		if err != nil {
			s.logger.Error(err, "failed to resolve presence", "user_id", u.ID.String())
			continue
		}
		u.Presence = p
	}
}

func (s *Service) recordChange(ctx context.Context, userID uuid.UUID, state model.PresenceState) error {
	p := model.Presence{
		UserID:      userID,
		State:       state,
		LastChanged: time.Now(),
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal presence: %w", err)
	}
	if err := s.redis.Set(ctx, statePrefix+userID.String(), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store presence state: %w", err)
	}

	if err := s.broker.Publish(ctx, channel, &messaging.Message{
		Type:    model.EventPresenceChanged,
		Payload: p,
	}); err != nil {
		s.logger.Error(err, "failed to publish presence change", "user_id", userID.String())
	}
	return nil
}
