package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/dsoklic/parley/internal/domain"
	"github.com/dsoklic/parley/internal/repository"
)

// DMService resolves direct channels. A pair of users has at most one:
// the channel is keyed by the sorted pair of ids, so both call orders and
// concurrent opens land on the same record.
type DMService struct {
	channels repository.ChannelRepository
	members  repository.MemberRepository
	users    repository.UserRepository

	// group collapses concurrent opens of the same pair in this process;
	// the name uniqueness constraint catches races across processes.
	group singleflight.Group
}

func NewDMService(channels repository.ChannelRepository, members repository.MemberRepository, users repository.UserRepository) *DMService {
	return &DMService{
		channels: channels,
		members:  members,
		users:    users,
	}
}

// DirectChannelName is the canonical identity of a direct channel:
// "<min>/<max>" over the textual uuids. Regular channel names cannot
// contain '/', so the key can never collide with a chosen name.
func DirectChannelName(a, b uuid.UUID) string {
	if a.String() > b.String() {
		a, b = b, a
	}
	return a.String() + "/" + b.String()
}

// Open returns the direct channel between the two users, creating it with
// both as plain members when it does not exist yet. Direct channels carry
// no owner and no password.
func (s *DMService) Open(ctx context.Context, userID, otherID uuid.UUID) (*domain.Channel, error) {
	if userID == otherID {
		return nil, ErrCannotDMSelf
	}

	other, err := s.users.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	key := DirectChannelName(userID, otherID)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.open(ctx, key, userID, otherID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Channel), nil
}

func (s *DMService) open(ctx context.Context, key string, userID, otherID uuid.UUID) (*domain.Channel, error) {
	existing, err := s.channels.GetByName(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	ch := &domain.Channel{
		ID:             uuid.New(),
		Name:           key,
		Type:           domain.ChannelDirect,
		CreatedBy:      uuid.Nil,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := s.channels.Create(ctx, ch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// The peer won the race in another process.
			ch, err := s.channels.GetByName(ctx, key)
			if err != nil {
				return nil, err
			}
			if ch == nil {
				return nil, fmt.Errorf("direct channel %q vanished after duplicate create", key)
			}
			return ch, nil
		}
		return nil, fmt.Errorf("creating direct channel: %w", err)
	}

	for _, uid := range []uuid.UUID{userID, otherID} {
		m := &domain.Member{
			ChannelID: ch.ID,
			UserID:    uid,
			Role:      domain.RoleMember,
			JoinedAt:  now,
		}
		if err := s.members.Add(ctx, m); err != nil {
			if delErr := s.channels.Delete(ctx, ch.ID); delErr != nil {
				log.Error().Err(delErr).
					Str("channel_id", ch.ID.String()).
					Msg("orphaned direct channel after failed member write; needs manual reconciliation")
			}
			return nil, fmt.Errorf("adding direct channel member: %w", err)
		}
	}

	return ch, nil
}
