package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dsoklic/parley/internal/domain"
	"github.com/dsoklic/parley/internal/repository"
	"github.com/dsoklic/parley/pkg/validator"
)

// ChannelService is the membership engine: channel lifecycle, join/leave and
// (in moderation.go) the ban/mute/promote rules. Every mutation of one
// channel runs under that channel's lock; reads go straight to the store.
type ChannelService struct {
	channels repository.ChannelRepository
	members  repository.MemberRepository
	bans     repository.BanRepository
	invites  repository.InviteRepository
	locks    *channelLocks
	notifier Notifier
}

func NewChannelService(channels repository.ChannelRepository, members repository.MemberRepository, bans repository.BanRepository, invites repository.InviteRepository) *ChannelService {
	return &ChannelService{
		channels: channels,
		members:  members,
		bans:     bans,
		invites:  invites,
		locks:    newChannelLocks(),
	}
}

func (s *ChannelService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateChannelInput describes a new channel. A password is accepted only
// when the resulting type is protected: an empty or public type upgrades to
// protected, an explicit private type rejects the password rather than
// silently switching type.
type CreateChannelInput struct {
	Name     string             `json:"name"`
	Type     domain.ChannelType `json:"type"`
	Password string             `json:"password"`
}

// UpdateChannelInput enumerates the optional channel settings. Effects:
//   - Type: switches the access rule; switching to protected requires a
//     password (supplied here or already set); any other type clears the hash.
//   - Password: replaces the hash; only valid when the resulting type is
//     protected.
//   - Avatar: replaces the avatar reference.
type UpdateChannelInput struct {
	Type     *domain.ChannelType `json:"type"`
	Password *string             `json:"password"`
	Avatar   *string             `json:"avatar"`
}

// Create validates the name, hashes the password when the channel is
// protected and commits the channel row together with its owner role row.
// If the owner write fails the channel row is deleted again so no channel
// ever exists without an owner.
func (s *ChannelService) Create(ctx context.Context, creatorID uuid.UUID, input CreateChannelInput) (*domain.Channel, error) {
	name := strings.TrimSpace(input.Name)
	if !validator.ValidChannelName(name) {
		return nil, ErrInvalidChannelName
	}

	chType := input.Type
	if chType == "" {
		chType = domain.ChannelPublic
	}
	if chType == domain.ChannelDirect {
		// Direct channels come only from the DM resolver.
		return nil, ErrInvalidChannelType
	}

	if chType == domain.ChannelPrivate && input.Password != "" {
		return nil, ErrPasswordNotAllowed
	}

	var hash string
	if chType == domain.ChannelProtected || input.Password != "" {
		if input.Password == "" {
			return nil, ErrPasswordRequired
		}
		if !validator.ValidChannelPassword(input.Password) {
			return nil, ErrInvalidPassword
		}
		var err error
		hash, err = HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		chType = domain.ChannelProtected
	}

	now := time.Now()
	ch := &domain.Channel{
		ID:             uuid.New(),
		Name:           name,
		Type:           chType,
		PasswordHash:   hash,
		CreatedBy:      creatorID,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := s.channels.Create(ctx, ch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrChannelNameTaken
		}
		return nil, fmt.Errorf("creating channel: %w", err)
	}

	owner := &domain.Member{
		ChannelID: ch.ID,
		UserID:    creatorID,
		Role:      domain.RoleOwner,
		JoinedAt:  now,
	}
	if err := s.members.Add(ctx, owner); err != nil {
		// Compensate: a channel without an owner row must not survive.
		if delErr := s.channels.Delete(ctx, ch.ID); delErr != nil {
			log.Error().Err(delErr).
				Str("channel_id", ch.ID.String()).
				Msg("orphaned channel left behind after failed owner write; needs manual reconciliation")
		}
		return nil, fmt.Errorf("assigning owner: %w", err)
	}

	return ch, nil
}

func (s *ChannelService) Get(ctx context.Context, channelID uuid.UUID) (*domain.Channel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	return ch, nil
}

// Join admits a user to a public or protected channel. Bans win over
// everything else; joining twice is a conflict, not a no-op; a protected
// channel verifies the supplied password against its hash. Private and
// direct channels never accept a plain join.
func (s *ChannelService) Join(ctx context.Context, channelID, userID uuid.UUID, password string) (*domain.Member, error) {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	if ch.Type == domain.ChannelPrivate || ch.Type == domain.ChannelDirect {
		return nil, ErrForbidden
	}

	banned, err := s.bans.Exists(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, ErrBanned
	}

	existing, err := s.members.Get(ctx, channelID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	if ch.RequiresPassword() && !VerifyPassword(password, ch.PasswordHash) {
		return nil, ErrWrongPassword
	}

	now := time.Now()
	m := &domain.Member{
		ChannelID: channelID,
		UserID:    userID,
		Role:      domain.RoleMember,
		JoinedAt:  now,
	}
	if err := s.members.Add(ctx, m); err != nil {
		return nil, fmt.Errorf("adding member: %w", err)
	}

	s.touch(ctx, ch, now)

	if s.notifier != nil {
		s.notifier.MemberJoined(channelID, userID)
	}
	return m, nil
}

// Leave removes the membership and role row. Leaving a channel one is not a
// member of is a no-op, not an error.
func (s *ChannelService) Leave(ctx context.Context, channelID, userID uuid.UUID) error {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch == nil {
		return ErrChannelNotFound
	}

	m, err := s.members.Get(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}

	if err := s.members.Remove(ctx, channelID, userID); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MemberLeft(channelID, userID)
	}
	return nil
}

// Update applies channel settings. Owner or admin only; direct channels have
// no settings to change.
func (s *ChannelService) Update(ctx context.Context, actorID, channelID uuid.UUID, input UpdateChannelInput) (*domain.Channel, error) {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	if ch.IsDirect() {
		return nil, ErrForbidden
	}

	actor, err := s.members.Get(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.Role.CanModerate() {
		return nil, ErrForbidden
	}

	newType := ch.Type
	if input.Type != nil {
		newType = *input.Type
		if newType == domain.ChannelDirect {
			return nil, ErrInvalidChannelType
		}
	}

	if input.Password != nil {
		if newType != domain.ChannelProtected {
			return nil, ErrInvalidChannelType
		}
		if !validator.ValidChannelPassword(*input.Password) {
			return nil, ErrInvalidPassword
		}
		hash, err := HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		ch.PasswordHash = hash
	}

	if newType == domain.ChannelProtected && ch.PasswordHash == "" {
		return nil, ErrPasswordRequired
	}
	if newType != domain.ChannelProtected {
		ch.PasswordHash = ""
	}
	ch.Type = newType

	if input.Avatar != nil {
		ch.AvatarURL = input.Avatar
	}

	ch.LastActivityAt = time.Now()
	if err := s.channels.Update(ctx, ch); err != nil {
		return nil, fmt.Errorf("updating channel: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ChannelUpdated(ch)
	}
	return ch, nil
}

// Delete removes the channel with its member and ban rows. Owner only.
func (s *ChannelService) Delete(ctx context.Context, actorID, channelID uuid.UUID) error {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return err
	}
	if ch == nil {
		return ErrChannelNotFound
	}

	actor, err := s.members.Get(ctx, channelID, actorID)
	if err != nil {
		return err
	}
	if actor == nil || actor.Role != domain.RoleOwner {
		return ErrForbidden
	}

	if err := s.channels.Delete(ctx, channelID); err != nil {
		return fmt.Errorf("deleting channel: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ChannelDeleted(channelID)
	}
	return nil
}

// IsMember reports whether the user currently holds a member row. Used by
// the transport layer as a subscription gate.
func (s *ChannelService) IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	m, err := s.members.Get(ctx, channelID, userID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// touch bumps the activity timestamp. Advisory ordering data only, so a
// failure is logged rather than unwinding the committed membership change.
func (s *ChannelService) touch(ctx context.Context, ch *domain.Channel, now time.Time) {
	ch.LastActivityAt = now
	if err := s.channels.Update(ctx, ch); err != nil {
		log.Warn().Err(err).Str("channel_id", ch.ID.String()).Msg("failed to bump channel activity")
	}
}
