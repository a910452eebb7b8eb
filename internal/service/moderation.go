package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dsoklic/parley/internal/domain"
)

// Moderation rules. All of these require the acting user to hold a member
// row with a moderating role (owner ⊇ admin), run under the channel lock and
// refuse to target the owner: ownership never moves, so the owner is immune
// to ban, mute and demotion alike.

// requireModerator loads the channel and the acting member, failing with
// ErrChannelNotFound or ErrForbidden. Callers hold the channel lock.
func (s *ChannelService) requireModerator(ctx context.Context, channelID, actorID uuid.UUID) (*domain.Channel, *domain.Member, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	if ch == nil {
		return nil, nil, ErrChannelNotFound
	}

	actor, err := s.members.Get(ctx, channelID, actorID)
	if err != nil {
		return nil, nil, err
	}
	if actor == nil || !actor.Role.CanModerate() {
		return nil, nil, ErrForbidden
	}
	return ch, actor, nil
}

// Ban removes the target's membership and puts them on the ban list as one
// operation. If the ban write fails after the member row is gone, the member
// row is restored so the two sets stay consistent.
func (s *ChannelService) Ban(ctx context.Context, channelID, actorID, targetID uuid.UUID) error {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	if _, _, err := s.requireModerator(ctx, channelID, actorID); err != nil {
		return err
	}

	target, err := s.members.Get(ctx, channelID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotMember
	}
	if target.Role == domain.RoleOwner {
		return ErrForbidden
	}

	if err := s.members.Remove(ctx, channelID, targetID); err != nil {
		return fmt.Errorf("removing banned member: %w", err)
	}

	ban := &domain.Ban{
		ChannelID: channelID,
		UserID:    targetID,
		BannedBy:  actorID,
		CreatedAt: time.Now(),
	}
	if err := s.bans.Add(ctx, ban); err != nil {
		if addErr := s.members.Add(ctx, target); addErr != nil {
			log.Error().Err(addErr).
				Str("channel_id", channelID.String()).
				Str("user_id", targetID.String()).
				Msg("member row lost after failed ban write; needs manual reconciliation")
		}
		return fmt.Errorf("recording ban: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MemberBanned(channelID, targetID)
	}
	return nil
}

func (s *ChannelService) Unban(ctx context.Context, channelID, actorID, targetID uuid.UUID) error {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	if _, _, err := s.requireModerator(ctx, channelID, actorID); err != nil {
		return err
	}

	banned, err := s.bans.Exists(ctx, channelID, targetID)
	if err != nil {
		return err
	}
	if !banned {
		return ErrNotBanned
	}

	if err := s.bans.Remove(ctx, channelID, targetID); err != nil {
		return fmt.Errorf("removing ban: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MemberUnbanned(channelID, targetID)
	}
	return nil
}

// Mute suppresses the target's sends until now+duration. The expiry is
// checked lazily by the send path via Member.Muted; nothing unmutes on a
// timer.
func (s *ChannelService) Mute(ctx context.Context, channelID, actorID, targetID uuid.UUID, duration time.Duration) error {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	if _, _, err := s.requireModerator(ctx, channelID, actorID); err != nil {
		return err
	}

	target, err := s.members.Get(ctx, channelID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotMember
	}
	if target.Role == domain.RoleOwner {
		return ErrForbidden
	}

	until := time.Now().Add(duration)
	target.MutedUntil = &until
	if err := s.members.Update(ctx, target); err != nil {
		return fmt.Errorf("muting member: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MemberMuted(channelID, targetID, until)
	}
	return nil
}

func (s *ChannelService) Unmute(ctx context.Context, channelID, actorID, targetID uuid.UUID) error {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	if _, _, err := s.requireModerator(ctx, channelID, actorID); err != nil {
		return err
	}

	target, err := s.members.Get(ctx, channelID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotMember
	}

	target.MutedUntil = nil
	if err := s.members.Update(ctx, target); err != nil {
		return fmt.Errorf("unmuting member: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MemberUnmuted(channelID, targetID)
	}
	return nil
}

// Promote raises the target to admin. Owner only. Promoting an admin again
// is a no-op; roles never go down through this engine.
func (s *ChannelService) Promote(ctx context.Context, channelID, actorID, targetID uuid.UUID) error {
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

	target, err := s.members.Get(ctx, channelID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotMember
	}
	if target.Role == domain.RoleOwner {
		return ErrForbidden
	}
	if target.Role == domain.RoleAdmin {
		return nil
	}

	target.Role = domain.RoleAdmin
	if err := s.members.Update(ctx, target); err != nil {
		return fmt.Errorf("promoting member: %w", err)
	}

	if s.notifier != nil {
		s.notifier.MemberPromoted(channelID, targetID)
	}
	return nil
}

// IsOwner and IsAdmin are pure read predicates used as authorization gates
// by the transport layer. They never mutate anything.

func (s *ChannelService) IsOwner(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	m, err := s.members.Get(ctx, channelID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.Role == domain.RoleOwner, nil
}

// IsAdmin is true for admins and for the owner: owner privileges subsume
// admin privileges.
func (s *ChannelService) IsAdmin(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	m, err := s.members.Get(ctx, channelID, userID)
	if err != nil {
		return false, err
	}
	return m != nil && m.Role.CanModerate(), nil
}
