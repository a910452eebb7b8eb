package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dsoklic/parley/internal/domain"
)

// DefaultInviteTTL bounds how long a join link stays usable when the issuer
// does not choose a lifetime.
const DefaultInviteTTL = 10 * time.Minute

// CreateInvite issues a token that admits its holder to the channel,
// bypassing the type gate and the password. Owner or admin only; direct
// channels take no invites. Expiry is checked lazily on redemption.
func (s *ChannelService) CreateInvite(ctx context.Context, channelID, actorID uuid.UUID, ttl time.Duration) (*domain.Invite, error) {
	unlock := s.locks.acquire(channelID)
	defer unlock()

	ch, _, err := s.requireModerator(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if ch.IsDirect() {
		return nil, ErrForbidden
	}

	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}

	token, err := generateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generating invite token: %w", err)
	}

	now := time.Now()
	inv := &domain.Invite{
		ID:        uuid.New(),
		ChannelID: channelID,
		Token:     token,
		CreatedBy: actorID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invite: %w", err)
	}
	return inv, nil
}

// JoinWithInvite redeems a token. Bans still win; joining twice is still a
// conflict; no password is asked. Expired invites are deleted on sight.
func (s *ChannelService) JoinWithInvite(ctx context.Context, token string, userID uuid.UUID) (*domain.Member, error) {
	inv, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInviteNotFound
	}

	now := time.Now()
	if inv.Expired(now) {
		if err := s.invites.Delete(ctx, inv.ID); err != nil {
			log.Warn().Err(err).Str("invite_id", inv.ID.String()).Msg("failed to reap expired invite")
		}
		return nil, ErrInviteExpired
	}

	unlock := s.locks.acquire(inv.ChannelID)
	defer unlock()

	ch, err := s.channels.GetByID(ctx, inv.ChannelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}

	banned, err := s.bans.Exists(ctx, inv.ChannelID, userID)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, ErrBanned
	}

	existing, err := s.members.Get(ctx, inv.ChannelID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	m := &domain.Member{
		ChannelID: inv.ChannelID,
		UserID:    userID,
		Role:      domain.RoleMember,
		JoinedAt:  now,
	}
	if err := s.members.Add(ctx, m); err != nil {
		return nil, fmt.Errorf("adding invited member: %w", err)
	}

	s.touch(ctx, ch, now)

	if s.notifier != nil {
		s.notifier.MemberJoined(inv.ChannelID, userID)
	}
	return m, nil
}

func generateInviteToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
