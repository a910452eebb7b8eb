package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dsoklic/parley/internal/domain"
	"github.com/dsoklic/parley/internal/presence"
	"github.com/dsoklic/parley/internal/repository"
)

// DiscoveryService answers the read-only composition queries: which channels
// a user sees, who is in a channel and which live session a peer holds.
// It never mutates state.
type DiscoveryService struct {
	channels repository.ChannelRepository
	members  repository.MemberRepository
	users    repository.UserRepository
	presence *presence.Directory
}

func NewDiscoveryService(channels repository.ChannelRepository, members repository.MemberRepository, users repository.UserRepository, dir *presence.Directory) *DiscoveryService {
	return &DiscoveryService{
		channels: channels,
		members:  members,
		users:    users,
		presence: dir,
	}
}

// ChannelsForUser returns the user's membership channels, most recently
// active first.
func (s *DiscoveryService) ChannelsForUser(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	channels, err := s.channels.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if channels == nil {
		channels = []domain.Channel{}
	}
	return channels, nil
}

// JoinableChannels returns public and protected channels the user could
// join: not a member, not banned, name ascending.
func (s *DiscoveryService) JoinableChannels(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	channels, err := s.channels.ListJoinable(ctx, userID)
	if err != nil {
		return nil, err
	}
	if channels == nil {
		channels = []domain.Channel{}
	}
	return channels, nil
}

// RosterOf joins the member rows with usernames and the live mute state.
func (s *DiscoveryService) RosterOf(ctx context.Context, channelID uuid.UUID) ([]domain.RosterEntry, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}

	members, err := s.members.List(ctx, channelID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	roster := make([]domain.RosterEntry, 0, len(members))
	for _, m := range members {
		entry := domain.RosterEntry{
			UserID: m.UserID,
			Role:   m.Role,
			Muted:  m.Muted(now),
		}
		// The roster survives a missing directory record; the entry just
		// carries no username.
		if u, err := s.users.GetByID(ctx, m.UserID); err == nil && u != nil {
			entry.Username = u.Username
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// PeerSession returns the live session of the other participant of a direct
// channel. ok is false when the peer is offline; that is not an error.
func (s *DiscoveryService) PeerSession(channelID, excludingUserID uuid.UUID) (string, bool) {
	return s.presence.OtherSession(channelID, excludingUserID)
}
