package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsoklic/parley/internal/domain"
	"github.com/dsoklic/parley/internal/presence"
	"github.com/dsoklic/parley/internal/repository/memory"
)

func newTestDiscoveryService() (*DiscoveryService, *memory.Store) {
	store := memory.NewStore()
	svc := NewDiscoveryService(store.Channels(), store.Members(), store.Users(), presence.NewDirectory())
	return svc, store
}

func seedChannel(t *testing.T, store *memory.Store, name string, chType domain.ChannelType, lastActivity time.Time) *domain.Channel {
	t.Helper()
	ch := &domain.Channel{
		ID:             uuid.New(),
		Name:           name,
		Type:           chType,
		CreatedBy:      uuid.New(),
		CreatedAt:      lastActivity,
		LastActivityAt: lastActivity,
	}
	require.NoError(t, store.Channels().Create(context.Background(), ch))
	return ch
}

func TestJoinableChannelsOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	user := uuid.New()

	svc, store := newTestDiscoveryService()
	now := time.Now()

	// Seeded out of order on purpose.
	seedChannel(t, store, "zebra", domain.ChannelPublic, now)
	seedChannel(t, store, "alpha", domain.ChannelProtected, now)
	seedChannel(t, store, "mango", domain.ChannelPublic, now)
	seedChannel(t, store, "hidden", domain.ChannelPrivate, now)

	channels, err := svc.JoinableChannels(ctx, user)
	require.NoError(t, err)

	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name)
	}
	assert.Equal(t, []string{"alpha", "mango", "zebra"}, names, "name ascending, private excluded")
}

func TestJoinableChannelsExcludesMembershipAndBans(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	user := uuid.New()

	svc, store := newTestDiscoveryService()
	now := time.Now()

	joined := seedChannel(t, store, "joined", domain.ChannelPublic, now)
	banned := seedChannel(t, store, "banned", domain.ChannelPublic, now)
	seedChannel(t, store, "open", domain.ChannelPublic, now)

	require.NoError(t, store.Members().Add(ctx, &domain.Member{
		ChannelID: joined.ID, UserID: user, Role: domain.RoleMember, JoinedAt: now,
	}))
	require.NoError(t, store.Bans().Add(ctx, &domain.Ban{
		ChannelID: banned.ID, UserID: user, BannedBy: uuid.New(), CreatedAt: now,
	}))

	channels, err := svc.JoinableChannels(ctx, user)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "open", channels[0].Name)
}

func TestChannelsForUserOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	user := uuid.New()

	svc, store := newTestDiscoveryService()
	now := time.Now()

	stale := seedChannel(t, store, "stale", domain.ChannelPublic, now.Add(-2*time.Hour))
	fresh := seedChannel(t, store, "fresh", domain.ChannelPublic, now)
	middle := seedChannel(t, store, "middle", domain.ChannelPublic, now.Add(-time.Hour))
	seedChannel(t, store, "not-mine", domain.ChannelPublic, now)

	for _, ch := range []*domain.Channel{stale, fresh, middle} {
		require.NoError(t, store.Members().Add(ctx, &domain.Member{
			ChannelID: ch.ID, UserID: user, Role: domain.RoleMember, JoinedAt: now,
		}))
	}

	channels, err := svc.ChannelsForUser(ctx, user)
	require.NoError(t, err)

	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name)
	}
	assert.Equal(t, []string{"fresh", "middle", "stale"}, names, "most recently active first")
}

func TestChannelListsNeverNil(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestDiscoveryService()

	mine, err := svc.ChannelsForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)

	joinable, err := svc.JoinableChannels(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, joinable)
	assert.Empty(t, joinable)
}
