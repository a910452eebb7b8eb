package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsoklic/parley/internal/domain"
	"github.com/dsoklic/parley/internal/repository/memory"
)

func newTestChannelService() (*ChannelService, *memory.Store) {
	store := memory.NewStore()
	svc := NewChannelService(store.Channels(), store.Members(), store.Bans(), store.Invites())
	return svc, store
}

func TestCreateChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()

	t.Run("creates channel with owner role", func(t *testing.T) {
		svc, store := newTestChannelService()

		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		assert.Equal(t, "general", ch.Name)
		assert.Equal(t, domain.ChannelPublic, ch.Type)
		assert.Equal(t, owner, ch.CreatedBy)

		m, err := store.Members().Get(ctx, ch.ID, owner)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, domain.RoleOwner, m.Role)
	})

	t.Run("same name twice is a conflict", func(t *testing.T) {
		svc, _ := newTestChannelService()

		_, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)

		_, err = svc.Create(ctx, uuid.New(), CreateChannelInput{Name: "general"})
		assert.ErrorIs(t, err, ErrChannelNameTaken)
	})

	t.Run("rejects bad names", func(t *testing.T) {
		svc, _ := newTestChannelService()

		for _, name := range []string{"", "has space", "snake_case", "émoji", "a/b"} {
			_, err := svc.Create(ctx, owner, CreateChannelInput{Name: name})
			assert.ErrorIs(t, err, ErrInvalidChannelName, "name %q", name)
		}

		_, err := svc.Create(ctx, owner, CreateChannelInput{Name: "Valid-Name-42"})
		assert.NoError(t, err)
	})

	t.Run("protected requires and hashes the password", func(t *testing.T) {
		svc, _ := newTestChannelService()

		_, err := svc.Create(ctx, owner, CreateChannelInput{Name: "vault", Type: domain.ChannelProtected})
		assert.ErrorIs(t, err, ErrPasswordRequired)

		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "vault", Type: domain.ChannelProtected, Password: "abc123"})
		require.NoError(t, err)
		assert.NotEmpty(t, ch.PasswordHash)
		assert.NotEqual(t, "abc123", ch.PasswordHash)
		assert.True(t, VerifyPassword("abc123", ch.PasswordHash))
	})

	t.Run("supplying a password upgrades the type to protected", func(t *testing.T) {
		svc, _ := newTestChannelService()

		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "locked", Password: "hunter2"})
		require.NoError(t, err)
		assert.Equal(t, domain.ChannelProtected, ch.Type)
	})

	t.Run("private channel rejects a password outright", func(t *testing.T) {
		svc, _ := newTestChannelService()

		_, err := svc.Create(ctx, owner, CreateChannelInput{Name: "cabal", Type: domain.ChannelPrivate, Password: "abc123"})
		assert.ErrorIs(t, err, ErrPasswordNotAllowed, "an explicit type must not be silently switched")
	})

	t.Run("direct type cannot be created directly", func(t *testing.T) {
		svc, _ := newTestChannelService()

		_, err := svc.Create(ctx, owner, CreateChannelInput{Name: "sneaky", Type: domain.ChannelDirect})
		assert.ErrorIs(t, err, ErrInvalidChannelType)
	})
}

func TestJoin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	joiner := uuid.New()

	t.Run("join twice is a conflict", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)

		m, err := svc.Join(ctx, ch.ID, joiner, "")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMember, m.Role)

		_, err = svc.Join(ctx, ch.ID, joiner, "")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("protected channel checks the password", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "vault", Type: domain.ChannelProtected, Password: "abc123"})
		require.NoError(t, err)

		_, err = svc.Join(ctx, ch.ID, joiner, "wrong")
		assert.ErrorIs(t, err, ErrWrongPassword)

		_, err = svc.Join(ctx, ch.ID, joiner, "abc123")
		assert.NoError(t, err)
	})

	t.Run("private channel refuses plain joins", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "secret", Type: domain.ChannelPrivate})
		require.NoError(t, err)

		_, err = svc.Join(ctx, ch.ID, joiner, "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown channel", func(t *testing.T) {
		svc, _ := newTestChannelService()
		_, err := svc.Join(ctx, uuid.New(), joiner, "")
		assert.ErrorIs(t, err, ErrChannelNotFound)
	})
}

func TestLeave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	member := uuid.New()

	svc, store := newTestChannelService()
	ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
	require.NoError(t, err)
	_, err = svc.Join(ctx, ch.ID, member, "")
	require.NoError(t, err)

	require.NoError(t, svc.Leave(ctx, ch.ID, member))

	m, err := store.Members().Get(ctx, ch.ID, member)
	require.NoError(t, err)
	assert.Nil(t, m)

	// Leaving again is a no-op, not an error.
	assert.NoError(t, svc.Leave(ctx, ch.ID, member))
}

func TestBan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	target := uuid.New()

	t.Run("ban blocks join until unban", func(t *testing.T) {
		svc, store := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		_, err = svc.Join(ctx, ch.ID, target, "")
		require.NoError(t, err)

		require.NoError(t, svc.Ban(ctx, ch.ID, owner, target))

		m, err := store.Members().Get(ctx, ch.ID, target)
		require.NoError(t, err)
		assert.Nil(t, m, "ban must remove the member row")

		_, err = svc.Join(ctx, ch.ID, target, "")
		assert.ErrorIs(t, err, ErrBanned)

		require.NoError(t, svc.Unban(ctx, ch.ID, owner, target))

		_, err = svc.Join(ctx, ch.ID, target, "")
		assert.NoError(t, err)
	})

	t.Run("plain members cannot ban", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		_, err = svc.Join(ctx, ch.ID, target, "")
		require.NoError(t, err)

		err = svc.Ban(ctx, ch.ID, target, owner)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admins cannot ban the owner", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		admin := uuid.New()
		_, err = svc.Join(ctx, ch.ID, admin, "")
		require.NoError(t, err)
		require.NoError(t, svc.Promote(ctx, ch.ID, owner, admin))

		err = svc.Ban(ctx, ch.ID, admin, owner)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("banning a non-member", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)

		err = svc.Ban(ctx, ch.ID, owner, uuid.New())
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("unban of someone not banned", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)

		err = svc.Unban(ctx, ch.ID, owner, uuid.New())
		assert.ErrorIs(t, err, ErrNotBanned)
	})
}

func TestMute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	target := uuid.New()

	t.Run("mute expires by clock alone", func(t *testing.T) {
		svc, store := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		_, err = svc.Join(ctx, ch.ID, target, "")
		require.NoError(t, err)

		require.NoError(t, svc.Mute(ctx, ch.ID, owner, target, 10*time.Minute))

		m, err := store.Members().Get(ctx, ch.ID, target)
		require.NoError(t, err)
		require.NotNil(t, m)
		require.NotNil(t, m.MutedUntil)

		now := time.Now()
		assert.True(t, m.Muted(now.Add(5*time.Minute)))
		assert.False(t, m.Muted(now.Add(11*time.Minute)), "no unmute call needed")
	})

	t.Run("unmute clears the expiry", func(t *testing.T) {
		svc, store := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		_, err = svc.Join(ctx, ch.ID, target, "")
		require.NoError(t, err)

		require.NoError(t, svc.Mute(ctx, ch.ID, owner, target, 10*time.Minute))
		require.NoError(t, svc.Unmute(ctx, ch.ID, owner, target))

		m, err := store.Members().Get(ctx, ch.ID, target)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Nil(t, m.MutedUntil)
	})

	t.Run("owner cannot be muted", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		admin := uuid.New()
		_, err = svc.Join(ctx, ch.ID, admin, "")
		require.NoError(t, err)
		require.NoError(t, svc.Promote(ctx, ch.ID, owner, admin))

		err = svc.Mute(ctx, ch.ID, admin, owner, time.Minute)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestPromote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	target := uuid.New()

	t.Run("owner promotes a member to admin", func(t *testing.T) {
		svc, store := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		_, err = svc.Join(ctx, ch.ID, target, "")
		require.NoError(t, err)

		require.NoError(t, svc.Promote(ctx, ch.ID, owner, target))

		m, err := store.Members().Get(ctx, ch.ID, target)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, m.Role)

		// Repeat promotion is a no-op, never a downgrade.
		require.NoError(t, svc.Promote(ctx, ch.ID, owner, target))
		m, err = store.Members().Get(ctx, ch.ID, target)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, m.Role)
	})

	t.Run("admins cannot promote", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		admin := uuid.New()
		_, err = svc.Join(ctx, ch.ID, admin, "")
		require.NoError(t, err)
		require.NoError(t, svc.Promote(ctx, ch.ID, owner, admin))

		other := uuid.New()
		_, err = svc.Join(ctx, ch.ID, other, "")
		require.NoError(t, err)

		err = svc.Promote(ctx, ch.ID, admin, other)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("promoting a non-member", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)

		err = svc.Promote(ctx, ch.ID, owner, uuid.New())
		assert.ErrorIs(t, err, ErrNotMember)
	})
}

func TestRolePredicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()
	admin := uuid.New()
	member := uuid.New()

	svc, _ := newTestChannelService()
	ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
	require.NoError(t, err)
	_, err = svc.Join(ctx, ch.ID, admin, "")
	require.NoError(t, err)
	_, err = svc.Join(ctx, ch.ID, member, "")
	require.NoError(t, err)
	require.NoError(t, svc.Promote(ctx, ch.ID, owner, admin))

	isOwner, err := svc.IsOwner(ctx, ch.ID, owner)
	require.NoError(t, err)
	assert.True(t, isOwner)

	isOwner, err = svc.IsOwner(ctx, ch.ID, admin)
	require.NoError(t, err)
	assert.False(t, isOwner)

	// Owner privileges subsume admin privileges.
	for _, id := range []uuid.UUID{owner, admin} {
		isAdmin, err := svc.IsAdmin(ctx, ch.ID, id)
		require.NoError(t, err)
		assert.True(t, isAdmin)
	}

	isAdmin, err := svc.IsAdmin(ctx, ch.ID, member)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestUpdateChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := uuid.New()

	t.Run("switching away from protected clears the hash", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "vault", Type: domain.ChannelProtected, Password: "abc123"})
		require.NoError(t, err)

		public := domain.ChannelPublic
		updated, err := svc.Update(ctx, owner, ch.ID, UpdateChannelInput{Type: &public})
		require.NoError(t, err)
		assert.Equal(t, domain.ChannelPublic, updated.Type)
		assert.Empty(t, updated.PasswordHash)
	})

	t.Run("switching to protected needs a password", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)

		protected := domain.ChannelProtected
		_, err = svc.Update(ctx, owner, ch.ID, UpdateChannelInput{Type: &protected})
		assert.ErrorIs(t, err, ErrPasswordRequired)

		pw := "abc123"
		updated, err := svc.Update(ctx, owner, ch.ID, UpdateChannelInput{Type: &protected, Password: &pw})
		require.NoError(t, err)
		assert.Equal(t, domain.ChannelProtected, updated.Type)
		assert.True(t, VerifyPassword("abc123", updated.PasswordHash))
	})

	t.Run("members cannot update settings", func(t *testing.T) {
		svc, _ := newTestChannelService()
		ch, err := svc.Create(ctx, owner, CreateChannelInput{Name: "general"})
		require.NoError(t, err)
		member := uuid.New()
		_, err = svc.Join(ctx, ch.ID, member, "")
		require.NoError(t, err)

		avatar := "avatars/1.png"
		_, err = svc.Update(ctx, member, ch.ID, UpdateChannelInput{Avatar: &avatar})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

// The end-to-end scenario: protected channel, wrong then right password,
// mute, ban, and the joinable listing afterwards.
func TestProtectedChannelModerationFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	user1 := uuid.New()
	user2 := uuid.New()

	svc, store := newTestChannelService()

	ch, err := svc.Create(ctx, user1, CreateChannelInput{Name: "team1", Type: domain.ChannelProtected, Password: "abc123"})
	require.NoError(t, err)

	_, err = svc.Join(ctx, ch.ID, user2, "wrong")
	require.ErrorIs(t, err, ErrWrongPassword)

	m, err := svc.Join(ctx, ch.ID, user2, "abc123")
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, m.Role)

	require.NoError(t, svc.Mute(ctx, ch.ID, user1, user2, 5*time.Minute))
	muted, err := store.Members().Get(ctx, ch.ID, user2)
	require.NoError(t, err)
	assert.True(t, muted.Muted(time.Now()), "send-check right after the mute")

	require.NoError(t, svc.Ban(ctx, ch.ID, user1, user2))

	gone, err := store.Members().Get(ctx, ch.ID, user2)
	require.NoError(t, err)
	assert.Nil(t, gone)
	banned, err := store.Bans().Exists(ctx, ch.ID, user2)
	require.NoError(t, err)
	assert.True(t, banned)

	joinable, err := store.Channels().ListJoinable(ctx, user2)
	require.NoError(t, err)
	for _, c := range joinable {
		assert.NotEqual(t, "team1", c.Name, "banned user must not see the channel as joinable")
	}
}
