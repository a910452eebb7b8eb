package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChannelType string

const (
	ChannelPublic    ChannelType = "public"
	ChannelProtected ChannelType = "protected"
	ChannelPrivate   ChannelType = "private"
	ChannelDirect    ChannelType = "direct"
)

// Channel is a messaging scope. Regular channels carry a human-chosen name;
// direct channels are named by the sorted pair of participant ids (see
// service.DirectChannelName), so the two namespaces cannot collide.
type Channel struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Type           ChannelType `json:"type"`
	PasswordHash   string      `json:"-"`
	AvatarURL      *string     `json:"avatar_url,omitempty"`
	CreatedBy      uuid.UUID   `json:"created_by"` // uuid.Nil for direct channels
	CreatedAt      time.Time   `json:"created_at"`
	LastActivityAt time.Time   `json:"last_activity_at"`
}

func (c *Channel) IsDirect() bool {
	return c.Type == ChannelDirect
}

// RequiresPassword reports whether joining must present a password.
// Protected channels are the only ones allowed to carry a hash.
func (c *Channel) RequiresPassword() bool {
	return c.Type == ChannelProtected
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CanModerate reports whether the role may ban, mute or update the channel.
func (r Role) CanModerate() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Member is the role record for one (channel, user) pair. It exists only
// while the user is a member and is deleted on leave or ban.
type Member struct {
	ChannelID  uuid.UUID  `json:"channel_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Role       Role       `json:"role"`
	MutedUntil *time.Time `json:"muted_until,omitempty"`
	JoinedAt   time.Time  `json:"joined_at"`
}

// Muted evaluates the mute lazily against the given clock reading. No
// background timer clears the field; an expired mute simply stops matching.
func (m *Member) Muted(now time.Time) bool {
	return m.MutedUntil != nil && now.Before(*m.MutedUntil)
}

type Ban struct {
	ChannelID uuid.UUID `json:"channel_id"`
	UserID    uuid.UUID `json:"user_id"`
	BannedBy  uuid.UUID `json:"banned_by"`
	CreatedAt time.Time `json:"created_at"`
}

// RosterEntry is the discovery view of one channel member.
type RosterEntry struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	Muted    bool      `json:"muted"`
}
