package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invite admits its holder to a channel regardless of the channel's access
// rule, which is how private channels are joined at all. Token-addressed and
// expiring; usable any number of times until it expires, like the original
// signed join URLs.
type Invite struct {
	ID        uuid.UUID `json:"id"`
	ChannelID uuid.UUID `json:"channel_id"`
	Token     string    `json:"token"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired evaluates the lifetime lazily against the given clock reading,
// the same way Member.Muted does.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
