package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/dsoklic/parley/internal/domain"
)

// Notifier receives membership and moderation outcomes after they are
// committed. The delivery layer implements it on top of the presence
// directory; a nil notifier is tolerated everywhere.
type Notifier interface {
	MemberJoined(channelID, userID uuid.UUID)
	MemberLeft(channelID, userID uuid.UUID)
	MemberBanned(channelID, userID uuid.UUID)
	MemberUnbanned(channelID, userID uuid.UUID)
	MemberMuted(channelID, userID uuid.UUID, until time.Time)
	MemberUnmuted(channelID, userID uuid.UUID)
	MemberPromoted(channelID, userID uuid.UUID)
	ChannelUpdated(ch *domain.Channel)
	ChannelDeleted(channelID uuid.UUID)
}
