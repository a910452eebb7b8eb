package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dsoklic/parley/internal/domain"
	"github.com/dsoklic/parley/internal/presence"
)

// HubNotifier implements service.Notifier on top of the WebSocket Hub. The
// membership mutation has already committed by the time these run; a target
// with no live session simply receives nothing.
type HubNotifier struct {
	hub       *Hub
	directory *presence.Directory
}

func NewHubNotifier(hub *Hub, directory *presence.Directory) *HubNotifier {
	return &HubNotifier{hub: hub, directory: directory}
}

func (n *HubNotifier) MemberJoined(channelID, userID uuid.UUID) {
	n.broadcast(EventTypeMemberJoined, channelID, MemberPayload{ChannelID: channelID, UserID: userID})
}

func (n *HubNotifier) MemberLeft(channelID, userID uuid.UUID) {
	// Evict first so the leaver's own sessions stop receiving channel
	// traffic, then tell the rest of the room.
	n.directory.Evict(channelID, userID)
	n.broadcast(EventTypeMemberLeft, channelID, MemberPayload{ChannelID: channelID, UserID: userID})
}

func (n *HubNotifier) MemberBanned(channelID, userID uuid.UUID) {
	// The banned user's sessions get the event directly before their
	// subscription is dropped; they are no longer part of the channel
	// fan-out set.
	evicted := n.directory.Evict(channelID, userID)
	if len(evicted) > 0 {
		if evt, err := NewEvent(EventTypeMemberBanned, &channelID, MemberPayload{ChannelID: channelID, UserID: userID}); err == nil {
			n.hub.SendToSessions(evicted, evt)
		}
	}
	n.broadcast(EventTypeMemberBanned, channelID, MemberPayload{ChannelID: channelID, UserID: userID})
}

func (n *HubNotifier) MemberUnbanned(channelID, userID uuid.UUID) {
	n.broadcast(EventTypeMemberUnbanned, channelID, MemberPayload{ChannelID: channelID, UserID: userID})
}

func (n *HubNotifier) MemberMuted(channelID, userID uuid.UUID, until time.Time) {
	n.broadcast(EventTypeMemberMuted, channelID, MutePayload{ChannelID: channelID, UserID: userID, Until: until})
}

func (n *HubNotifier) MemberUnmuted(channelID, userID uuid.UUID) {
	n.broadcast(EventTypeMemberUnmuted, channelID, MemberPayload{ChannelID: channelID, UserID: userID})
}

func (n *HubNotifier) MemberPromoted(channelID, userID uuid.UUID) {
	n.broadcast(EventTypeMemberPromoted, channelID, MemberPayload{ChannelID: channelID, UserID: userID})
}

func (n *HubNotifier) ChannelUpdated(ch *domain.Channel) {
	n.broadcast(EventTypeChannelUpdated, ch.ID, ChannelUpdatedPayload{Channel: *ch})
}

func (n *HubNotifier) ChannelDeleted(channelID uuid.UUID) {
	sessions := n.directory.SessionsFor(channelID)
	if evt, err := NewEvent(EventTypeChannelDeleted, &channelID, ChannelPayload{ChannelID: channelID}); err == nil && len(sessions) > 0 {
		n.hub.SendToSessions(sessions, evt)
	}
	for _, sessionID := range sessions {
		n.directory.Drop(sessionID, channelID)
	}
}

func (n *HubNotifier) broadcast(eventType string, channelID uuid.UUID, payload any) {
	evt, err := NewEvent(eventType, &channelID, payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToChannel(channelID, evt)
}
