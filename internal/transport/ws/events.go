package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dsoklic/parley/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeChannelSubscribe   = "channel.subscribe"
	EventTypeChannelUnsubscribe = "channel.unsubscribe"
	EventTypePing               = "ping"
)

// Event types - Server → Client
const (
	EventTypeMemberJoined   = "member.joined"
	EventTypeMemberLeft     = "member.left"
	EventTypeMemberBanned   = "member.banned"
	EventTypeMemberUnbanned = "member.unbanned"
	EventTypeMemberMuted    = "member.muted"
	EventTypeMemberUnmuted  = "member.unmuted"
	EventTypeMemberPromoted = "member.promoted"
	EventTypeChannelUpdated = "channel.updated"
	EventTypeChannelDeleted = "channel.deleted"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	ChannelID *uuid.UUID      `json:"channel_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

func NewEvent(eventType string, channelID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		ChannelID: channelID,
		Payload:   data,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// --- Client → Server payloads ---

type ChannelPayload struct {
	ChannelID uuid.UUID `json:"channel_id"`
}

// --- Server → Client payloads ---

type MemberPayload struct {
	ChannelID uuid.UUID `json:"channel_id"`
	UserID    uuid.UUID `json:"user_id"`
}

type MutePayload struct {
	ChannelID uuid.UUID `json:"channel_id"`
	UserID    uuid.UUID `json:"user_id"`
	Until     time.Time `json:"until"`
}

type ChannelUpdatedPayload struct {
	Channel domain.Channel `json:"channel"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
