package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dsoklic/parley/internal/presence"
)

// MembershipChecker gates channel subscriptions: only current members may
// attach a session to a channel's fan-out set.
type MembershipChecker interface {
	IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
}

// Hub owns all active WebSocket clients, keyed by session id, and routes
// events to them through the presence directory.
type Hub struct {
	// clients maps sessionID → client.
	clients map[string]*Client

	directory  *presence.Directory
	membership MembershipChecker

	register   chan *Client
	unregister chan *Client
	outbound   chan *sessionMsg
}

type sessionMsg struct {
	sessionIDs []string
	data       []byte
}

func NewHub(directory *presence.Directory, membership MembershipChecker) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		directory:  directory,
		membership: membership,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan *sessionMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.sessionID] = client
			log.Info().
				Str("session_id", client.sessionID).
				Str("user_id", client.userID.String()).
				Int("total", len(h.clients)).
				Msg("ws session connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client.sessionID]; ok {
				h.dropClient(client)
				log.Info().
					Str("session_id", client.sessionID).
					Int("total", len(h.clients)).
					Msg("ws session disconnected")
			}

		case msg := <-h.outbound:
			for _, sessionID := range msg.sessionIDs {
				client, ok := h.clients[sessionID]
				if !ok {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect.
					h.dropClient(client)
				}
			}
		}
	}
}

func (h *Hub) dropClient(client *Client) {
	delete(h.clients, client.sessionID)
	h.directory.UnregisterSession(client.sessionID)
	close(client.send)
	close(client.done)
}

// BroadcastToChannel sends an event to every live session of the channel,
// as resolved through the presence directory at send time.
func (h *Hub) BroadcastToChannel(channelID uuid.UUID, event *Event) {
	sessions := h.directory.SessionsFor(channelID)
	if len(sessions) == 0 {
		return
	}
	h.SendToSessions(sessions, event)
}

// SendToSessions delivers an event to an explicit set of sessions.
func (h *Hub) SendToSessions(sessionIDs []string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("ws hub: marshal error")
		return
	}
	h.outbound <- &sessionMsg{sessionIDs: sessionIDs, data: data}
}

// subscribe attaches a client's session to a channel after the membership
// gate passes.
func (h *Hub) subscribe(ctx context.Context, c *Client, channelID uuid.UUID) error {
	ok, err := h.membership.IsMember(ctx, channelID, c.userID)
	if err != nil {
		return err
	}
	if !ok {
		return errNotSubscribable
	}
	h.directory.Register(c.sessionID, c.userID, channelID)
	return nil
}

func (h *Hub) unsubscribe(c *Client, channelID uuid.UUID) {
	h.directory.Drop(c.sessionID, channelID)
}
