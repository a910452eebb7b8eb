// Package presence tracks which live transport sessions are attached to
// which channels. The directory is process-wide state, constructed once in
// main and handed to the hub and the discovery service; it is rebuilt from
// scratch on restart and never persisted. An absent entry means "offline",
// never an error.
package presence

import (
	"sync"

	"github.com/google/uuid"
)

type session struct {
	userID   uuid.UUID
	channels map[uuid.UUID]struct{}
}

type Directory struct {
	mu sync.RWMutex
	// byChannel: channelID → sessionID → userID
	byChannel map[uuid.UUID]map[string]uuid.UUID
	bySession map[string]*session
}

func NewDirectory() *Directory {
	return &Directory{
		byChannel: make(map[uuid.UUID]map[string]uuid.UUID),
		bySession: make(map[string]*session),
	}
}

// Register attaches a session to a channel. Registering the same triple
// twice is harmless.
func (d *Directory) Register(sessionID string, userID, channelID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.bySession[sessionID]
	if !ok {
		s = &session{userID: userID, channels: make(map[uuid.UUID]struct{})}
		d.bySession[sessionID] = s
	}
	s.channels[channelID] = struct{}{}

	byCh, ok := d.byChannel[channelID]
	if !ok {
		byCh = make(map[string]uuid.UUID)
		d.byChannel[channelID] = byCh
	}
	byCh[sessionID] = userID
}

// Drop detaches a session from one channel.
func (d *Directory) Drop(sessionID string, channelID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drop(sessionID, channelID)
}

func (d *Directory) drop(sessionID string, channelID uuid.UUID) {
	if s, ok := d.bySession[sessionID]; ok {
		delete(s.channels, channelID)
	}
	if byCh, ok := d.byChannel[channelID]; ok {
		delete(byCh, sessionID)
		if len(byCh) == 0 {
			delete(d.byChannel, channelID)
		}
	}
}

// UnregisterSession removes every entry of a session, typically on
// transport disconnect. Nothing is left dangling.
func (d *Directory) UnregisterSession(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.bySession[sessionID]
	if !ok {
		return
	}
	for channelID := range s.channels {
		if byCh, ok := d.byChannel[channelID]; ok {
			delete(byCh, sessionID)
			if len(byCh) == 0 {
				delete(d.byChannel, channelID)
			}
		}
	}
	delete(d.bySession, sessionID)
}

// SessionsFor returns the live sessions attached to a channel, for fan-out.
func (d *Directory) SessionsFor(channelID uuid.UUID) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	byCh := d.byChannel[channelID]
	if len(byCh) == 0 {
		return nil
	}
	sessions := make([]string, 0, len(byCh))
	for sessionID := range byCh {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// OtherSession returns a live session in the channel belonging to someone
// other than the excluded user. Built for direct channels, where "someone
// else" is exactly the peer. ok is false when the peer is offline.
func (d *Directory) OtherSession(channelID, excludingUserID uuid.UUID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for sessionID, userID := range d.byChannel[channelID] {
		if userID != excludingUserID {
			return sessionID, true
		}
	}
	return "", false
}

// Evict detaches all of a user's sessions from a channel and returns them,
// so the caller can still deliver a final event (e.g. "you were banned")
// before the transport drops the subscription.
func (d *Directory) Evict(channelID, userID uuid.UUID) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var evicted []string
	for sessionID, uid := range d.byChannel[channelID] {
		if uid == userID {
			evicted = append(evicted, sessionID)
		}
	}
	for _, sessionID := range evicted {
		d.drop(sessionID, channelID)
	}
	return evicted
}
