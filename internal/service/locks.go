package service

import (
	"sync"

	"github.com/google/uuid"
)

// channelLocks serializes mutating operations per channel id so that
// check-then-act sequences (membership lookup, then insert) cannot race.
// Operations on different channels proceed independently. Lock entries are
// never removed; the table grows with the number of distinct channels
// touched by this process, which is bounded by the channel count.
type channelLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newChannelLocks() *channelLocks {
	return &channelLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// acquire blocks until the channel's lock is held and returns the release
// function.
func (l *channelLocks) acquire(id uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
