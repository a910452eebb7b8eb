// Package memory implements the repository contracts on plain maps. It backs
// unit tests and the STORE=memory dev mode; state lives for the process only.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dsoklic/parley/internal/domain"
	"github.com/dsoklic/parley/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	channels map[uuid.UUID]domain.Channel
	byName   map[string]uuid.UUID
	members  map[uuid.UUID]map[uuid.UUID]domain.Member
	bans     map[uuid.UUID]map[uuid.UUID]domain.Ban
	invites  map[string]domain.Invite
	users    map[uuid.UUID]domain.User
}

func NewStore() *Store {
	return &Store{
		channels: make(map[uuid.UUID]domain.Channel),
		byName:   make(map[string]uuid.UUID),
		members:  make(map[uuid.UUID]map[uuid.UUID]domain.Member),
		bans:     make(map[uuid.UUID]map[uuid.UUID]domain.Ban),
		invites:  make(map[string]domain.Invite),
		users:    make(map[uuid.UUID]domain.User),
	}
}

func (s *Store) Channels() repository.ChannelRepository { return &channelStore{s} }
func (s *Store) Members() repository.MemberRepository   { return &memberStore{s} }
func (s *Store) Bans() repository.BanRepository         { return &banStore{s} }
func (s *Store) Invites() repository.InviteRepository   { return &inviteStore{s} }
func (s *Store) Users() repository.UserRepository       { return &userStore{s} }

// PutUser seeds the user directory projection.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

type channelStore struct{ s *Store }

func (c *channelStore) Create(_ context.Context, ch *domain.Channel) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, taken := c.s.byName[ch.Name]; taken {
		return repository.ErrDuplicate
	}
	c.s.channels[ch.ID] = *ch
	c.s.byName[ch.Name] = ch.ID
	return nil
}

func (c *channelStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Channel, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	ch, ok := c.s.channels[id]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

func (c *channelStore) GetByName(_ context.Context, name string) (*domain.Channel, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	id, ok := c.s.byName[name]
	if !ok {
		return nil, nil
	}
	ch := c.s.channels[id]
	return &ch, nil
}

func (c *channelStore) Update(_ context.Context, ch *domain.Channel) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.channels[ch.ID]; !ok {
		return nil
	}
	c.s.channels[ch.ID] = *ch
	return nil
}

func (c *channelStore) Delete(_ context.Context, id uuid.UUID) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if ch, ok := c.s.channels[id]; ok {
		delete(c.s.byName, ch.Name)
	}
	delete(c.s.channels, id)
	delete(c.s.members, id)
	delete(c.s.bans, id)
	return nil
}

func (c *channelStore) ListJoinable(_ context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var out []domain.Channel
	for id, ch := range c.s.channels {
		if ch.Type != domain.ChannelPublic && ch.Type != domain.ChannelProtected {
			continue
		}
		if _, member := c.s.members[id][userID]; member {
			continue
		}
		if _, banned := c.s.bans[id][userID]; banned {
			continue
		}
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *channelStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var out []domain.Channel
	for id, ch := range c.s.channels {
		if _, member := c.s.members[id][userID]; member {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivityAt.After(out[j].LastActivityAt)
	})
	return out, nil
}

type memberStore struct{ s *Store }

func (m *memberStore) Add(_ context.Context, row *domain.Member) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rows, ok := m.s.members[row.ChannelID]
	if !ok {
		rows = make(map[uuid.UUID]domain.Member)
		m.s.members[row.ChannelID] = rows
	}
	if _, exists := rows[row.UserID]; exists {
		return repository.ErrDuplicate
	}
	rows[row.UserID] = *row
	return nil
}

func (m *memberStore) Remove(_ context.Context, channelID, userID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.members[channelID], userID)
	return nil
}

func (m *memberStore) Get(_ context.Context, channelID, userID uuid.UUID) (*domain.Member, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	row, ok := m.s.members[channelID][userID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memberStore) List(_ context.Context, channelID uuid.UUID) ([]domain.Member, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var out []domain.Member
	for _, row := range m.s.members[channelID] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *memberStore) Update(_ context.Context, row *domain.Member) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if rows, ok := m.s.members[row.ChannelID]; ok {
		if _, exists := rows[row.UserID]; exists {
			rows[row.UserID] = *row
		}
	}
	return nil
}

type banStore struct{ s *Store }

func (b *banStore) Add(_ context.Context, row *domain.Ban) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	rows, ok := b.s.bans[row.ChannelID]
	if !ok {
		rows = make(map[uuid.UUID]domain.Ban)
		b.s.bans[row.ChannelID] = rows
	}
	if _, exists := rows[row.UserID]; exists {
		return repository.ErrDuplicate
	}
	rows[row.UserID] = *row
	return nil
}

func (b *banStore) Remove(_ context.Context, channelID, userID uuid.UUID) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	delete(b.s.bans[channelID], userID)
	return nil
}

func (b *banStore) Exists(_ context.Context, channelID, userID uuid.UUID) (bool, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	_, ok := b.s.bans[channelID][userID]
	return ok, nil
}

func (b *banStore) List(_ context.Context, channelID uuid.UUID) ([]domain.Ban, error) {
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	var out []domain.Ban
	for _, row := range b.s.bans[channelID] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type inviteStore struct{ s *Store }

func (i *inviteStore) Create(_ context.Context, inv *domain.Invite) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	if _, exists := i.s.invites[inv.Token]; exists {
		return repository.ErrDuplicate
	}
	i.s.invites[inv.Token] = *inv
	return nil
}

func (i *inviteStore) GetByToken(_ context.Context, token string) (*domain.Invite, error) {
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	inv, ok := i.s.invites[token]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (i *inviteStore) Delete(_ context.Context, id uuid.UUID) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	for token, inv := range i.s.invites {
		if inv.ID == id {
			delete(i.s.invites, token)
		}
	}
	return nil
}

type userStore struct{ s *Store }

func (u *userStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	row, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (u *userStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, row := range u.s.users {
		if row.Username == username {
			return &row, nil
		}
	}
	return nil, nil
}
