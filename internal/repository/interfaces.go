package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dsoklic/parley/internal/domain"
)

// ErrDuplicate is returned by Create-style calls when a uniqueness
// constraint rejects the write. Implementations translate their native
// duplicate-key failure into this value so services can test with errors.Is.
var ErrDuplicate = errors.New("duplicate key")

// Lookups return (nil, nil) when the record is absent; a non-nil error means
// the storage call itself failed.

type ChannelRepository interface {
	Create(ctx context.Context, ch *domain.Channel) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error)
	GetByName(ctx context.Context, name string) (*domain.Channel, error)
	Update(ctx context.Context, ch *domain.Channel) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListJoinable returns public and protected channels the user is
	// neither a member of nor banned from, ordered by name ascending.
	ListJoinable(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error)
	// ListByUser returns the user's membership channels, most recently
	// active first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error)
}

type MemberRepository interface {
	Add(ctx context.Context, m *domain.Member) error
	Remove(ctx context.Context, channelID, userID uuid.UUID) error
	Get(ctx context.Context, channelID, userID uuid.UUID) (*domain.Member, error)
	List(ctx context.Context, channelID uuid.UUID) ([]domain.Member, error)
	// Update persists role and mute changes of an existing member row.
	Update(ctx context.Context, m *domain.Member) error
}

type BanRepository interface {
	Add(ctx context.Context, b *domain.Ban) error
	Remove(ctx context.Context, channelID, userID uuid.UUID) error
	Exists(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
	List(ctx context.Context, channelID uuid.UUID) ([]domain.Ban, error)
}

type InviteRepository interface {
	Create(ctx context.Context, inv *domain.Invite) error
	GetByToken(ctx context.Context, token string) (*domain.Invite, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository is the read side of the external user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
