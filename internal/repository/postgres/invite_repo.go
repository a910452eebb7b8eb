package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsoklic/parley/internal/domain"
)

type InviteRepo struct {
	pool *pgxpool.Pool
}

func NewInviteRepo(pool *pgxpool.Pool) *InviteRepo {
	return &InviteRepo{pool: pool}
}

func (r *InviteRepo) Create(ctx context.Context, inv *domain.Invite) error {
	query := `
		INSERT INTO channel_invites (id, channel_id, token, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		inv.ID, inv.ChannelID, inv.Token, inv.CreatedBy, inv.CreatedAt, inv.ExpiresAt,
	)
	return translateDuplicate(err)
}

func (r *InviteRepo) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	query := `
		SELECT id, channel_id, token, created_by, created_at, expires_at
		FROM channel_invites WHERE token = $1`
	var inv domain.Invite
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&inv.ID, &inv.ChannelID, &inv.Token, &inv.CreatedBy, &inv.CreatedAt, &inv.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InviteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM channel_invites WHERE id = $1`, id)
	return err
}
