package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsoklic/parley/internal/domain"
)

type MemberRepo struct {
	pool *pgxpool.Pool
}

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

func (r *MemberRepo) Add(ctx context.Context, m *domain.Member) error {
	query := `
		INSERT INTO channel_members (channel_id, user_id, role, muted_until, joined_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, m.ChannelID, m.UserID, m.Role, m.MutedUntil, m.JoinedAt)
	return translateDuplicate(err)
}

func (r *MemberRepo) Remove(ctx context.Context, channelID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM channel_members WHERE channel_id = $1 AND user_id = $2`, channelID, userID)
	return err
}

func (r *MemberRepo) Get(ctx context.Context, channelID, userID uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT channel_id, user_id, role, muted_until, joined_at
		FROM channel_members WHERE channel_id = $1 AND user_id = $2`
	var m domain.Member
	err := r.pool.QueryRow(ctx, query, channelID, userID).Scan(
		&m.ChannelID, &m.UserID, &m.Role, &m.MutedUntil, &m.JoinedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepo) List(ctx context.Context, channelID uuid.UUID) ([]domain.Member, error) {
	query := `
		SELECT channel_id, user_id, role, muted_until, joined_at
		FROM channel_members WHERE channel_id = $1 ORDER BY joined_at`

	rows, err := r.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ChannelID, &m.UserID, &m.Role, &m.MutedUntil, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *MemberRepo) Update(ctx context.Context, m *domain.Member) error {
	query := `
		UPDATE channel_members SET role = $1, muted_until = $2
		WHERE channel_id = $3 AND user_id = $4`
	_, err := r.pool.Exec(ctx, query, m.Role, m.MutedUntil, m.ChannelID, m.UserID)
	return err
}

type BanRepo struct {
	pool *pgxpool.Pool
}

func NewBanRepo(pool *pgxpool.Pool) *BanRepo {
	return &BanRepo{pool: pool}
}

func (r *BanRepo) Add(ctx context.Context, b *domain.Ban) error {
	query := `
		INSERT INTO channel_bans (channel_id, user_id, banned_by, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, b.ChannelID, b.UserID, b.BannedBy, b.CreatedAt)
	return translateDuplicate(err)
}

func (r *BanRepo) Remove(ctx context.Context, channelID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM channel_bans WHERE channel_id = $1 AND user_id = $2`, channelID, userID)
	return err
}

func (r *BanRepo) Exists(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM channel_bans WHERE channel_id = $1 AND user_id = $2)`,
		channelID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *BanRepo) List(ctx context.Context, channelID uuid.UUID) ([]domain.Ban, error) {
	query := `
		SELECT channel_id, user_id, banned_by, created_at
		FROM channel_bans WHERE channel_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bans []domain.Ban
	for rows.Next() {
		var b domain.Ban
		if err := rows.Scan(&b.ChannelID, &b.UserID, &b.BannedBy, &b.CreatedAt); err != nil {
			return nil, err
		}
		bans = append(bans, b)
	}
	return bans, rows.Err()
}
