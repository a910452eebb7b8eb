package postgres

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsoklic/parley/internal/domain"
	"github.com/dsoklic/parley/internal/repository"
)

const channelColumns = "id, name, type, password_hash, avatar_url, created_by, created_at, last_activity_at"

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

func (r *ChannelRepo) Create(ctx context.Context, ch *domain.Channel) error {
	query := `
		INSERT INTO channels (id, name, type, password_hash, avatar_url, created_by, created_at, last_activity_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		ch.ID, ch.Name, ch.Type, ch.PasswordHash, ch.AvatarURL, ch.CreatedBy, ch.CreatedAt, ch.LastActivityAt,
	)
	return translateDuplicate(err)
}

func (r *ChannelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Channel, error) {
	return r.getOne(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
}

func (r *ChannelRepo) GetByName(ctx context.Context, name string) (*domain.Channel, error) {
	return r.getOne(ctx, `SELECT `+channelColumns+` FROM channels WHERE name = $1`, name)
}

func (r *ChannelRepo) getOne(ctx context.Context, query string, arg any) (*domain.Channel, error) {
	var ch domain.Channel
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ch.ID, &ch.Name, &ch.Type, &ch.PasswordHash, &ch.AvatarURL,
		&ch.CreatedBy, &ch.CreatedAt, &ch.LastActivityAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *ChannelRepo) Update(ctx context.Context, ch *domain.Channel) error {
	query := `
		UPDATE channels
		SET type = $1, password_hash = $2, avatar_url = $3, last_activity_at = $4
		WHERE id = $5`
	_, err := r.pool.Exec(ctx, query, ch.Type, ch.PasswordHash, ch.AvatarURL, ch.LastActivityAt, ch.ID)
	return err
}

func (r *ChannelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Member and ban rows go with the channel (ON DELETE CASCADE).
	_, err := r.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	return err
}

// ListJoinable composes the joinable predicate: public or protected type,
// requester neither a member nor banned.
func (r *ChannelRepo) ListJoinable(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	qb := sq.Select(
		"c.id", "c.name", "c.type", "c.password_hash", "c.avatar_url",
		"c.created_by", "c.created_at", "c.last_activity_at",
	).
		From("channels c").
		Where(sq.Eq{"c.type": []domain.ChannelType{domain.ChannelPublic, domain.ChannelProtected}}).
		Where("NOT EXISTS (SELECT 1 FROM channel_members m WHERE m.channel_id = c.id AND m.user_id = ?)", userID).
		Where("NOT EXISTS (SELECT 1 FROM channel_bans b WHERE b.channel_id = c.id AND b.user_id = ?)", userID).
		OrderBy("c.name ASC").
		PlaceholderFormat(sq.Dollar)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}
	return r.list(ctx, query, args...)
}

func (r *ChannelRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Channel, error) {
	qb := sq.Select(
		"c.id", "c.name", "c.type", "c.password_hash", "c.avatar_url",
		"c.created_by", "c.created_at", "c.last_activity_at",
	).
		From("channels c").
		Join("channel_members m ON m.channel_id = c.id").
		Where(sq.Eq{"m.user_id": userID}).
		OrderBy("c.last_activity_at DESC").
		PlaceholderFormat(sq.Dollar)

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, err
	}
	return r.list(ctx, query, args...)
}

func (r *ChannelRepo) list(ctx context.Context, query string, args ...any) ([]domain.Channel, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Type, &ch.PasswordHash, &ch.AvatarURL,
			&ch.CreatedBy, &ch.CreatedAt, &ch.LastActivityAt); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// translateDuplicate maps SQLSTATE 23505 onto repository.ErrDuplicate.
func translateDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}
