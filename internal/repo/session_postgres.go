package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/planner-web/internal/model"
)

type PostgresSessionRepo struct { // Сессии в таблице sessions
	pool *pgxpool.Pool
}

func NewPostgresSessionRepo(pool *pgxpool.Pool) *PostgresSessionRepo {
	return &PostgresSessionRepo{
		pool: pool,
	}
}

func (r *PostgresSessionRepo) Save(ctx context.Context, s model.Session) error {
	user, err := json.Marshal(s.User)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO sessions (id, token, user_json, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET token = EXCLUDED.token, user_json = EXCLUDED.user_json, expires_at = EXCLUDED.expires_at
	`, s.ID, s.Token, user, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *PostgresSessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	var (
		s    model.Session
		user []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, token, user_json, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Token, &user, &s.CreatedAt, &s.ExpiresAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return s, ErrorNotFound
	}
	if err != nil {
		return s, err
	}
	return s, json.Unmarshal(user, &s.User)
}

func (r *PostgresSessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	return err
}

func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= $1", now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
