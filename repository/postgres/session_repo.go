package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/sessionauth/domain"
	"github.com/fastygo/sessionauth/repository"
)

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository returns a Postgres-backed SessionRepository over the
// user_sessions table.
func NewSessionRepository(pool *pgxpool.Pool) repository.SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Find(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error) {
	if filter.IsEmpty() {
		return nil, nil
	}

	const query = `
	SELECT id, user_id, created_at
	FROM user_sessions
	WHERE ($1 = '' OR id = $1)
	  AND ($2 = '' OR user_id = $2)
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, filter.ID, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO user_sessions (id, user_id, created_at)
	VALUES ($1, $2, COALESCE($3, NOW()))
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.UserID,
		nullTime(session.CreatedAt),
	).Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM user_sessions WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}
