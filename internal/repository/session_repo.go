package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"memory-assistant/internal/domain"
)

// SessionRepository persiste sesiones de entrevista.
// Create devuelve ErrConflict si el usuario ya tiene una sesion abierta.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	GetByID(ctx context.Context, id string) (domain.Session, error)
	GetOpenByUser(ctx context.Context, userID string) (domain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)
	Complete(ctx context.Context, id string, completedAt time.Time) (domain.Session, error)
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, status, category, started_at, completed_at`

func (r *PgSessionRepository) Create(ctx context.Context, session domain.Session) error {
	const query = `
		INSERT INTO interview_sessions (id, user_id, status, category, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var category interface{}
	if session.Category != "" {
		category = session.Category
	}

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		string(session.Status),
		category,
		session.StartedAt,
		session.CompletedAt,
	)
	return classifyPgError(err)
}

func (r *PgSessionRepository) GetByID(ctx context.Context, id string) (domain.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM interview_sessions WHERE id = $1`
	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	return session, classifyPgError(err)
}

func (r *PgSessionRepository) GetOpenByUser(ctx context.Context, userID string) (domain.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM interview_sessions
		WHERE user_id = $1 AND status = 'in_progress'
		ORDER BY started_at DESC
		LIMIT 1
	`
	session, err := scanSession(r.pool.QueryRow(ctx, query, userID))
	return session, classifyPgError(err)
}

func (r *PgSessionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM interview_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, classifyPgError(err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, classifyPgError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPgError(err)
	}
	return sessions, nil
}

// Complete conserva completed_at si la sesion ya estaba cerrada.
func (r *PgSessionRepository) Complete(ctx context.Context, id string, completedAt time.Time) (domain.Session, error) {
	const query = `
		UPDATE interview_sessions
		SET status = 'completed', completed_at = COALESCE(completed_at, $2)
		WHERE id = $1
		RETURNING ` + sessionColumns
	session, err := scanSession(r.pool.QueryRow(ctx, query, id, completedAt))
	return session, classifyPgError(err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session  domain.Session
		status   string
		category *string
	)
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&status,
		&category,
		&session.StartedAt,
		&session.CompletedAt,
	); err != nil {
		return domain.Session{}, err
	}
	session.Status = domain.SessionStatus(status)
	if category != nil {
		session.Category = *category
	}
	return session, nil
}
