package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"memory-assistant/internal/domain"
)

// AnsweredQuestionRepository lleva el conjunto deduplicado de preguntas respondidas
// por sesion, para contar progreso sin recorrer todas las respuestas.
type AnsweredQuestionRepository interface {
	// MarkAnswered inserta el par si no existe; devuelve true si lo inserto.
	MarkAnswered(ctx context.Context, sessionID, questionID string, answeredAt time.Time) (bool, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]domain.AnsweredQuestion, error)
}

type PgAnsweredQuestionRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnsweredQuestionRepository(pool *pgxpool.Pool) *PgAnsweredQuestionRepository {
	return &PgAnsweredQuestionRepository{pool: pool}
}

func (r *PgAnsweredQuestionRepository) MarkAnswered(ctx context.Context, sessionID, questionID string, answeredAt time.Time) (bool, error) {
	const query = `
		INSERT INTO answered_questions (session_id, question_id, answered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, question_id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query, sessionID, questionID, answeredAt)
	if err != nil {
		return false, classifyPgError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgAnsweredQuestionRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM answered_questions WHERE session_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, classifyPgError(err)
	}
	return count, nil
}

func (r *PgAnsweredQuestionRepository) ListByUser(ctx context.Context, userID string) ([]domain.AnsweredQuestion, error) {
	const query = `
		SELECT a.session_id, a.question_id, a.answered_at
		FROM answered_questions a
		JOIN interview_sessions s ON s.id = a.session_id
		WHERE s.user_id = $1
		ORDER BY a.answered_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, classifyPgError(err)
	}
	defer rows.Close()

	answered := []domain.AnsweredQuestion{}
	for rows.Next() {
		var a domain.AnsweredQuestion
		if err := rows.Scan(&a.SessionID, &a.QuestionID, &a.AnsweredAt); err != nil {
			return nil, classifyPgError(err)
		}
		answered = append(answered, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPgError(err)
	}
	return answered, nil
}
