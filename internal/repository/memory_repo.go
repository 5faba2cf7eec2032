package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"memory-assistant/internal/domain"
)

// MemoryRepository persiste respuestas. (user_id, session_id, question_id) es unico;
// Create devuelve ErrConflict si la combinacion ya existe.
type MemoryRepository interface {
	Create(ctx context.Context, memory domain.Memory) error
	GetByKey(ctx context.Context, userID, sessionID, questionID string) (domain.Memory, error)
	UpdateAnswer(ctx context.Context, id, answerText string, updatedAt time.Time) (domain.Memory, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Memory, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.Memory, error)
}

type PgMemoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgMemoryRepository(pool *pgxpool.Pool) *PgMemoryRepository {
	return &PgMemoryRepository{pool: pool}
}

const memoryColumns = `id, user_id, session_id, question_id, question_prompt, answer_text, created_at, updated_at`

func (r *PgMemoryRepository) Create(ctx context.Context, memory domain.Memory) error {
	const query = `
		INSERT INTO memories (` + memoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.UserID,
		memory.SessionID,
		memory.QuestionID,
		memory.QuestionPrompt,
		memory.AnswerText,
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	return classifyPgError(err)
}

func (r *PgMemoryRepository) GetByKey(ctx context.Context, userID, sessionID, questionID string) (domain.Memory, error) {
	const query = `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE user_id = $1 AND session_id = $2 AND question_id = $3
	`
	memory, err := scanMemory(r.pool.QueryRow(ctx, query, userID, sessionID, questionID))
	return memory, classifyPgError(err)
}

// UpdateAnswer nunca hace retroceder updated_at.
func (r *PgMemoryRepository) UpdateAnswer(ctx context.Context, id, answerText string, updatedAt time.Time) (domain.Memory, error) {
	const query = `
		UPDATE memories
		SET answer_text = $2, updated_at = GREATEST(updated_at, $3)
		WHERE id = $1
		RETURNING ` + memoryColumns
	memory, err := scanMemory(r.pool.QueryRow(ctx, query, id, answerText, updatedAt))
	return memory, classifyPgError(err)
}

func (r *PgMemoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.Memory, error) {
	const query = `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, userID)
}

func (r *PgMemoryRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Memory, error) {
	const query = `
		SELECT ` + memoryColumns + `
		FROM memories
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, sessionID)
}

func (r *PgMemoryRepository) list(ctx context.Context, query string, arg string) ([]domain.Memory, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, classifyPgError(err)
	}
	defer rows.Close()

	return scanMemories(rows)
}

func scanMemory(row rowScanner) (domain.Memory, error) {
	var m domain.Memory
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.SessionID,
		&m.QuestionID,
		&m.QuestionPrompt,
		&m.AnswerText,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.Memory{}, err
	}
	return m, nil
}

func scanMemories(rows pgxRows) ([]domain.Memory, error) {
	memories := []domain.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, classifyPgError(err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPgError(err)
	}
	return memories, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
