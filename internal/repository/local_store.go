package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"memory-assistant/internal/domain"
)

// LocalStore es un backend en memoria para pruebas y desarrollo local.
// Aplica las mismas restricciones de unicidad que el esquema de PostgreSQL,
// bajo un unico mutex.
type LocalStore struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]domain.User
	sessions map[string]localRow[domain.Session]
	memories map[string]localRow[domain.Memory]
	answered map[answeredKey]domain.AnsweredQuestion
}

type localRow[T any] struct {
	value T
	seq   int64
}

type answeredKey struct {
	sessionID  string
	questionID string
}

func NewLocalStore() *LocalStore {
	return &LocalStore{
		users:    make(map[string]domain.User),
		sessions: make(map[string]localRow[domain.Session]),
		memories: make(map[string]localRow[domain.Memory]),
		answered: make(map[answeredKey]domain.AnsweredQuestion),
	}
}

func (s *LocalStore) Users() UserRepository { return localUsers{s} }
func (s *LocalStore) Sessions() SessionRepository { return localSessions{s} }
func (s *LocalStore) Memories() MemoryRepository { return localMemories{s} }
func (s *LocalStore) Answered() AnsweredQuestionRepository { return localAnswered{s} }

// Ping cumple la misma firma que pgxpool.Pool.Ping.
func (s *LocalStore) Ping(_ context.Context) error {
	return nil
}

func (s *LocalStore) next() int64 {
	s.seq++
	return s.seq
}

type localUsers struct{ s *LocalStore }

func (r localUsers) Create(_ context.Context, user domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return ErrConflict
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrConflict
		}
	}
	r.s.users[user.ID] = user
	return nil
}

func (r localUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (r localUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, ErrNotFound
}

type localSessions struct{ s *LocalStore }

func (r localSessions) Create(_ context.Context, session domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[session.ID]; ok {
		return ErrConflict
	}
	if session.IsOpen() {
		for _, row := range r.s.sessions {
			if row.value.UserID == session.UserID && row.value.IsOpen() {
				return ErrConflict
			}
		}
	}
	r.s.sessions[session.ID] = localRow[domain.Session]{value: session, seq: r.s.next()}
	return nil
}

func (r localSessions) GetByID(_ context.Context, id string) (domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.sessions[id]
	if !ok {
		return domain.Session{}, ErrNotFound
	}
	return row.value, nil
}

func (r localSessions) GetOpenByUser(ctx context.Context, userID string) (domain.Session, error) {
	sessions, _ := r.ListByUser(ctx, userID)
	for _, session := range sessions {
		if session.IsOpen() {
			return session, nil
		}
	}
	return domain.Session{}, ErrNotFound
}

// ListByUser ordena por started_at descendente; a igual fecha gana la mas reciente.
func (r localSessions) ListByUser(_ context.Context, userID string) ([]domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := []localRow[domain.Session]{}
	for _, row := range r.s.sessions {
		if row.value.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.value.StartedAt.Equal(b.value.StartedAt) {
			return a.value.StartedAt.After(b.value.StartedAt)
		}
		return a.seq > b.seq
	})
	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.value)
	}
	return out, nil
}

func (r localSessions) Complete(_ context.Context, id string, completedAt time.Time) (domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.sessions[id]
	if !ok {
		return domain.Session{}, ErrNotFound
	}
	row.value.Status = domain.SessionCompleted
	if row.value.CompletedAt == nil {
		at := completedAt
		row.value.CompletedAt = &at
	}
	r.s.sessions[id] = row
	return row.value, nil
}

type localMemories struct{ s *LocalStore }

func (r localMemories) Create(_ context.Context, memory domain.Memory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.memories[memory.ID]; ok {
		return ErrConflict
	}
	for _, row := range r.s.memories {
		m := row.value
		if m.UserID == memory.UserID && m.SessionID == memory.SessionID && m.QuestionID == memory.QuestionID {
			return ErrConflict
		}
	}
	r.s.memories[memory.ID] = localRow[domain.Memory]{value: memory, seq: r.s.next()}
	return nil
}

func (r localMemories) GetByKey(_ context.Context, userID, sessionID, questionID string) (domain.Memory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.memories {
		m := row.value
		if m.UserID == userID && m.SessionID == sessionID && m.QuestionID == questionID {
			return m, nil
		}
	}
	return domain.Memory{}, ErrNotFound
}

func (r localMemories) UpdateAnswer(_ context.Context, id, answerText string, updatedAt time.Time) (domain.Memory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.memories[id]
	if !ok {
		return domain.Memory{}, ErrNotFound
	}
	row.value.AnswerText = answerText
	if updatedAt.After(row.value.UpdatedAt) {
		row.value.UpdatedAt = updatedAt
	}
	r.s.memories[id] = row
	return row.value, nil
}

func (r localMemories) ListByUser(_ context.Context, userID string) ([]domain.Memory, error) {
	return r.list(func(m domain.Memory) bool { return m.UserID == userID }, true), nil
}

func (r localMemories) ListBySession(_ context.Context, sessionID string) ([]domain.Memory, error) {
	return r.list(func(m domain.Memory) bool { return m.SessionID == sessionID }, false), nil
}

func (r localMemories) list(match func(domain.Memory) bool, desc bool) []domain.Memory {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := []localRow[domain.Memory]{}
	for _, row := range r.s.memories {
		if match(row.value) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.value.CreatedAt.Equal(b.value.CreatedAt) {
			if desc {
				return a.value.CreatedAt.After(b.value.CreatedAt)
			}
			return a.value.CreatedAt.Before(b.value.CreatedAt)
		}
		if desc {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})
	out := make([]domain.Memory, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.value)
	}
	return out
}

type localAnswered struct{ s *LocalStore }

func (r localAnswered) MarkAnswered(_ context.Context, sessionID, questionID string, answeredAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[sessionID]; !ok {
		return false, ErrNotFound
	}
	key := answeredKey{sessionID: sessionID, questionID: questionID}
	if _, ok := r.s.answered[key]; ok {
		return false, nil
	}
	r.s.answered[key] = domain.AnsweredQuestion{
		SessionID:  sessionID,
		QuestionID: questionID,
		AnsweredAt: answeredAt,
	}
	return true, nil
}

func (r localAnswered) CountBySession(_ context.Context, sessionID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for key := range r.s.answered {
		if key.sessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (r localAnswered) ListByUser(_ context.Context, userID string) ([]domain.AnsweredQuestion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.AnsweredQuestion{}
	for _, a := range r.s.answered {
		if row, ok := r.s.sessions[a.SessionID]; ok && row.value.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AnsweredAt.Equal(out[j].AnsweredAt) {
			return out[i].AnsweredAt.Before(out[j].AnsweredAt)
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	return out, nil
}
