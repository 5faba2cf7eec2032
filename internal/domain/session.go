package domain

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Session es una corrida de la entrevista guiada de un usuario.
type Session struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Status      SessionStatus `json:"status"`
	Category    string        `json:"category,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

func (s Session) IsOpen() bool {
	return s.Status == SessionInProgress
}

// AnsweredQuestion marca que una pregunta ya tiene respuesta dentro de una sesion.
type AnsweredQuestion struct {
	SessionID  string    `json:"session_id"`
	QuestionID string    `json:"question_id"`
	AnsweredAt time.Time `json:"answered_at"`
}
