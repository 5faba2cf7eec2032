package domain

import "time"

// Memory es la respuesta de un usuario a una pregunta dentro de una sesion.
// Es unica por (UserID, SessionID, QuestionID).
type Memory struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	SessionID      string    `json:"session_id"`
	QuestionID     string    `json:"question_id"`
	QuestionPrompt string    `json:"question_prompt"`
	AnswerText     string    `json:"answer_text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
