package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"memory-assistant/internal/domain"
	"memory-assistant/internal/metrics"
	"memory-assistant/internal/repository"
)

var (
	ErrInterviewNotConfigured = errors.New("interview service not configured")

	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrConflict           = errors.New("conflict")

	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	ErrSessionClosed   = fmt.Errorf("%w: session closed", ErrConflict)
)

// InterviewService implementa la persistencia de la entrevista guiada:
// resolver la sesion abierta, guardar respuestas (upsert) y completar sesiones.
//
// Los pasos buscar-o-crear dependen de las restricciones de unicidad del store
// (una sesion abierta por usuario, una respuesta por usuario/sesion/pregunta);
// cuando una creacion pierde la carrera se relee el registro ganador.
type InterviewService struct {
	logger   *zap.Logger
	sessions repository.SessionRepository
	memories repository.MemoryRepository
	answered repository.AnsweredQuestionRepository
	recorder metrics.Recorder
	now      func() time.Time
}

func NewInterviewService(
	logger *zap.Logger,
	sessions repository.SessionRepository,
	memories repository.MemoryRepository,
	answered repository.AnsweredQuestionRepository,
	recorder metrics.Recorder,
) *InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &InterviewService{
		logger:   logger,
		sessions: sessions,
		memories: memories,
		answered: answered,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type RecordAnswerInput struct {
	UserID         string
	SessionID      string
	QuestionID     string
	QuestionPrompt string
	AnswerText     string
	// Category solo se usa si hay que crear la sesion.
	Category string
}

type AnswerResult struct {
	Memory    domain.Memory `json:"memory"`
	SessionID string        `json:"session_id"`
	Created   bool          `json:"created"`
}

type SessionDetail struct {
	domain.Session
	AnsweredCount       int             `json:"answered_count"`
	AnsweredQuestionIDs []string        `json:"answered_question_ids"`
	Memories            []domain.Memory `json:"memories"`
}

type History struct {
	Memories []domain.Memory `json:"memories"`
	Sessions []SessionDetail `json:"sessions"`
}

func (s *InterviewService) configured() bool {
	return s != nil && s.sessions != nil && s.memories != nil && s.answered != nil
}

// ResolveOpenSession devuelve la sesion abierta mas reciente del usuario o crea una.
func (s *InterviewService) ResolveOpenSession(ctx context.Context, userID, category string) (domain.Session, error) {
	if !s.configured() {
		return domain.Session{}, ErrInterviewNotConfigured
	}
	userID = strings.TrimSpace(userID)
	category = strings.TrimSpace(category)
	if userID == "" {
		return domain.Session{}, validationError("user_id")
	}

	session, err := s.sessions.GetOpenByUser(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Session{}, storageError(err)
	}

	session = domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.SessionInProgress,
		Category:  category,
		StartedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return domain.Session{}, storageError(err)
		}
		// Otra solicitud del mismo usuario abrio la sesion primero.
		winner, getErr := s.sessions.GetOpenByUser(ctx, userID)
		if getErr != nil {
			if errors.Is(getErr, repository.ErrNotFound) {
				return domain.Session{}, fmt.Errorf("%w: open session for user %s", ErrConflict, userID)
			}
			return domain.Session{}, storageError(getErr)
		}
		return winner, nil
	}

	s.recorder.RecordSessionOpened()
	s.logger.Info("interview session opened",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.String("category", category),
	)
	return session, nil
}

// RecordAnswer guarda la respuesta para (usuario, sesion, pregunta). Si ya existe
// reemplaza el texto conservando id y created_at. Sin SessionID se usa la sesion abierta.
func (s *InterviewService) RecordAnswer(ctx context.Context, input RecordAnswerInput) (AnswerResult, error) {
	if !s.configured() {
		return AnswerResult{}, ErrInterviewNotConfigured
	}
	input.UserID = strings.TrimSpace(input.UserID)
	input.SessionID = strings.TrimSpace(input.SessionID)
	input.QuestionID = strings.TrimSpace(input.QuestionID)
	input.QuestionPrompt = strings.TrimSpace(input.QuestionPrompt)
	input.AnswerText = strings.TrimSpace(input.AnswerText)
	input.Category = strings.TrimSpace(input.Category)

	switch {
	case input.UserID == "":
		return AnswerResult{}, validationError("user_id")
	case input.QuestionID == "":
		return AnswerResult{}, validationError("question_id")
	case input.QuestionPrompt == "":
		return AnswerResult{}, validationError("question_prompt")
	case input.AnswerText == "":
		return AnswerResult{}, validationError("answer_text")
	}

	session, err := s.sessionForAnswer(ctx, input)
	if err != nil {
		return AnswerResult{}, err
	}

	now := s.now()
	memory, created, err := s.upsertMemory(ctx, session.ID, input, now)
	if err != nil {
		return AnswerResult{}, err
	}

	if _, err := s.answered.MarkAnswered(ctx, session.ID, input.QuestionID, now); err != nil {
		return AnswerResult{}, storageError(err)
	}

	s.recorder.RecordAnswerSaved(created)
	s.logger.Debug("answer recorded",
		zap.String("user_id", input.UserID),
		zap.String("session_id", session.ID),
		zap.String("question_id", input.QuestionID),
		zap.Bool("created", created),
	)
	return AnswerResult{Memory: memory, SessionID: session.ID, Created: created}, nil
}

func (s *InterviewService) sessionForAnswer(ctx context.Context, input RecordAnswerInput) (domain.Session, error) {
	if input.SessionID == "" {
		return s.ResolveOpenSession(ctx, input.UserID, input.Category)
	}
	session, err := s.ownedSession(ctx, input.UserID, input.SessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if !session.IsOpen() {
		return domain.Session{}, ErrSessionClosed
	}
	return session, nil
}

func (s *InterviewService) upsertMemory(ctx context.Context, sessionID string, input RecordAnswerInput, now time.Time) (domain.Memory, bool, error) {
	existing, err := s.memories.GetByKey(ctx, input.UserID, sessionID, input.QuestionID)
	switch {
	case err == nil:
		memory, err := s.memories.UpdateAnswer(ctx, existing.ID, input.AnswerText, now)
		if err != nil {
			return domain.Memory{}, false, storageError(err)
		}
		return memory, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Memory{}, false, storageError(err)
	}

	memory := domain.Memory{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		SessionID:      sessionID,
		QuestionID:     input.QuestionID,
		QuestionPrompt: input.QuestionPrompt,
		AnswerText:     input.AnswerText,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.memories.Create(ctx, memory)
	if err == nil {
		return memory, true, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return domain.Memory{}, false, storageError(err)
	}

	// Una escritura concurrente creo el registro; se aplica como actualizacion.
	existing, err = s.memories.GetByKey(ctx, input.UserID, sessionID, input.QuestionID)
	if err != nil {
		return domain.Memory{}, false, storageError(err)
	}
	updated, err := s.memories.UpdateAnswer(ctx, existing.ID, input.AnswerText, now)
	if err != nil {
		return domain.Memory{}, false, storageError(err)
	}
	return updated, false, nil
}

// CompleteSession cierra la sesion. Repetir la llamada no modifica completed_at.
func (s *InterviewService) CompleteSession(ctx context.Context, sessionID string) (domain.Session, error) {
	if !s.configured() {
		return domain.Session{}, ErrInterviewNotConfigured
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Session{}, validationError("session_id")
	}

	session, err := s.sessions.Complete(ctx, sessionID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, storageError(err)
	}

	s.recorder.RecordSessionCompleted()
	s.logger.Info("interview session completed",
		zap.String("user_id", session.UserID),
		zap.String("session_id", session.ID),
	)
	return session, nil
}

// CompleteSessionForUser completa la sesion solo si pertenece a userID.
func (s *InterviewService) CompleteSessionForUser(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	if !s.configured() {
		return domain.Session{}, ErrInterviewNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Session{}, validationError("user_id")
	}
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return domain.Session{}, err
	}
	return s.CompleteSession(ctx, sessionID)
}

// GetSession devuelve la sesion con sus respuestas y progreso.
func (s *InterviewService) GetSession(ctx context.Context, userID, sessionID string) (SessionDetail, error) {
	if !s.configured() {
		return SessionDetail{}, ErrInterviewNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return SessionDetail{}, validationError("user_id")
	}
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return SessionDetail{}, err
	}

	memories, err := s.memories.ListBySession(ctx, session.ID)
	if err != nil {
		return SessionDetail{}, storageError(err)
	}
	count, err := s.answered.CountBySession(ctx, session.ID)
	if err != nil {
		return SessionDetail{}, storageError(err)
	}
	ids := make([]string, 0, len(memories))
	for _, m := range memories {
		ids = append(ids, m.QuestionID)
	}
	return SessionDetail{
		Session:             session,
		AnsweredCount:       count,
		AnsweredQuestionIDs: ids,
		Memories:            memories,
	}, nil
}

// ListMemories devuelve todas las respuestas del usuario (mas recientes primero)
// y sus sesiones, cada una con sus respuestas y preguntas respondidas.
func (s *InterviewService) ListMemories(ctx context.Context, userID string) (History, error) {
	if !s.configured() {
		return History{}, ErrInterviewNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return History{}, validationError("user_id")
	}

	memories, err := s.memories.ListByUser(ctx, userID)
	if err != nil {
		return History{}, storageError(err)
	}
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return History{}, storageError(err)
	}
	answered, err := s.answered.ListByUser(ctx, userID)
	if err != nil {
		return History{}, storageError(err)
	}

	bySession := make(map[string][]domain.Memory, len(sessions))
	// memories viene en orden descendente; se invierte para listar por sesion en orden de respuesta.
	for i := len(memories) - 1; i >= 0; i-- {
		m := memories[i]
		bySession[m.SessionID] = append(bySession[m.SessionID], m)
	}
	answeredBySession := make(map[string][]string, len(sessions))
	for _, a := range answered {
		answeredBySession[a.SessionID] = append(answeredBySession[a.SessionID], a.QuestionID)
	}

	details := make([]SessionDetail, 0, len(sessions))
	for _, session := range sessions {
		ids := answeredBySession[session.ID]
		if ids == nil {
			ids = []string{}
		}
		sessionMemories := bySession[session.ID]
		if sessionMemories == nil {
			sessionMemories = []domain.Memory{}
		}
		details = append(details, SessionDetail{
			Session:             session,
			AnsweredCount:       len(ids),
			AnsweredQuestionIDs: ids,
			Memories:            sessionMemories,
		})
	}

	if memories == nil {
		memories = []domain.Memory{}
	}
	return History{Memories: memories, Sessions: details}, nil
}

func (s *InterviewService) ownedSession(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.Session{}, validationError("session_id")
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, storageError(err)
	}
	if session.UserID != userID {
		return domain.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func validationError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

// storageError conserva el error original y agrega el tipo de la capa de servicio.
func storageError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
