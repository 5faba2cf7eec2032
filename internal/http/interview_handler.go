package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memory-assistant/internal/catalog"
	"memory-assistant/internal/service"
)

// InterviewHandler expone sesiones y respuestas del usuario autenticado.
// El user id sale siempre de los claims del JWT.
type InterviewHandler struct {
	logger    *zap.Logger
	interview *service.InterviewService
	catalog   *catalog.Catalog
}

func NewInterviewHandler(logger *zap.Logger, interview *service.InterviewService, cat *catalog.Catalog) *InterviewHandler {
	return &InterviewHandler{
		logger:    logger,
		interview: interview,
		catalog:   cat,
	}
}

// OpenSession maneja POST /sessions/open. El body es opcional.
func (h *InterviewHandler) OpenSession(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid open session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	category := strings.TrimSpace(req.Category)
	if !h.knownCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	session, err := h.interview.ResolveOpenSession(c.Request.Context(), claims.UserID, category)
	if err != nil {
		h.writeError(c, "open session failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// RecordAnswer maneja POST /memories.
func (h *InterviewHandler) RecordAnswer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		SessionID      string `json:"session_id"`
		QuestionID     string `json:"question_id"`
		QuestionPrompt string `json:"question_prompt"`
		AnswerText     string `json:"answer_text"`
		Category       string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid record answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	category := strings.TrimSpace(req.Category)
	if !h.knownCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	prompt := req.QuestionPrompt
	if strings.TrimSpace(prompt) == "" && h.catalog != nil {
		if q, found := h.catalog.Get(req.QuestionID); found {
			prompt = q.Prompt
		}
	}

	result, err := h.interview.RecordAnswer(c.Request.Context(), service.RecordAnswerInput{
		UserID:         claims.UserID,
		SessionID:      req.SessionID,
		QuestionID:     req.QuestionID,
		QuestionPrompt: prompt,
		AnswerText:     req.AnswerText,
		Category:       category,
	})
	if err != nil {
		h.writeError(c, "record answer failed", err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// GetSession maneja GET /sessions/:id.
func (h *InterviewHandler) GetSession(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	detail, err := h.interview.GetSession(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		h.writeError(c, "get session failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": detail})
}

// CompleteSession maneja POST /sessions/:id/complete.
func (h *InterviewHandler) CompleteSession(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	session, err := h.interview.CompleteSessionForUser(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		h.writeError(c, "complete session failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ListMemories maneja GET /memories.
func (h *InterviewHandler) ListMemories(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	history, err := h.interview.ListMemories(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeError(c, "list memories failed", err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *InterviewHandler) knownCategory(category string) bool {
	if category == "" || h.catalog == nil {
		return true
	}
	return h.catalog.HasCategory(category)
}

func (h *InterviewHandler) writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "session closed"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, service.ErrStorageUnavailable):
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
