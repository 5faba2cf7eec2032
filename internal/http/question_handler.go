package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"memory-assistant/internal/catalog"
)

// QuestionHandler expone el catalogo de preguntas (solo lectura, sin auth).
type QuestionHandler struct {
	logger  *zap.Logger
	catalog *catalog.Catalog
}

func NewQuestionHandler(logger *zap.Logger, cat *catalog.Catalog) *QuestionHandler {
	return &QuestionHandler{logger: logger, catalog: cat}
}

// List maneja GET /questions?category=.
func (h *QuestionHandler) List(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	if category == "" {
		c.JSON(http.StatusOK, gin.H{"questions": h.catalog.ListAll()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": h.catalog.ListByCategory(category)})
}

// Random maneja GET /questions/random?category=.
func (h *QuestionHandler) Random(c *gin.Context) {
	q, err := h.catalog.PickRandom(c.Query("category"))
	if err != nil {
		if errors.Is(err, catalog.ErrNoQuestions) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("pick random question failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not pick question"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": q})
}

// Get maneja GET /questions/:id.
func (h *QuestionHandler) Get(c *gin.Context) {
	q, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": q})
}

// Next maneja GET /questions/:id/next?category=. Al final del pool responde
// 200 con question null.
func (h *QuestionHandler) Next(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.catalog.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	next, ok := h.catalog.NextAfter(id, c.Query("category"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"question": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": next})
}

// Categories maneja GET /categories.
func (h *QuestionHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Categories()})
}
