package handlers

import (
	"net/http"

	"signn-go/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuizHandler struct {
	log  *zap.Logger
	quiz *models.Quiz
}

func NewQuizHandler(log *zap.Logger, quiz *models.Quiz) *QuizHandler {
	return &QuizHandler{log: log, quiz: quiz}
}

type quizQuestionResponse struct {
	ID      string              `json:"id"`
	Text    string              `json:"text"`
	Options []models.QuizOption `json:"options"`
}

// Questions serves the behavioral quiz in shuffled order. The answer key
// stays server-side; grading happens at finalize.
func (h *QuizHandler) Questions(c *gin.Context) {
	if _, ok := currentRiderID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	questions := h.quiz.Shuffled()
	out := make([]quizQuestionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, quizQuestionResponse{ID: q.ID, Text: q.Text, Options: q.Options})
	}
	c.JSON(http.StatusOK, gin.H{"questions": out})
}
