package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	ai Answerer
}

type aiQuestionRequest struct {
	Question string `json:"question" binding:"required,max=5000"`
}

// GetAIAnswer suggests an answer. Upstream trouble is absorbed by the
// assistant, so only a malformed request gets an error status.
func (h *AIHandler) GetAIAnswer(c *gin.Context) {
	var input aiQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ai.Answer(c.Request.Context(), input.Question))
}
