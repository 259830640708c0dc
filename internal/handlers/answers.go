package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

type AnswerHandler struct {
	answers *service.AnswerService
	errs    *errorResponder
}

// GetAnswers lists a question's answers, accepted answer first
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	answers, err := h.answers.List(c.Request.Context(), c.Param("id"), c.DefaultQuery("sort", models.SortNewest))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, models.AnswerListResponse{Answers: answers, Total: len(answers)})
}

func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	a, err := h.answers.Create(c.Request.Context(), c.Param("id"), input.Content, caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	var input models.UpdateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	a, err := h.answers.Update(c.Request.Context(), c.Param("id"), input.Content, caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	if err := h.answers.Delete(c.Request.Context(), c.Param("id"), caller(c)); err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}

// AcceptAnswer lets the question's author pick the accepted answer
func (h *AnswerHandler) AcceptAnswer(c *gin.Context) {
	a, err := h.answers.Accept(c.Request.Context(), c.Param("id"), caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer accepted", "answer": a})
}

func (h *AnswerHandler) Vote(c *gin.Context) {
	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.answers.Vote(c.Request.Context(), c.Param("id"), input.VoteType, caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AnswerHandler) RemoveVote(c *gin.Context) {
	res, err := h.answers.RemoveVote(c.Request.Context(), c.Param("id"), caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
