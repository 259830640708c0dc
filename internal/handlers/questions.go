package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

type QuestionHandler struct {
	questions *service.QuestionService
	errs      *errorResponder
}

// ListQuestions returns a page of questions, optionally filtered by search
// text and a comma-separated tag list.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	var query models.ListQuestionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	if query.Page < 1 || query.Limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and limit must be positive"})
		return
	}

	var tags []string
	if query.Tags != "" {
		tags = strings.Split(query.Tags, ",")
	}

	items, total, err := h.questions.List(c.Request.Context(), service.ListQuestionsParams{
		Page:   query.Page,
		Limit:  query.Limit,
		Search: query.Search,
		Tags:   tags,
	})
	if err != nil {
		h.errs.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, models.QuestionListResponse{
		Questions: items,
		Total:     total,
		Page:      query.Page,
		Limit:     query.Limit,
	})
}

// GetQuestion returns a single question and counts the view
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	q, err := h.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	q, err := h.questions.Create(c.Request.Context(), input.Title, input.Description, input.Tags, caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var input models.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	q, err := h.questions.Update(c.Request.Context(), c.Param("id"), service.QuestionPatch{
		Title:       input.Title,
		Description: input.Description,
		Tags:        input.Tags,
	}, caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.questions.Delete(c.Request.Context(), c.Param("id"), caller(c)); err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}
