package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

type TagHandler struct {
	tags *service.TagService
	errs *errorResponder
}

type listTagsQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit,default=100"`
}

func (h *TagHandler) ListTags(c *gin.Context) {
	var query listTagsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	if query.Limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be at least 1"})
		return
	}

	tags, err := h.tags.List(c.Request.Context(), query.Search, query.Limit)
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, models.TagListResponse{Tags: tags, Total: len(tags)})
}

// CreateTag only validates the name; a tag comes into being when a question
// uses it.
func (h *TagHandler) CreateTag(c *gin.Context) {
	var input models.CreateTagRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	tag, err := h.tags.Validate(c.Request.Context(), input.Name)
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}
