package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/stackit/backend/internal/models"
)

type UserHandler struct{}

// Profile returns the authenticated user
func (h *UserHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, models.NewUserResponse(caller(c)))
}
