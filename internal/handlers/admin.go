package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

// AdminHandler leaves the role check to the service, so every route here
// answers 403 for non-admins.
type AdminHandler struct {
	admin *service.AdminService
	errs  *errorResponder
}

type banUserRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Reason string `json:"reason"`
}

type broadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	var input banUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.admin.BanUser(c.Request.Context(), caller(c), input.UserID, input.Reason)
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "User banned successfully",
		"user":       models.NewUserResponse(user),
		"ban_reason": user.BanReason,
	})
}

func (h *AdminHandler) SendMessage(c *gin.Context) {
	var input broadcastRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	sent, err := h.admin.Broadcast(c.Request.Context(), caller(c), input.Message)
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent to all users", "recipients": sent})
}

func (h *AdminHandler) ModerateContent(c *gin.Context) {
	err := h.admin.RejectContent(c.Request.Context(), caller(c), c.Param("type"), c.Param("id"))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Content removed successfully"})
}

func (h *AdminHandler) Reports(c *gin.Context) {
	r, err := h.admin.Reports(c.Request.Context(), caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
