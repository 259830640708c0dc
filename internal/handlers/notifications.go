package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
	errs          *errorResponder
}

type listNotificationsQuery struct {
	Limit int `form:"limit,default=20"`
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var query listNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	if query.Limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be at least 1"})
		return
	}

	items, unread, err := h.notifications.List(c.Request.Context(), caller(c), query.Limit)
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NotificationListResponse{Notifications: items, UnreadCount: unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	updated, err := h.notifications.MarkAllRead(c.Request.Context(), caller(c))
	if err != nil {
		h.errs.respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": updated})
}
