package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/stackit/backend/internal/assistant"
	"github.com/emilythestrangee/stackit/backend/internal/middleware"
	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

// Answerer produces an AI answer suggestion; it never fails.
type Answerer interface {
	Answer(ctx context.Context, question string) assistant.Result
}

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Question     *QuestionHandler
	Answer       *AnswerHandler
	Tag          *TagHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
	AI           *AIHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(svc *service.Services, ai Answerer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	e := &errorResponder{log: log}

	return &Handler{
		Auth:         &AuthHandler{auth: svc.Auth, errs: e},
		User:         &UserHandler{},
		Question:     &QuestionHandler{questions: svc.Questions, errs: e},
		Answer:       &AnswerHandler{answers: svc.Answers, errs: e},
		Tag:          &TagHandler{tags: svc.Tags, errs: e},
		Notification: &NotificationHandler{notifications: svc.Notifications, errs: e},
		Admin:        &AdminHandler{admin: svc.Admin, errs: e},
		AI:           &AIHandler{ai: ai},
	}
}

type errorResponder struct {
	log *slog.Logger
}

// respond maps service errors to status codes. Anything outside the service
// taxonomy is logged and reported as a generic 500.
func (e *errorResponder) respond(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		e.log.ErrorContext(c.Request.Context(), "request failed",
			"error", err, "method", c.Request.Method, "path", c.FullPath())
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": publicMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage drops the sentinel prefix ("not found: question not found").
func publicMessage(err error) string {
	msg := err.Error()
	if _, detail, ok := strings.Cut(msg, ": "); ok && detail != "" {
		return detail
	}
	return msg
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// caller is only called behind AuthMiddleware, which guarantees a user.
func caller(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}
