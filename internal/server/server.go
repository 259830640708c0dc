package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emilythestrangee/stackit/backend/internal/config"
	"github.com/emilythestrangee/stackit/backend/internal/database"
	"github.com/emilythestrangee/stackit/backend/internal/handlers"
	"github.com/emilythestrangee/stackit/backend/internal/middleware"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

// Deps is everything the HTTP layer needs, built once by the caller.
type Deps struct {
	Config    config.Config
	DB        database.Service
	Services  *service.Services
	Assistant handlers.Answerer
	Logger    *slog.Logger
}

type Server struct {
	cfg     config.Config
	db      database.Service
	auth    middleware.TokenResolver
	handler *handlers.Handler
	log     *slog.Logger
}

func New(deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:     deps.Config,
		db:      deps.DB,
		auth:    deps.Services.Auth,
		handler: handlers.NewHandler(deps.Services, deps.Assistant, log),
		log:     log,
	}
}

// NewServer creates and configures a new server
func NewServer(deps Deps) *http.Server {
	s := New(deps)

	server := &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.log.Info("server configured", "addr", server.Addr, "env", s.cfg.Env)
	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(s.log), middleware.Metrics())

	// CORS configuration
	r.Use(cors.New(corsConfig(s.cfg.CORSOrigins)))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "StackIt Q&A Platform API"})
	})
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := s.handler
	protected := middleware.AuthMiddleware(s.auth)

	// Auth routes (public)
	r.POST("/auth/register", h.Auth.Register)
	r.POST("/auth/login", h.Auth.Login)
	r.POST("/auth/logout", h.Auth.Logout)

	r.GET("/users/profile", protected, h.User.Profile)

	// Question routes
	r.GET("/questions", h.Question.ListQuestions)
	r.GET("/questions/:id", h.Question.GetQuestion)
	r.POST("/questions/answers_ai", h.AI.GetAIAnswer)
	r.POST("/questions", protected, h.Question.CreateQuestion)
	r.PUT("/questions/:id", protected, h.Question.UpdateQuestion)
	r.DELETE("/questions/:id", protected, h.Question.DeleteQuestion)

	// Answer routes
	r.GET("/questions/:id/answers", h.Answer.GetAnswers)
	r.POST("/questions/:id/answers", protected, h.Answer.CreateAnswer)
	r.PUT("/answers/:id", protected, h.Answer.UpdateAnswer)
	r.DELETE("/answers/:id", protected, h.Answer.DeleteAnswer)
	r.POST("/answers/:id/accept", protected, h.Answer.AcceptAnswer)
	r.POST("/answers/:id/vote", protected, h.Answer.Vote)
	r.DELETE("/answers/:id/vote", protected, h.Answer.RemoveVote)

	// Tag routes
	r.GET("/tags", h.Tag.ListTags)
	r.POST("/tags", protected, h.Tag.CreateTag)

	notifications := r.Group("/notifications", protected)
	{
		notifications.GET("", h.Notification.ListNotifications)
		notifications.PUT("/read-all", h.Notification.MarkAllRead)
		notifications.PUT("/:id/read", h.Notification.MarkRead)
	}

	// Admin routes; the role check happens in the service
	admin := r.Group("/admin", protected)
	{
		admin.POST("/ban-user", h.Admin.BanUser)
		admin.POST("/messages", h.Admin.SendMessage)
		admin.DELETE("/moderate/:type/:id", h.Admin.ModerateContent)
		admin.GET("/reports", h.Admin.Reports)
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	health := s.db.Health()
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

// corsConfig allows credentials only when origins are listed explicitly.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           12 * time.Hour,
	}
}
