package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedbackhub/docs"
	"feedbackhub/internal/auth"
	"feedbackhub/internal/config"
	"feedbackhub/internal/database"
	"feedbackhub/internal/handler"
	"feedbackhub/internal/logging"
	"feedbackhub/internal/metrics"
	"feedbackhub/internal/middleware"
	"feedbackhub/internal/repository"
	"feedbackhub/internal/summary"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config
	Log    *logrus.Logger
}

func Init(cfg *config.Config) (*Server, error) {
	log := logging.New(cfg.LogLevel, os.Stdout)

	db, err := database.Open(cfg.DSN(), log)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
	}
	log.Info("✅ Connected to database")

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("❌ invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)

	gin.SetMode(cfg.GinMode)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		DB:     db,
		Redis:  rdb,
		Config: cfg,
		Log:    log,
	}
	s.Engine = s.routes(registry)
	return s, nil
}

func (s *Server) routes(registry *prometheus.Registry) *gin.Engine {
	handler.RegisterValidators()
	docs.Register()
	m := metrics.NewMetrics(registry)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(s.Log), m.GinMiddleware())

	// Initialize repositories
	userRepo := repository.NewUserRepository(s.DB)
	boardRepo := repository.NewBoardRepository(s.DB)
	feedbackRepo := repository.NewFeedbackRepository(s.DB)
	commentRepo := repository.NewCommentRepository(s.DB)

	tokens := auth.NewTokenManager(s.Config.JWTSecret, s.Config.JWTTTL)
	refresh := auth.NewRefreshStore(s.Redis, s.Config.RefreshTTL)
	summaries := summary.NewService(feedbackRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo, tokens, refresh, m)
	boardHandler := handler.NewBoardHandler(boardRepo, userRepo)
	feedbackHandler := handler.NewFeedbackHandler(feedbackRepo, boardRepo, summaries, m)
	commentHandler := handler.NewCommentHandler(commentRepo, feedbackRepo, boardRepo)
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": handler.PingerFunc(func(ctx context.Context) error {
			sqlDB, err := s.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": handler.PingerFunc(func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}),
	})

	// Operational routes
	r.GET("/healthz", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	r.POST("/auth/register", userHandler.Register)
	r.POST("/auth/login", userHandler.Login)
	r.POST("/auth/refresh", userHandler.Refresh)
	r.POST("/auth/logout", userHandler.Logout)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens), middleware.LoadCaller(userRepo))
	{
		authorized.GET("/auth/me", userHandler.Me)
		authorized.PATCH("/users/:id/role", userHandler.SetRole)

		// Board routes
		authorized.GET("/boards", boardHandler.List)
		authorized.POST("/boards", boardHandler.Create)
		authorized.GET("/boards/:id", boardHandler.GetByID)
		authorized.PUT("/boards/:id", boardHandler.Update)
		authorized.DELETE("/boards/:id", boardHandler.Delete)

		// Feedback routes
		authorized.GET("/feedback", feedbackHandler.List)
		authorized.POST("/feedback", feedbackHandler.Create)
		authorized.GET("/feedback/summary", feedbackHandler.Summary)
		authorized.GET("/feedback/:id", feedbackHandler.GetByID)
		authorized.PUT("/feedback/:id", feedbackHandler.Update)
		authorized.DELETE("/feedback/:id", feedbackHandler.Delete)
		authorized.POST("/feedback/:id/upvote", feedbackHandler.Upvote)

		// Comment routes
		authorized.GET("/comments", commentHandler.List)
		authorized.POST("/comments", commentHandler.Create)
		authorized.GET("/comments/:id", commentHandler.GetByID)
		authorized.PUT("/comments/:id", commentHandler.Update)
		authorized.DELETE("/comments/:id", commentHandler.Delete)
	}

	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Log.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if err := s.Redis.Close(); err != nil {
		s.Log.WithError(err).Warn("closing redis client")
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	s.Log.Info("✅ Server exited properly")
}
