package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "taskboard/docs"
	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/database"
	"taskboard/internal/handler"
	"taskboard/internal/metrics"
	"taskboard/internal/middleware"
	"taskboard/internal/repository"
	"taskboard/internal/seed"
	"taskboard/internal/service"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger
}

// Dependencies are the services the HTTP routes are built on.
type Dependencies struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Accounts *service.AccountService
	Projects *service.ProjectService
	Boards   *service.BoardService
}

func Init(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	db, err := database.NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}

	fixture, err := loadFixture(cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New(logger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	boards := service.NewBoardService(fixture, m, logger)
	projects := service.NewProjectService(projectRepo, boards, logger)
	accounts := service.NewAccountService(userRepo, tokens, logger)

	opened, err := projects.OpenAll(context.Background())
	if err != nil {
		return nil, err
	}
	logger.Info("Boards restored for stored projects", zap.Int("count", opened))

	r := NewRouter(cfg, Dependencies{
		Logger:   logger,
		Metrics:  m,
		Accounts: accounts,
		Projects: projects,
		Boards:   boards,
	})

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		Logger: logger,
	}, nil
}

// NewRouter wires middleware and routes.
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))

	userHandler := handler.NewUserHandler(deps.Accounts)
	projectHandler := handler.NewProjectHandler(deps.Projects)
	boardHandler := handler.NewBoardHandler(deps.Boards, deps.Projects, deps.Logger)
	streamHandler := handler.NewStreamHandler(deps.Boards, deps.Projects, deps.Metrics, deps.Logger)

	// Public routes
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "boards": deps.Boards.Count()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.GET("/projects/:id", projectHandler.GetByID)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.DELETE("/projects/:id", projectHandler.Delete)

		// Board routes
		authorized.GET("/projects/:id/board", boardHandler.GetBoard)
		authorized.GET("/projects/:id/board/stream", streamHandler.Stream)
		authorized.POST("/projects/:id/board/columns", boardHandler.AddColumn)
		authorized.PUT("/projects/:id/board/columns/:column_id", boardHandler.RenameColumn)
		authorized.POST("/projects/:id/board/tasks", boardHandler.AddTask)
		authorized.PATCH("/projects/:id/board/tasks/:task_id", boardHandler.UpdateTask)
		authorized.DELETE("/projects/:id/board/tasks/:task_id", boardHandler.DeleteTask)
		authorized.POST("/projects/:id/board/tasks/:task_id/move", boardHandler.MoveTask)

		// Drag routes
		authorized.GET("/projects/:id/board/drag", boardHandler.GetDragState)
		authorized.POST("/projects/:id/board/drag/start", boardHandler.DragStart)
		authorized.POST("/projects/:id/board/drag/over", boardHandler.DragOver)
		authorized.POST("/projects/:id/board/drag/leave", boardHandler.DragLeave)
		authorized.POST("/projects/:id/board/drag/drop", boardHandler.Drop)
		authorized.POST("/projects/:id/board/drag/cancel", boardHandler.DragCancel)
		authorized.POST("/projects/:id/board/drag/end", boardHandler.DragEnd)
	}
	return r
}

// loadFixture picks the seed for new boards: none, a file, or the built-in
// demo board.
func loadFixture(cfg *config.Config) (*seed.Fixture, error) {
	if !cfg.SeedDemo {
		return nil, nil
	}
	if cfg.SeedFile != "" {
		fixture, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		return fixture, nil
	}
	return seed.Demo(), nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		s.Logger.Info("Server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("Failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}
	s.Logger.Info("Server exited properly")
}
