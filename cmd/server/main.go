package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/faccoco/web-todo/internal/auth"
	"github.com/faccoco/web-todo/internal/config"
	apphttp "github.com/faccoco/web-todo/internal/http"
	"github.com/faccoco/web-todo/internal/repository/sqlite"
	"github.com/faccoco/web-todo/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.TokenSecret) == "" {
		logger.Fatalf("auth token secret is required")
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		logger.Fatalf("auth token ttl must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	todoRepo := sqlite.NewTodoRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := todoRepo.Init(ctx); err != nil {
		logger.Fatalf("init todo repository: %v", err)
	}

	codec := auth.NewTokenCodec(
		[]byte(cfg.Auth.TokenSecret),
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
	)
	userService := service.NewUserService(userRepo, codec)
	todoService := service.NewTodoService(todoRepo)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, todoService, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		logger.Info("  POST   /api/auth/register - register new user")
		logger.Info("  POST   /api/auth/login    - login user")
		logger.Info("  GET    /api/auth/me       - get current user")
		logger.Info("  GET    /api/todos         - list todos")
		logger.Info("  POST   /api/todos         - create todo")
		logger.Info("  PUT    /api/todos/:id     - update todo")
		logger.Info("  DELETE /api/todos/:id     - delete todo")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
