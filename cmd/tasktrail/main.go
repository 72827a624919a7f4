package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tasktrail/tasktrail/internal/app"
	"github.com/tasktrail/tasktrail/internal/audit"
	"github.com/tasktrail/tasktrail/internal/auth"
	"github.com/tasktrail/tasktrail/internal/observability"
	"github.com/tasktrail/tasktrail/internal/orgs"
	"github.com/tasktrail/tasktrail/internal/platform/db"
	"github.com/tasktrail/tasktrail/internal/rbac"
	"github.com/tasktrail/tasktrail/internal/tasks"
	"github.com/tasktrail/tasktrail/internal/users"
	"github.com/tasktrail/tasktrail/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	denylist := auth.NewDenylist(redisClient)

	orgRepo := orgs.NewRepository(pool)
	resolver := orgs.NewResolver(orgRepo)
	orgService := orgs.NewService(orgRepo, resolver)

	roleRepo := rbac.NewRepository(pool)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo, logger)

	taskRepo := tasks.NewRepository(pool)
	taskService := tasks.NewService(taskRepo, resolver, auditService, logger)

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo, roleRepo, orgRepo, resolver, auditService, logger)

	authService := auth.NewService(userRepo, roleRepo, tokens, denylist, auditService, logger)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		TokenManager: tokens,
		Denylist:     denylist,
		AuthHandler:  auth.NewHandler(logger, authService),
		TaskHandler:  tasks.NewHandler(logger, taskService),
		UserHandler:  users.NewHandler(logger, userService, rbacMiddleware),
		OrgHandler:   orgs.NewHandler(logger, orgService),
		RoleHandler:  rbac.NewHandler(logger, roleRepo),
		AuditHandler: audit.NewHandler(logger, auditService),
		JobHandler:   jobs.NewHandler(inspector, logger),
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
