package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tasktrail/tasktrail/internal/app"
	"github.com/tasktrail/tasktrail/internal/audit"
	"github.com/tasktrail/tasktrail/internal/orgs"
	"github.com/tasktrail/tasktrail/internal/platform/db"
	"github.com/tasktrail/tasktrail/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	orgRepo := orgs.NewRepository(pool)
	auditRepo := audit.NewRepository(pool)

	digestTask, err := jobs.NewAuditDigestTask(jobs.AuditDigestPayload{Window: 24 * time.Hour})
	if err != nil {
		logger.Error("build digest task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTreeIntegrity, Handler: jobs.NewTreeIntegrityHandler(orgRepo, logger)},
			{Type: jobs.TaskAuditDigest, Handler: jobs.NewAuditDigestHandler(auditRepo, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: jobs.NewTreeIntegrityTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: digestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	// Kick off one scan right away rather than waiting for the first cron tick.
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if _, err := client.EnqueueTreeIntegrity(ctx); err != nil {
		logger.Warn("enqueue initial tree integrity scan", slog.Any("error", err))
	}
	if err := client.Close(); err != nil {
		logger.Warn("jobs client close", slog.Any("error", err))
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
