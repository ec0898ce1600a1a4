package main

import (
	"context"
	"fmt"
	"log"
	"masterlist-web/internal/bootstrap"
	"masterlist-web/internal/config"
	"masterlist-web/internal/database"
	"masterlist-web/internal/utils"
	"masterlist-web/internal/worker"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := utils.GetLogger()
	utils.SetLogLevel(cfg.LogLevel)

	// Initialize database
	var db *sqlx.DB
	if cfg.MasterlistBackend == config.BackendMySQL || cfg.SessionLogEnabled {
		db, err = database.NewMySQL(cfg)
		if err != nil {
			if cfg.MasterlistBackend == config.BackendMySQL {
				log.Fatalf("Failed to connect to database: %v", err)
			}
			appLogger.WithError(err).Warn("Failed to connect to database, session log disabled")
			db = nil
		} else {
			defer db.Close()
		}
	}

	// Initialize Redis
	redisClient, err := database.NewRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	components, err := bootstrap.Build(db, redisClient, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Create Asynq server
	srv := asynq.NewServer(
		database.AsynqRedisOpt(cfg),
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues:      worker.Queues,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				appLogger.WithError(err).WithField("task", task.Type()).Error("Task failed")
			}),
		},
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, worker.NewImportTaskHandler(components.Imports, appLogger))

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nGracefully shutting down worker...")
		srv.Shutdown()
	}()

	// Start worker
	appLogger.Infof("Worker starting with concurrency: %d", cfg.WorkerConcurrency)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	fmt.Println("Worker exited")
}
