package main

import (
	"fmt"
	"log"
	"masterlist-web/internal/bootstrap"
	"masterlist-web/internal/config"
	"masterlist-web/internal/database"
	"masterlist-web/internal/handler"
	"masterlist-web/internal/router"
	"masterlist-web/internal/utils"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
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

	// Initialize database (optional unless MASTERLIST_BACKEND=mysql)
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

	// Initialize Redis (session state and background jobs)
	redisClient, err := database.NewRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	components, err := bootstrap.Build(db, redisClient, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(database.AsynqRedisOpt(cfg))
	defer asynqClient.Close()

	if err := os.MkdirAll(cfg.UploadPath, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    cfg.UploadMaxSize,
		ErrorHandler: utils.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Setup routes
	var enqueuer handler.TaskEnqueuer = asynqClient
	router.Setup(app, components, enqueuer, cfg)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nGracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := fmt.Sprintf(":%s", cfg.AppPort)
	appLogger.WithField("backend", cfg.MasterlistBackend).Infof("Server starting on %s", port)
	if err := app.Listen(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Println("Server exited")
}
