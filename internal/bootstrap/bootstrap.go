package bootstrap

import (
	"errors"
	"fmt"
	"masterlist-web/internal/client"
	"masterlist-web/internal/config"
	"masterlist-web/internal/repository"
	"masterlist-web/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Components is the service graph shared by the web server and the worker.
type Components struct {
	MasterData service.MasterData
	Sessions   *repository.SessionStore
	SessionLog service.SessionLog
	Imports    *service.ImportService
	Processes  *service.ProcessService
	Excel      *service.ExcelService
}

// Build wires repositories and services. db may be nil unless the mysql
// backend is selected; without it the session log is disabled.
func Build(db *sqlx.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) (*Components, error) {
	if redisClient == nil {
		return nil, errors.New("redis is required for import sessions")
	}

	masterData, err := NewMasterData(db, cfg)
	if err != nil {
		return nil, err
	}

	var sessionLog service.SessionLog
	if db != nil && cfg.SessionLogEnabled {
		sessionLog = repository.NewUploadRepository(db)
	} else {
		logger.Warn("Session log disabled, import listing is unavailable")
	}

	sessions := repository.NewSessionStore(redisClient, cfg.SessionTTL)
	dispatcher := service.NewDispatcher(masterData, cfg.SubmitConcurrency, logger)

	return &Components{
		MasterData: masterData,
		Sessions:   sessions,
		SessionLog: sessionLog,
		Imports:    service.NewImportService(sessions, sessionLog, masterData, dispatcher, cfg.SessionLockTTL, logger),
		Processes:  service.NewProcessService(masterData, masterData),
		Excel:      service.NewExcelService(),
	}, nil
}

// NewMasterData picks the collaborator named by MASTERLIST_BACKEND.
func NewMasterData(db *sqlx.DB, cfg *config.Config) (service.MasterData, error) {
	switch cfg.MasterlistBackend {
	case config.BackendMySQL:
		if db == nil {
			return nil, fmt.Errorf("the %q backend needs a database connection", config.BackendMySQL)
		}
		return repository.NewMasterDataRepository(db), nil
	case config.BackendAPI:
		return client.NewMasterlistClient(cfg.MasterlistAPIURL, cfg.MasterlistAPITimeout)
	}
	return nil, fmt.Errorf("unsupported MASTERLIST_BACKEND: %s", cfg.MasterlistBackend)
}
