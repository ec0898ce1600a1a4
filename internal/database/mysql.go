package database

import (
	"fmt"
	"masterlist-web/internal/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func NewMySQL(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS import_sessions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		session_code VARCHAR(64) NOT NULL UNIQUE,
		entity VARCHAR(16) NOT NULL,
		filename VARCHAR(255) NOT NULL,
		total_rows INT NOT NULL DEFAULT 0,
		valid_rows INT NOT NULL DEFAULT 0,
		invalid_rows INT NOT NULL DEFAULT 0,
		submitted_rows INT NOT NULL DEFAULT 0,
		failed_rows INT NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL,
		error_message TEXT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_import_sessions_created_at (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id BIGINT PRIMARY KEY,
		internal_item_name VARCHAR(255) NOT NULL,
		tenant_id BIGINT NOT NULL,
		item_description TEXT NULL,
		type VARCHAR(16) NOT NULL,
		uom VARCHAR(8) NOT NULL,
		min_buffer DOUBLE NULL,
		max_buffer DOUBLE NULL,
		customer_item_name VARCHAR(255) NULL,
		avg_weight_needed VARCHAR(8) NULL,
		scrap_type VARCHAR(255) NULL,
		created_by VARCHAR(64) NOT NULL,
		last_updated_by VARCHAR(64) NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_items_name_tenant (internal_item_name, tenant_id)
	)`,
	`CREATE TABLE IF NOT EXISTS boms (
		id BIGINT PRIMARY KEY,
		item_id BIGINT NOT NULL,
		component_id BIGINT NOT NULL,
		quantity DOUBLE NOT NULL,
		created_by VARCHAR(64) NOT NULL,
		last_updated_by VARCHAR(64) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_boms_pair (item_id, component_id)
	)`,
	`CREATE TABLE IF NOT EXISTS processes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		process_name VARCHAR(255) NOT NULL,
		type VARCHAR(64) NOT NULL,
		tenant_id BIGINT NOT NULL,
		factory_id BIGINT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS process_steps (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_id BIGINT NOT NULL,
		process_id BIGINT NOT NULL,
		sequence INT NOT NULL,
		conversion_ratio DOUBLE NOT NULL,
		created_by VARCHAR(64) NOT NULL,
		last_updated_by VARCHAR(64) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates the tables used by the session log and the mysql backend.
func EnsureSchema(db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
