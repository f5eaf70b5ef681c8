// Package database opens the Postgres connection and applies the SQL
// migrations that own the schema.
package database

import (
	"fmt"
	"log"
	"time"

	migrate "github.com/rubenv/sql-migrate"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itqanlabs/itqan-backend/pkg/config"
)

// migrationsDir is relative to the working directory; deployments run
// the binary from the repo root.
const migrationsDir = "migrations"

// NewPostgresDB opens a pooled GORM connection and verifies it with a
// ping. Timestamps are written in UTC so rows compare cleanly across
// app servers in different zones.
func NewPostgresDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger:  queryLogger(cfg.Server.Environment),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MinConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Println("✅ Database connected successfully")
	return db, nil
}

// queryLogger keeps per-query logging out of production, where it is
// pure noise at our request rates.
func queryLogger(environment string) logger.Interface {
	if environment == "production" {
		return logger.Default.LogMode(logger.Error)
	}
	return logger.Default.LogMode(logger.Info)
}

// AutoMigrate applies pending sql-migrate migrations. Development
// convenience only; production schemas move through CI.
func AutoMigrate(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}

	source := &migrate.FileMigrationSource{Dir: migrationsDir}
	n, err := migrate.Exec(sqlDB, "postgres", source, migrate.Up)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Printf("✅ Applied %d migrations!\n", n)
	return nil
}

// CloseDB closes the underlying connection pool.
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	log.Println("✅ Database connection closed")
	return nil
}
