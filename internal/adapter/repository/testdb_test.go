package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the schema the
// repositories touch. The DDL mirrors the Postgres migrations without
// the server-side defaults; entity constructors fill IDs and timestamps.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			org_id TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'student',
			oauth_provider TEXT,
			oauth_id TEXT,
			avatar_url TEXT,
			timezone TEXT NOT NULL DEFAULT 'UTC',
			language TEXT NOT NULL DEFAULT 'ar',
			tajweed_enabled BOOLEAN,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			last_login_at DATETIME,
			notification_preferences TEXT DEFAULT '{}',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE recitations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			assignment_id TEXT,
			surah_number INTEGER NOT NULL,
			ayah_start INTEGER NOT NULL,
			ayah_end INTEGER NOT NULL,
			target_text TEXT NOT NULL,
			audio_key TEXT,
			audio_size_bytes INTEGER DEFAULT 0,
			duration_seconds REAL DEFAULT 0,
			audio_purged_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE analysis_jobs (
			id TEXT PRIMARY KEY,
			recitation_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'queued',
			started_at DATETIME,
			completed_at DATETIME,
			retry_count INTEGER DEFAULT 0,
			max_retries INTEGER DEFAULT 3,
			last_error TEXT,
			worker_id TEXT,
			result TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE memorization_plans (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			org_id TEXT NOT NULL,
			title TEXT NOT NULL,
			surah_number INTEGER NOT NULL,
			ayah_start INTEGER NOT NULL,
			ayah_end INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE srs_items (
			id TEXT PRIMARY KEY,
			plan_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			surah_number INTEGER NOT NULL,
			ayah_number INTEGER NOT NULL,
			interval_days INTEGER NOT NULL DEFAULT 1,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			repetitions INTEGER NOT NULL DEFAULT 0,
			due_at DATETIME NOT NULL,
			last_reviewed DATETIME,
			last_score REAL,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT,
			payload TEXT DEFAULT '{}',
			read_at DATETIME,
			created_at DATETIME
		)`,
	}
	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}
