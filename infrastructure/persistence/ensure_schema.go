package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"playlist-exporter/infrastructure/logger"
)

var videosDDL = `CREATE TABLE IF NOT EXISTS videos (
        video_id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT,
        published_at BIGINT,
        duration_seconds BIGINT,
        view_count BIGINT,
        like_count BIGINT,
        comment_count BIGINT,
        is_indexed BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`

// scraper_runs differs only in how the id column is generated
var scraperRunsDDL = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS scraper_runs (
        id BIGSERIAL PRIMARY KEY,` + scraperRunsColumns,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS scraper_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,` + scraperRunsColumns,
}

const scraperRunsColumns = `
        playlist_id TEXT NOT NULL,
        run_started_at TIMESTAMP NOT NULL,
        run_completed_at TIMESTAMP NOT NULL,
        new_videos_count INTEGER NOT NULL DEFAULT 0,
        existing_videos_skipped INTEGER NOT NULL DEFAULT 0,
        total_videos_in_csv INTEGER NOT NULL DEFAULT 0,
        csv_path TEXT,
        status TEXT NOT NULL DEFAULT 'success',
        error_message TEXT
    )`

// EnsureSchema creates the videos and scraper_runs tables if they do not exist
func EnsureSchema(db *sql.DB, driver string) error {
	runsDDL, ok := scraperRunsDDL[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, videosDDL); err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}
	if _, err := db.ExecContext(ctx, runsDDL); err != nil {
		return fmt.Errorf("create scraper_runs table: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_scraper_runs_started_at ON scraper_runs(run_started_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_scraper_runs_started_at")
	}
	return nil
}
