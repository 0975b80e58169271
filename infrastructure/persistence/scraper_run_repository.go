package persistence

import (
	"context"
	"database/sql"

	"playlist-exporter/domain/model"
)

const defaultRunLimit = 10

// ScraperRunRepository keeps the export history in scraper_runs
type ScraperRunRepository struct{ db *sql.DB }

func NewScraperRunRepository(db *sql.DB) *ScraperRunRepository {
	return &ScraperRunRepository{db: db}
}

// Create inserts a run and returns its generated ID
func (r *ScraperRunRepository) Create(ctx context.Context, run *model.ScraperRun) (int64, error) {
	if r.db == nil {
		return 0, nil
	}
	var csvPath sql.NullString
	if run.CSVPath != "" {
		csvPath = sql.NullString{String: run.CSVPath, Valid: true}
	}
	var errMsg sql.NullString
	if run.ErrorMessage != nil {
		errMsg = sql.NullString{String: *run.ErrorMessage, Valid: true}
	}

	q := `INSERT INTO scraper_runs(playlist_id, run_started_at, run_completed_at, new_videos_count, existing_videos_skipped, total_videos_in_csv, csv_path, status, error_message)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
          RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		run.PlaylistID, run.RunStartedAt.UTC(), run.RunCompletedAt.UTC(),
		run.NewVideosCount, run.ExistingVideosSkipped, run.TotalVideosInCSV,
		csvPath, run.Status, errMsg,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

// ListRecent returns the latest runs, newest first
func (r *ScraperRunRepository) ListRecent(ctx context.Context, limit int) ([]model.ScraperRun, error) {
	if r.db == nil {
		return []model.ScraperRun{}, nil
	}
	if limit <= 0 {
		limit = defaultRunLimit
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, playlist_id, run_started_at, run_completed_at, new_videos_count, existing_videos_skipped, total_videos_in_csv, csv_path, status, error_message
        FROM scraper_runs ORDER BY run_started_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ScraperRun, 0, limit)
	for rows.Next() {
		var run model.ScraperRun
		var csvPath, errMsg sql.NullString
		if err := rows.Scan(&run.ID, &run.PlaylistID, &run.RunStartedAt, &run.RunCompletedAt,
			&run.NewVideosCount, &run.ExistingVideosSkipped, &run.TotalVideosInCSV,
			&csvPath, &run.Status, &errMsg); err != nil {
			return nil, err
		}
		run.CSVPath = csvPath.String
		if errMsg.Valid {
			msg := errMsg.String
			run.ErrorMessage = &msg
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
