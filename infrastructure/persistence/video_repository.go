package persistence

import (
	"context"
	"database/sql"

	"playlist-exporter/domain/model"
)

// VideoRepository stores cleaned videos in the videos table
type VideoRepository struct{ db *sql.DB }

func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// ExistingIDs returns every stored video ID
func (r *VideoRepository) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	if r.db == nil {
		return ids, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT video_id FROM videos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// InsertVideo adds a video unless its ID is already present
func (r *VideoRepository) InsertVideo(ctx context.Context, v *model.StoredVideo) (bool, error) {
	if r.db == nil {
		return false, nil
	}
	q := `INSERT INTO videos(video_id, title, description, published_at, duration_seconds, view_count, like_count, comment_count, is_indexed)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
          ON CONFLICT (video_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, q,
		v.VideoID, v.Title, v.Description,
		nullInt64(v.PublishedAt), nullInt64(v.DurationSeconds),
		nullInt64(v.ViewCount), nullInt64(v.LikeCount), nullInt64(v.CommentCount),
		v.IsIndexed,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
