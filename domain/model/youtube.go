package model

import "time"

// PlaylistItemRef is a single entry of a playlist page
type PlaylistItemRef struct {
	VideoID string `json:"video_id"`
}

// VideoRecord represents a playlist video merged with its statistics.
// Counts are kept as the strings the API returned.
type VideoRecord struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	DurationCode string `json:"duration"`
	PublishedAt  string `json:"published_at"`
	LikeCount    string `json:"like_count"`
	ViewCount    string `json:"view_count"`
	CommentCount string `json:"comment_count"`
}

// StoredVideo is a cleaned, typed row of the videos table
type StoredVideo struct {
	VideoID         string    `json:"video_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PublishedAt     *int64    `json:"published_at,omitempty"` // unix seconds
	DurationSeconds *int64    `json:"duration_seconds,omitempty"`
	ViewCount       *int64    `json:"view_count,omitempty"`
	LikeCount       *int64    `json:"like_count,omitempty"`
	CommentCount    *int64    `json:"comment_count,omitempty"`
	IsIndexed       bool      `json:"is_indexed"`
	CreatedAt       time.Time `json:"created_at"`
}

const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// ScraperRun is one entry of the export history
type ScraperRun struct {
	ID                    int64     `json:"id"`
	PlaylistID            string    `json:"playlist_id"`
	RunStartedAt          time.Time `json:"run_started_at"`
	RunCompletedAt        time.Time `json:"run_completed_at"`
	NewVideosCount        int       `json:"new_videos_count"`
	ExistingVideosSkipped int       `json:"existing_videos_skipped"`
	TotalVideosInCSV      int       `json:"total_videos_in_csv"`
	CSVPath               string    `json:"csv_path,omitempty"`
	Status                string    `json:"status"` // success | failed
	ErrorMessage          *string   `json:"error_message,omitempty"`
}
