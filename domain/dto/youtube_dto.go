package dto

import "playlist-exporter/domain/model"

// PlaylistItemPage is one page of a playlist listing
type PlaylistItemPage struct {
	Items         []model.PlaylistItemRef `json:"items"`
	NextPageToken string                  `json:"next_page_token,omitempty"`
}

// ExportResult is the outcome of a full paginate/enrich/encode run.
// Records is nil when the CSV was served from the export cache.
type ExportResult struct {
	PlaylistID string              `json:"playlist_id"`
	Records    []model.VideoRecord `json:"-"`
	CSV        []byte              `json:"-"`
	ItemCount  int                 `json:"item_count"`
	RowCount   int                 `json:"row_count"`
	Ingest     *IngestStats        `json:"ingest,omitempty"`
	Cached     bool                `json:"cached"`
}

// IngestStats summarizes a videos table ingestion
type IngestStats struct {
	Total             int `json:"total"`
	Inserted          int `json:"inserted"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
	Errors            int `json:"errors"`
}

// RunEvent is published after each export run
type RunEvent struct {
	PlaylistID string `json:"playlist_id"`
	Status     string `json:"status"`
	RowCount   int    `json:"row_count"`
	Error      string `json:"error,omitempty"`
}
