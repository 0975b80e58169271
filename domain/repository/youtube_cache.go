package repository

import (
	"context"
	"time"

	"playlist-exporter/domain/dto"
	"playlist-exporter/domain/model"
)

// IVideoStore persists cleaned videos
type IVideoStore interface {
	// ExistingIDs returns the set of video IDs already stored.
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
	// InsertVideo stores a video; inserted is false when the ID already existed.
	InsertVideo(ctx context.Context, video *model.StoredVideo) (inserted bool, err error)
}

// IScraperRunStore keeps the export history
type IScraperRunStore interface {
	Create(ctx context.Context, run *model.ScraperRun) (int64, error)
	// ListRecent returns the latest runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.ScraperRun, error)
}

// IExportCache caches finished CSV payloads per playlist
type IExportCache interface {
	Get(ctx context.Context, playlistID string) ([]byte, bool, error)
	Set(ctx context.Context, playlistID string, payload []byte) error
}

// IRunNotifier publishes run events to a message broker
type IRunNotifier interface {
	Notify(ctx context.Context, event dto.RunEvent) error
}

// IExportMetrics records export outcomes
type IExportMetrics interface {
	// ObserveExport is called once per export with status success, failed or cached.
	ObserveExport(status string, rows int, elapsed time.Duration)
}
