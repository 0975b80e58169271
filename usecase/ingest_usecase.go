package usecase

import (
	"context"
	"fmt"
	"strings"

	"playlist-exporter/domain/dto"
	"playlist-exporter/domain/model"
	"playlist-exporter/domain/repository"
	"playlist-exporter/infrastructure/logger"
	"playlist-exporter/infrastructure/utils"
)

// IIngestUseCase stores exported records in the videos table
type IIngestUseCase interface {
	Ingest(ctx context.Context, records []model.VideoRecord) (*dto.IngestStats, error)
}

type IngestUseCase struct {
	store repository.IVideoStore
}

func NewIngestUseCase(store repository.IVideoStore) IIngestUseCase {
	return &IngestUseCase{store: store}
}

// Ingest cleans each record and inserts it unless the video is already stored.
// Records without an ID and failed inserts are counted as errors, not returned.
func (u *IngestUseCase) Ingest(ctx context.Context, records []model.VideoRecord) (*dto.IngestStats, error) {
	existing, err := u.store.ExistingIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing video ids: %w", err)
	}
	if existing == nil {
		existing = make(map[string]struct{})
	}

	stats := &dto.IngestStats{}
	for i := range records {
		stats.Total++
		id := strings.TrimSpace(records[i].VideoID)
		if id == "" {
			stats.Errors++
			continue
		}
		if _, ok := existing[id]; ok {
			stats.DuplicatesSkipped++
			continue
		}

		inserted, err := u.store.InsertVideo(ctx, toStoredVideo(id, &records[i]))
		if err != nil {
			logger.GetLogger().WithField("videoId", id).WithField("error", err).Warn("Failed to store video")
			stats.Errors++
			continue
		}
		if !inserted {
			stats.DuplicatesSkipped++
		} else {
			stats.Inserted++
		}
		existing[id] = struct{}{}
	}

	logger.GetLogger().WithField("stats", stats).Info("Ingest finished")
	return stats, nil
}

func toStoredVideo(id string, r *model.VideoRecord) *model.StoredVideo {
	return &model.StoredVideo{
		VideoID:         id,
		Title:           utils.CleanTitle(r.Title),
		Description:     utils.CleanDescription(r.Description),
		PublishedAt:     utils.ParseISODatetime(r.PublishedAt),
		DurationSeconds: utils.ParseISODuration(r.DurationCode),
		ViewCount:       utils.ParseInteger(r.ViewCount),
		LikeCount:       utils.ParseInteger(r.LikeCount),
		CommentCount:    utils.ParseInteger(r.CommentCount),
	}
}
