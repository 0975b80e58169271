package usecase

import (
	"context"
	"fmt"

	"playlist-exporter/domain/model"
	"playlist-exporter/domain/repository"
	"playlist-exporter/infrastructure/logger"

	log "github.com/sirupsen/logrus"
)

// Enricher looks up video details in fixed-size batches
type Enricher struct {
	source    repository.IPlaylistSource
	batchSize int
}

func NewEnricher(source repository.IPlaylistSource, batchSize int) *Enricher {
	if batchSize <= 0 || batchSize > MaxPageSize {
		batchSize = MaxPageSize
	}
	return &Enricher{source: source, batchSize: batchSize}
}

// Enrich issues one lookup per contiguous chunk of ids, sequentially,
// and returns the records in response order.
func (e *Enricher) Enrich(ctx context.Context, ids []string) ([]model.VideoRecord, error) {
	records := make([]model.VideoRecord, 0, len(ids))
	for start, batch := 0, 1; start < len(ids); start, batch = start+e.batchSize, batch+1 {
		end := min(start+e.batchSize, len(ids))

		found, err := e.source.ListVideos(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to list videos (batch %d): %w", batch, err)
		}
		records = append(records, found...)

		logger.GetLogger().WithFields(log.Fields{
			"batch":     batch,
			"requested": end,
			"of":        len(ids),
			"records":   len(records),
		}).Info("Fetched video batch")
	}
	return records, nil
}
