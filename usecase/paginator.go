package usecase

import (
	"context"
	"fmt"
	"strings"

	"playlist-exporter/domain/apperror"
	"playlist-exporter/domain/model"
	"playlist-exporter/domain/repository"
	"playlist-exporter/infrastructure/logger"

	log "github.com/sirupsen/logrus"
)

// MaxPageSize is the largest page or batch the API accepts
const MaxPageSize = 50

// Paginator follows continuation tokens until a playlist is exhausted
type Paginator struct {
	source   repository.IPlaylistSource
	pageSize int64
}

// NewPaginator creates a paginator; pageSize outside 1..50 falls back to 50
func NewPaginator(source repository.IPlaylistSource, pageSize int64) *Paginator {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Paginator{source: source, pageSize: pageSize}
}

// Paginate returns every item of the playlist in API order.
// Any failed page aborts the whole listing.
func (p *Paginator) Paginate(ctx context.Context, playlistID string) ([]model.PlaylistItemRef, error) {
	if strings.TrimSpace(playlistID) == "" {
		return nil, apperror.ErrMissingPlaylistID
	}

	items := make([]model.PlaylistItemRef, 0)
	pageToken := ""
	for page := 1; ; page++ {
		res, err := p.source.ListPlaylistItems(ctx, playlistID, pageToken, p.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list playlist items (page %d): %w", page, err)
		}
		items = append(items, res.Items...)

		logger.GetLogger().WithFields(log.Fields{
			"playlistId": playlistID,
			"page":       page,
			"total":      len(items),
		}).Info("Fetched playlist page")

		if res.NextPageToken == "" {
			return items, nil
		}
		pageToken = res.NextPageToken
	}
}
