package repository

import (
	"context"

	"playlist-exporter/domain/dto"
	"playlist-exporter/domain/model"
)

// IPlaylistSource defines the upstream operations the exporter needs
type IPlaylistSource interface {
	// ListPlaylistItems returns one page of a playlist. An empty pageToken requests the first page.
	ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int64) (*dto.PlaylistItemPage, error)
	// ListVideos looks up details and statistics for a batch of video IDs in one request.
	ListVideos(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error)
}
