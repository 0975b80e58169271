package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"playlist-exporter/domain/apperror"
	"playlist-exporter/domain/dto"
	"playlist-exporter/domain/model"
	"playlist-exporter/domain/repository"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var (
	playlistItemParts = []string{"snippet", "contentDetails"}
	videoParts        = []string{"snippet", "statistics", "contentDetails"}
)

// Client represents the read-only YouTube Data API client used for exports
type Client struct {
	service *youtube.Service
}

// Config represents YouTube API configuration
type Config struct {
	APIKey      string `json:"api_key"`
	AccessToken string `json:"access_token"`
	// Endpoint overrides the API base URL, e.g. for a local fake.
	Endpoint string `json:"endpoint"`
	// Transport is the base round tripper (http.DefaultTransport when nil). The response cache plugs in here.
	Transport http.RoundTripper `json:"-"`
}

// NewYouTubeClient creates a new YouTube API client.
// An API key is preferred; a pre-issued access token is sent as a bearer token otherwise.
func NewYouTubeClient(ctx context.Context, config *Config) (repository.IPlaylistSource, error) {
	base := config.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var rt http.RoundTripper
	switch {
	case config.APIKey != "":
		rt = &transport.APIKey{Key: config.APIKey, Transport: base}
	case config.AccessToken != "":
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.AccessToken, TokenType: "Bearer"}),
			Base:   base,
		}
	default:
		return nil, apperror.ErrMissingCredential
	}

	opts := []option.ClientOption{option.WithHTTPClient(&http.Client{Transport: rt})}
	if config.Endpoint != "" {
		endpoint := config.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// ListPlaylistItems fetches one page of a playlist
func (c *Client) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int64) (*dto.PlaylistItemPage, error) {
	call := c.service.PlaylistItems.List(playlistItemParts).
		PlaylistId(playlistID).
		MaxResults(pageSize)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, mapError("list playlist items", err)
	}

	page := &dto.PlaylistItemPage{
		Items:         make([]model.PlaylistItemRef, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
	}
	for _, item := range response.Items {
		page.Items = append(page.Items, model.PlaylistItemRef{VideoID: playlistItemVideoID(item)})
	}
	return page, nil
}

// ListVideos looks up a batch of videos in a single request
func (c *Client) ListVideos(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error) {
	response, err := c.service.Videos.List(videoParts).
		Id(strings.Join(videoIDs, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError("list videos", err)
	}

	records := make([]model.VideoRecord, 0, len(response.Items))
	for _, video := range response.Items {
		records = append(records, convertToVideoRecord(video))
	}
	return records, nil
}

func playlistItemVideoID(item *youtube.PlaylistItem) string {
	if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
		return item.ContentDetails.VideoId
	}
	if item.Snippet != nil && item.Snippet.ResourceId != nil {
		return item.Snippet.ResourceId.VideoId
	}
	return ""
}

// convertToVideoRecord converts YouTube API video to our model.
// Missing statistics become "0"; other missing fields stay empty.
func convertToVideoRecord(video *youtube.Video) model.VideoRecord {
	record := model.VideoRecord{
		VideoID:      video.Id,
		LikeCount:    "0",
		ViewCount:    "0",
		CommentCount: "0",
	}

	if video.Snippet != nil {
		record.Title = video.Snippet.Title
		record.Description = video.Snippet.Description
		record.PublishedAt = video.Snippet.PublishedAt
	}
	if video.ContentDetails != nil {
		record.DurationCode = video.ContentDetails.Duration
	}
	if video.Statistics != nil {
		record.LikeCount = strconv.FormatUint(video.Statistics.LikeCount, 10)
		record.ViewCount = strconv.FormatUint(video.Statistics.ViewCount, 10)
		record.CommentCount = strconv.FormatUint(video.Statistics.CommentCount, 10)
	}

	return record
}

// mapError separates API error payloads from transport failures
func mapError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.Code)
		}
		return &apperror.UpstreamError{Code: apiErr.Code, Message: message}
	}
	return &apperror.TransportError{Op: op, Err: err}
}
