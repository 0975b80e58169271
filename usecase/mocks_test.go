package usecase_test

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stretchr/testify/mock"
	"playlist-exporter/domain/dto"
	"playlist-exporter/domain/model"
)

// MockPlaylistSource is a testify mock of the upstream API
type MockPlaylistSource struct {
	mock.Mock
}

func (m *MockPlaylistSource) ListPlaylistItems(ctx context.Context, playlistID, pageToken string, pageSize int64) (*dto.PlaylistItemPage, error) {
	args := m.Called(ctx, playlistID, pageToken, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PlaylistItemPage), args.Error(1)
}

func (m *MockPlaylistSource) ListVideos(ctx context.Context, videoIDs []string) ([]model.VideoRecord, error) {
	args := m.Called(ctx, videoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoRecord), args.Error(1)
}

// fakePlaylist serves a deterministic playlist split into pages of the given sizes
type fakePlaylist struct {
	pages      []int
	pageErr    map[int]error // keyed by 1-based page number
	batchErr   map[int]error // keyed by 1-based batch number
	omitEvery  int           // drop every n-th video from lookups when > 0
	pageCalls  int
	batchSizes []int
}

func newFakePlaylist(pages ...int) *fakePlaylist {
	return &fakePlaylist{pages: pages}
}

func (f *fakePlaylist) ListPlaylistItems(_ context.Context, _ string, pageToken string, _ int64) (*dto.PlaylistItemPage, error) {
	f.pageCalls++
	page := 0
	if pageToken != "" {
		page, _ = strconv.Atoi(pageToken)
	}
	if err := f.pageErr[page+1]; err != nil {
		return nil, err
	}

	offset := 0
	for _, n := range f.pages[:page] {
		offset += n
	}
	res := &dto.PlaylistItemPage{Items: []model.PlaylistItemRef{}}
	if page < len(f.pages) {
		for i := 0; i < f.pages[page]; i++ {
			res.Items = append(res.Items, model.PlaylistItemRef{VideoID: fmt.Sprintf("vid%03d", offset+i)})
		}
	}
	if page+1 < len(f.pages) {
		res.NextPageToken = strconv.Itoa(page + 1)
	}
	return res, nil
}

func (f *fakePlaylist) ListVideos(_ context.Context, ids []string) ([]model.VideoRecord, error) {
	f.batchSizes = append(f.batchSizes, len(ids))
	if err := f.batchErr[len(f.batchSizes)]; err != nil {
		return nil, err
	}
	out := make([]model.VideoRecord, 0, len(ids))
	for i, id := range ids {
		if f.omitEvery > 0 && (i+1)%f.omitEvery == 0 {
			continue
		}
		out = append(out, model.VideoRecord{
			VideoID:      id,
			Title:        "Title " + id,
			Description:  "About " + id,
			DurationCode: "PT4M13S",
			PublishedAt:  "2024-05-01T10:00:00Z",
			LikeCount:    "1",
			ViewCount:    "10",
			CommentCount: "0",
		})
	}
	return out, nil
}

type MockVideoStore struct {
	mock.Mock
}

func (m *MockVideoStore) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockVideoStore) InsertVideo(ctx context.Context, video *model.StoredVideo) (bool, error) {
	args := m.Called(ctx, video)
	return args.Bool(0), args.Error(1)
}

type MockRunStore struct {
	mock.Mock
}

func (m *MockRunStore) Create(ctx context.Context, run *model.ScraperRun) (int64, error) {
	args := m.Called(ctx, run)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockRunStore) ListRecent(ctx context.Context, limit int) ([]model.ScraperRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScraperRun), args.Error(1)
}

type MockExportCache struct {
	mock.Mock
}

func (m *MockExportCache) Get(ctx context.Context, playlistID string) ([]byte, bool, error) {
	args := m.Called(ctx, playlistID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockExportCache) Set(ctx context.Context, playlistID string, payload []byte) error {
	args := m.Called(ctx, playlistID, payload)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event dto.RunEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) ObserveExport(status string, rows int, elapsed time.Duration) {
	m.Called(status, rows, elapsed)
}
