package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"playlist-exporter/domain/apperror"
	"playlist-exporter/domain/dto"
	"playlist-exporter/domain/model"
	"playlist-exporter/infrastructure/logger"
	"playlist-exporter/usecase"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return &buf
}

func newExport(source *fakePlaylist) *usecase.ExportUseCase {
	return usecase.NewExportUseCase(usecase.NewPaginator(source, 50), usecase.NewEnricher(source, 50))
}

func TestExport_Scenario120Items(t *testing.T) {
	captureLogs(t)
	source := newFakePlaylist(50, 50, 20)
	path := filepath.Join(t.TempDir(), "youtube_playlist.csv")

	result, err := newExport(source).ExportToFile(context.Background(), "PL1", path)

	require.NoError(t, err)
	assert.Equal(t, 3, source.pageCalls)
	assert.Equal(t, []int{50, 50, 20}, source.batchSizes)
	assert.Equal(t, 120, result.ItemCount)
	assert.Equal(t, 120, result.RowCount)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, result.CSV, data)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Len(t, lines, 121)
	assert.Equal(t, "title,video_description,video_length,video_published_datetime,video_likes,video_views,number_comments", lines[0])
	assert.Equal(t, `"Title vid000","About vid000",PT4M13S,2024-05-01T10:00:00Z,1,10,0`, lines[1])
	assert.Equal(t, `"Title vid119","About vid119",PT4M13S,2024-05-01T10:00:00Z,1,10,0`, lines[120])
}

func TestExport_EmptyPlaylistProducesHeaderOnly(t *testing.T) {
	captureLogs(t)
	source := newFakePlaylist()

	result, err := newExport(source).Export(context.Background(), "PL1")

	require.NoError(t, err)
	assert.Equal(t, 1, source.pageCalls)
	assert.Empty(t, source.batchSizes)
	assert.Equal(t, "title,video_description,video_length,video_published_datetime,video_likes,video_views,number_comments\n", string(result.CSV))
}

func TestExport_ErrorLeavesNoArtifact(t *testing.T) {
	for name, configure := range map[string]func(*fakePlaylist){
		"page error":  func(f *fakePlaylist) { f.pageErr = map[int]error{3: &apperror.UpstreamError{Code: 403, Message: "quota exceeded for project"}} },
		"batch error": func(f *fakePlaylist) { f.batchErr = map[int]error{3: &apperror.UpstreamError{Code: 403, Message: "quota exceeded for project"}} },
	} {
		t.Run(name, func(t *testing.T) {
			logs := captureLogs(t)
			source := newFakePlaylist(50, 50, 20)
			configure(source)
			path := filepath.Join(t.TempDir(), "out", "youtube_playlist.csv")

			result, err := newExport(source).ExportToFile(context.Background(), "PL1", path)

			assert.Nil(t, result)
			require.Error(t, err)
			assert.Equal(t, 1, strings.Count(err.Error(), "quota exceeded for project"))
			assert.NotContains(t, logs.String(), "quota exceeded for project", "the caller reports the error")
			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestExport_RejectsEmptyPlaylistID(t *testing.T) {
	runs := new(MockRunStore)
	source := newFakePlaylist(1)

	_, err := newExport(source).WithRunStore(runs).Export(context.Background(), "")

	assert.ErrorIs(t, err, apperror.ErrMissingPlaylistID)
	assert.Zero(t, source.pageCalls)
	runs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExport_RecordsRunNotifiesAndObserves(t *testing.T) {
	captureLogs(t)
	source := newFakePlaylist(3)
	runs := new(MockRunStore)
	notifier := new(MockNotifier)
	metrics := new(MockMetrics)
	store := new(MockVideoStore)
	path := filepath.Join(t.TempDir(), "runs.csv")

	store.On("ExistingIDs", mock.Anything).Return(map[string]struct{}{"vid001": {}}, nil).Once()
	store.On("InsertVideo", mock.Anything, mock.AnythingOfType("*model.StoredVideo")).Return(true, nil).Twice()
	runs.On("Create", mock.Anything, mock.MatchedBy(func(r *model.ScraperRun) bool {
		return r.PlaylistID == "PL1" && r.Status == model.RunStatusSuccess && r.TotalVideosInCSV == 3 &&
			r.NewVideosCount == 2 && r.ExistingVideosSkipped == 1 && r.CSVPath == path && r.ErrorMessage == nil &&
			!r.RunCompletedAt.Before(r.RunStartedAt)
	})).Return(1, nil).Once()
	notifier.On("Notify", mock.Anything, dto.RunEvent{PlaylistID: "PL1", Status: model.RunStatusSuccess, RowCount: 3}).Return(nil).Once()
	metrics.On("ObserveExport", model.RunStatusSuccess, 3, mock.AnythingOfType("time.Duration")).Once()

	result, err := newExport(source).
		WithRunStore(runs).
		WithIngest(usecase.NewIngestUseCase(store)).
		WithNotifier(notifier).
		WithMetrics(metrics).
		ExportToFile(context.Background(), "PL1", path)

	require.NoError(t, err)
	assert.Equal(t, &dto.IngestStats{Total: 3, Inserted: 2, DuplicatesSkipped: 1}, result.Ingest)
	runs.AssertExpectations(t)
	notifier.AssertExpectations(t)
	metrics.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestExport_FailedRunIsRecorded(t *testing.T) {
	captureLogs(t)
	source := newFakePlaylist(50, 10)
	source.batchErr = map[int]error{1: &apperror.TransportError{Op: "list videos", Err: errors.New("connection refused")}}
	runs := new(MockRunStore)
	notifier := new(MockNotifier)
	metrics := new(MockMetrics)

	runs.On("Create", mock.Anything, mock.MatchedBy(func(r *model.ScraperRun) bool {
		return r.Status == model.RunStatusFailed && r.ErrorMessage != nil &&
			strings.Contains(*r.ErrorMessage, "connection refused") && r.CSVPath == ""
	})).Return(0, errors.New("db down")).Once()
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e dto.RunEvent) bool {
		return e.Status == model.RunStatusFailed && strings.Contains(e.Error, "connection refused")
	})).Return(errors.New("broker down")).Once()
	metrics.On("ObserveExport", model.RunStatusFailed, 0, mock.AnythingOfType("time.Duration")).Once()

	_, err := newExport(source).WithRunStore(runs).WithNotifier(notifier).WithMetrics(metrics).
		ExportToFile(context.Background(), "PL1", filepath.Join(t.TempDir(), "x.csv"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	runs.AssertExpectations(t)
	notifier.AssertExpectations(t)
	metrics.AssertExpectations(t)
}

func TestExport_CacheAside(t *testing.T) {
	captureLogs(t)
	cached := []byte("title,video_description,video_length,video_published_datetime,video_likes,video_views,number_comments\n\"a\",\"b\",PT1S,2024-01-01T00:00:00Z,1,2,3\n")

	t.Run("hit skips the API", func(t *testing.T) {
		source := newFakePlaylist(5)
		cache := new(MockExportCache)
		cache.On("Get", mock.Anything, "PL1").Return(cached, true, nil).Once()

		result, err := newExport(source).WithCache(cache).Export(context.Background(), "PL1")

		require.NoError(t, err)
		assert.True(t, result.Cached)
		assert.Equal(t, 1, result.RowCount)
		assert.Equal(t, cached, result.CSV)
		assert.Zero(t, source.pageCalls)
		cache.AssertExpectations(t)
	})

	t.Run("miss stores the export", func(t *testing.T) {
		source := newFakePlaylist(5)
		cache := new(MockExportCache)
		cache.On("Get", mock.Anything, "PL1").Return(nil, false, nil).Once()
		cache.On("Set", mock.Anything, "PL1", mock.AnythingOfType("[]uint8")).Return(nil).Once()

		result, err := newExport(source).WithCache(cache).Export(context.Background(), "PL1")

		require.NoError(t, err)
		assert.False(t, result.Cached)
		assert.Equal(t, 5, result.RowCount)
		cache.AssertExpectations(t)
	})

	t.Run("cache errors fall through", func(t *testing.T) {
		source := newFakePlaylist(2)
		cache := new(MockExportCache)
		cache.On("Get", mock.Anything, "PL1").Return(nil, false, errors.New("redis down")).Once()
		cache.On("Set", mock.Anything, "PL1", mock.Anything).Return(errors.New("redis down")).Once()

		result, err := newExport(source).WithCache(cache).Export(context.Background(), "PL1")

		require.NoError(t, err)
		assert.Equal(t, 2, result.RowCount)
	})
}

func TestExport_ListRuns(t *testing.T) {
	_, err := newExport(newFakePlaylist()).ListRuns(context.Background(), 5)
	assert.ErrorIs(t, err, apperror.ErrStoreDisabled)

	runs := new(MockRunStore)
	want := []model.ScraperRun{{ID: 2, PlaylistID: "PL1"}, {ID: 1, PlaylistID: "PL1"}}
	runs.On("ListRecent", mock.Anything, 5).Return(want, nil).Once()

	got, err := newExport(newFakePlaylist()).WithRunStore(runs).ListRuns(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
