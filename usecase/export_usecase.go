package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"playlist-exporter/domain/apperror"
	"playlist-exporter/domain/dto"
	"playlist-exporter/domain/model"
	"playlist-exporter/domain/repository"
	"playlist-exporter/infrastructure/filecsv"
	"playlist-exporter/infrastructure/logger"
	"playlist-exporter/infrastructure/utils"

	log "github.com/sirupsen/logrus"
)

const exportStatusCached = "cached"

// IExportUseCase defines the export operations used by the CLI and the HTTP layer
type IExportUseCase interface {
	// Export runs the pipeline and returns the CSV in memory. The export cache is consulted when configured.
	Export(ctx context.Context, playlistID string) (*dto.ExportResult, error)
	// ExportToFile runs the pipeline and atomically writes the CSV to path.
	ExportToFile(ctx context.Context, playlistID, path string) (*dto.ExportResult, error)
	// ListRuns returns the most recent export runs.
	ListRuns(ctx context.Context, limit int) ([]model.ScraperRun, error)
}

// ExportUseCase composes paginator, enricher and encoder. Everything set through With* is optional.
type ExportUseCase struct {
	paginator *Paginator
	enricher  *Enricher

	runs      repository.IScraperRunStore
	ingest    IIngestUseCase
	cache     repository.IExportCache
	notifiers []repository.IRunNotifier
	metrics   repository.IExportMetrics
}

func NewExportUseCase(paginator *Paginator, enricher *Enricher) *ExportUseCase {
	return &ExportUseCase{paginator: paginator, enricher: enricher}
}

// WithRunStore records every run in the export history
func (u *ExportUseCase) WithRunStore(runs repository.IScraperRunStore) *ExportUseCase {
	u.runs = runs
	return u
}

// WithIngest stores the exported videos after a successful run
func (u *ExportUseCase) WithIngest(ingest IIngestUseCase) *ExportUseCase {
	u.ingest = ingest
	return u
}

func (u *ExportUseCase) WithCache(cache repository.IExportCache) *ExportUseCase {
	u.cache = cache
	return u
}

func (u *ExportUseCase) WithNotifier(n repository.IRunNotifier) *ExportUseCase {
	u.notifiers = append(u.notifiers, n)
	return u
}

func (u *ExportUseCase) WithMetrics(m repository.IExportMetrics) *ExportUseCase {
	u.metrics = m
	return u
}

func (u *ExportUseCase) Export(ctx context.Context, playlistID string) (*dto.ExportResult, error) {
	if strings.TrimSpace(playlistID) == "" {
		return nil, apperror.ErrMissingPlaylistID
	}
	if u.cache != nil {
		if result, ok := u.fromCache(ctx, playlistID); ok {
			return result, nil
		}
	}

	result, err := u.run(ctx, playlistID, "")
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, playlistID, result.CSV); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to cache export")
		}
	}
	return result, nil
}

func (u *ExportUseCase) ExportToFile(ctx context.Context, playlistID, path string) (*dto.ExportResult, error) {
	if path == "" {
		path = filecsv.DefaultFileName
	}
	return u.run(ctx, playlistID, path)
}

func (u *ExportUseCase) ListRuns(ctx context.Context, limit int) ([]model.ScraperRun, error) {
	if u.runs == nil {
		return nil, apperror.ErrStoreDisabled
	}
	runs, err := u.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// run executes the pipeline, delivers to path when set, then records the outcome.
// Nothing is written to path unless every stage succeeded.
func (u *ExportUseCase) run(ctx context.Context, playlistID, path string) (*dto.ExportResult, error) {
	started := utils.GetCurrentTime()

	result, err := u.build(ctx, playlistID)
	if err == nil && path != "" {
		err = filecsv.WriteFileAtomic(path, result.CSV)
	}
	if err == nil && u.ingest != nil {
		stats, ingestErr := u.ingest.Ingest(ctx, result.Records)
		if ingestErr != nil {
			logger.GetLogger().WithField("error", ingestErr).Warn("Failed to ingest exported videos")
		}
		result.Ingest = stats
	}

	u.finish(ctx, playlistID, path, started, result, err)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithFields(log.Fields{
		"playlistId": playlistID,
		"rows":       result.RowCount,
		"output":     path,
	}).Info("Export completed")
	return result, nil
}

func (u *ExportUseCase) build(ctx context.Context, playlistID string) (*dto.ExportResult, error) {
	items, err := u.paginator.Paginate(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VideoID)
	}

	records, err := u.enricher.Enrich(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &dto.ExportResult{
		PlaylistID: playlistID,
		Records:    records,
		CSV:        filecsv.Encode(records),
		ItemCount:  len(items),
		RowCount:   len(records),
	}, nil
}

// finish records history, events and metrics. Failures here are logged and never change the export outcome.
func (u *ExportUseCase) finish(ctx context.Context, playlistID, path string, started time.Time, result *dto.ExportResult, exportErr error) {
	completed := utils.GetCurrentTime()
	status := model.RunStatusSuccess
	rows := 0
	event := dto.RunEvent{PlaylistID: playlistID, Status: status}
	if exportErr != nil {
		status = model.RunStatusFailed
		event.Status = status
		event.Error = exportErr.Error()
	} else {
		rows = result.RowCount
		event.RowCount = rows
	}

	if u.metrics != nil {
		u.metrics.ObserveExport(status, rows, completed.Sub(started))
	}

	// validation failures never reached the API, there is nothing to record
	if errors.Is(exportErr, apperror.ErrMissingPlaylistID) {
		return
	}

	if u.runs != nil {
		run := &model.ScraperRun{
			PlaylistID:       playlistID,
			RunStartedAt:     started,
			RunCompletedAt:   completed,
			TotalVideosInCSV: rows,
			CSVPath:          path,
			Status:           status,
		}
		if exportErr != nil {
			run.CSVPath = ""
			run.ErrorMessage = utils.StringPtr(exportErr.Error())
		} else if result.Ingest != nil {
			run.NewVideosCount = result.Ingest.Inserted
			run.ExistingVideosSkipped = result.Ingest.DuplicatesSkipped
		}
		if _, err := u.runs.Create(ctx, run); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to record export run")
		}
	}

	for _, n := range u.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to publish run event")
		}
	}
}

func (u *ExportUseCase) fromCache(ctx context.Context, playlistID string) (*dto.ExportResult, bool) {
	payload, ok, err := u.cache.Get(ctx, playlistID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Export cache lookup failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	// header plus one line per row
	rows := bytes.Count(payload, []byte("\n")) - 1
	if u.metrics != nil {
		u.metrics.ObserveExport(exportStatusCached, rows, 0)
	}
	logger.GetLogger().WithField("playlistId", playlistID).WithField("rows", rows).Info("Export served from cache")
	return &dto.ExportResult{
		PlaylistID: playlistID,
		CSV:        payload,
		RowCount:   rows,
		Cached:     true,
	}, true
}
