package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"playlist-exporter/domain/apperror"
	"playlist-exporter/domain/model"
	"playlist-exporter/infrastructure/cache"
	youtubeclient "playlist-exporter/infrastructure/clients/youtube"
	"playlist-exporter/infrastructure/configuration"
	"playlist-exporter/infrastructure/httpcache"
	"playlist-exporter/infrastructure/logger"
	"playlist-exporter/infrastructure/metrics"
	"playlist-exporter/infrastructure/persistence"
	"playlist-exporter/infrastructure/pubsub"
	"playlist-exporter/infrastructure/servicebus"
	httpHandler "playlist-exporter/interfaces/http"
	"playlist-exporter/server"
	"playlist-exporter/usecase"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const (
	exitOK = iota
	exitExportFailed
	exitServerFailed
)

const usage = `Usage: playlist-exporter [flags] [command]

Commands:
  export   fetch the playlist and write the CSV file (default)
  serve    serve CSV downloads over HTTP
  history  print recent export runs

Flags:
`

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
		os.Exit(exitExportFailed)
	}
}

func main() {
	defer recoverPanic()
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("playlist-exporter", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	configuration.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitExportFailed
	}
	command := fs.Arg(0)
	if command == "" {
		command = "export"
	}

	// Load env from files (non-destructive; OS env still has precedence)
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); len(loaded) > 0 {
		logger.GetLogger().WithField("files", loaded).Info("Loaded env files")
	}

	v := configuration.NewViper()
	if err := configuration.BindFlags(v, fs); err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid flags")
		return exitExportFailed
	}
	cfg, err := configuration.LoadConfig(v)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to load configuration")
		return exitExportFailed
	}
	if err := logger.Configure(cfg.Logger.Format, cfg.Logger.Level); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Invalid logger configuration, keeping defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "export":
		return runExport(ctx, cfg)
	case "serve":
		return runServe(ctx, cfg)
	case "history":
		return runHistory(ctx, cfg, os.Stdout)
	default:
		logger.GetLogger().WithField("command", command).Error("Unknown command")
		fs.Usage()
		return exitExportFailed
	}
}

func runExport(ctx context.Context, cfg *configuration.Config) int {
	if err := cfg.ValidateExport(true); err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid configuration")
		return exitExportFailed
	}

	deps, err := initiateDependencies(ctx, cfg, false)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Initialization failed")
		return exitExportFailed
	}
	defer deps.close()

	logger.GetLogger().WithFields(map[string]interface{}{
		"playlistId": cfg.Export.PlaylistID,
		"output":     cfg.Export.OutputPath,
		"pageSize":   cfg.Export.PageSize,
		"batchSize":  cfg.Export.BatchSize,
	}).Info("Starting export")

	result, err := deps.exportUseCase.ExportToFile(ctx, cfg.Export.PlaylistID, cfg.Export.OutputPath)
	if err != nil {
		fields := map[string]interface{}{"error": err}
		if upstream, ok := apperror.IsUpstream(err); ok {
			fields["code"] = upstream.Code
		}
		logger.GetLogger().WithFields(fields).Error("Export failed")
		return exitExportFailed
	}

	fmt.Printf("Wrote %d videos to %s\n", result.RowCount, cfg.Export.OutputPath)
	if result.Ingest != nil {
		fmt.Printf("Stored %d new videos, skipped %d existing, %d errors\n",
			result.Ingest.Inserted, result.Ingest.DuplicatesSkipped, result.Ingest.Errors)
	}
	return exitOK
}

func runServe(ctx context.Context, cfg *configuration.Config) int {
	if err := cfg.ValidateExport(false); err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid configuration")
		return exitExportFailed
	}

	deps, err := initiateDependencies(ctx, cfg, true)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Initialization failed")
		return exitExportFailed
	}
	defer deps.close()

	router := server.InitiateRouter(httpHandler.NewExportHandler(deps.exportUseCase), deps.metrics, cfg.App.AllowOrigins)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	logger.GetLogger().WithFields(map[string]interface{}{"port": cfg.App.Port}).Info("Starting application")
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.GetLogger().Info("Application shutdown requested")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		return exitServerFailed
	}
	return exitOK
}

func runHistory(ctx context.Context, cfg *configuration.Config, out io.Writer) int {
	db, err := persistence.NewDB(ctx, cfg.Database)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		return exitExportFailed
	}
	if db == nil {
		logger.GetLogger().Error(apperror.ErrStoreDisabled.Error())
		return exitExportFailed
	}
	defer db.Close()

	if err := persistence.EnsureSchema(db, cfg.Database.Driver); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring schema")
		return exitExportFailed
	}
	runs, err := persistence.NewScraperRunRepository(db).ListRecent(ctx, 0)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to list runs")
		return exitExportFailed
	}
	if err := printRuns(out, runs); err != nil {
		return exitExportFailed
	}
	return exitOK
}

func printRuns(out io.Writer, runs []model.ScraperRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No export runs recorded.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tPLAYLIST\tSTATUS\tROWS\tNEW\tSKIPPED\tERROR")
	for _, r := range runs {
		errMsg := ""
		if r.ErrorMessage != nil {
			errMsg = *r.ErrorMessage
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID, r.RunStartedAt.Local().Format(time.DateTime), r.PlaylistID, r.Status,
			r.TotalVideosInCSV, r.NewVideosCount, r.ExistingVideosSkipped, errMsg)
	}
	return w.Flush()
}

type dependencies struct {
	exportUseCase *usecase.ExportUseCase
	metrics       *metrics.Metrics
	closers       []func() error
}

func (d *dependencies) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while closing resource")
		}
	}
}

// initiateDependencies wires the export pipeline. Optional backends that are not configured or
// not reachable are skipped with a warning.
func initiateDependencies(ctx context.Context, cfg *configuration.Config, serving bool) (*dependencies, error) {
	deps := &dependencies{}

	var base http.RoundTripper
	if cfg.Cache.Path != "" {
		storage, err := httpcache.Open(cfg.Cache.Path)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Response cache not available - continuing without it")
		} else {
			deps.closers = append(deps.closers, storage.Close)
			base = httpcache.NewTransport(http.DefaultTransport, storage, cfg.Cache.MaxAge)
			logger.GetLogger().WithField("path", cfg.Cache.Path).Info("Response cache enabled")
		}
	}

	source, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:      cfg.Export.APIKey,
		AccessToken: cfg.Export.AccessToken,
		Endpoint:    cfg.Export.Endpoint,
		Transport:   base,
	})
	if err != nil {
		deps.close()
		return nil, err
	}

	exportUseCase := usecase.NewExportUseCase(
		usecase.NewPaginator(source, cfg.Export.PageSize),
		usecase.NewEnricher(source, cfg.Export.BatchSize),
	)
	deps.exportUseCase = exportUseCase

	db, err := initiateDatabase(ctx, cfg.Database)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Database not available - continuing without run history")
	} else if db != nil {
		deps.closers = append(deps.closers, db.Close)
		exportUseCase.WithRunStore(persistence.NewScraperRunRepository(db))
		if cfg.Export.Ingest {
			exportUseCase.WithIngest(usecase.NewIngestUseCase(persistence.NewVideoRepository(db)))
		}
	}
	if cfg.Export.Ingest && db == nil {
		logger.GetLogger().Warn("Ingest requested but no database configured")
	}

	pubSubClient, err := pubsub.NewClient(ctx, cfg.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without run events")
	} else if pubSubClient != nil {
		deps.closers = append(deps.closers, pubSubClient.Close)
		exportUseCase.WithNotifier(pubsub.NewRunPublisher(pubSubClient, cfg.Pubsub.Topic))
	}

	azServiceBusClient, err := servicebus.NewClient(cfg.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus features")
	} else if azServiceBusClient != nil {
		deps.closers = append(deps.closers, func() error { return azServiceBusClient.Close(context.Background()) })
		exportUseCase.WithNotifier(servicebus.NewRunSender(azServiceBusClient, cfg.ServiceBus.Queue))
	}

	if serving {
		deps.metrics = metrics.New()
		exportUseCase.WithMetrics(deps.metrics)

		if redisClient := cache.NewRedisClient(ctx, cfg.RedisClient); redisClient != nil {
			deps.closers = append(deps.closers, redisClient.Close)
			exportUseCase.WithCache(cache.NewExportCache(redisClient, cfg.RedisClient.TTL))
		}
	}

	return deps, nil
}

func initiateDatabase(ctx context.Context, cfg configuration.Database) (*sql.DB, error) {
	db, err := persistence.NewDB(ctx, cfg)
	if err != nil || db == nil {
		return nil, err
	}
	if err := persistence.EnsureSchema(db, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.GetLogger().WithField("driver", cfg.Driver).Info("Database connected.")
	return db, nil
}
