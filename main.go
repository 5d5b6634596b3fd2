package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"cctvinsight/internal/analysis"
	"cctvinsight/internal/charts"
	"cctvinsight/internal/config"
	"cctvinsight/internal/db"
	"cctvinsight/internal/events"
	"cctvinsight/internal/http/handlers"
	appmw "cctvinsight/internal/http/middleware"
	"cctvinsight/internal/logging"
	"cctvinsight/internal/source"
	ui "cctvinsight/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("cctvinsight stopped")
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	handlers.InitPrometheusMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := acquire(ctx, cfg)
	if err != nil {
		return err
	}

	records, err := events.LoadFile(res.Path)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	log.Info().Int("records", len(records)).Str("path", res.Path).Msg("event log loaded")

	tables := analysis.Build(records)
	handlers.ObserveTables(tables)
	figs := charts.Build(tables)

	loadedAt := time.Now()
	if cfg.ArchiveEnabled() {
		if err := archive(cfg, res, records, tables, loadedAt); err != nil {
			return err
		}
	}

	page, err := handlers.RenderDashboard(cfg, tables, figs, loadedAt)
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	return serve(ctx, cfg, routes(cfg, page, tables, figs))
}

// acquire downloads the event log to the configured output path.
func acquire(ctx context.Context, cfg *config.Config) (*source.Result, error) {
	url := cfg.Source.URL
	if url == "" {
		url = source.DriveURL(cfg.Source.FileID)
	}

	client := source.NewClient(cfg.Source.Timeout, cfg.Source.UserAgent)
	res, err := client.Download(ctx, url, cfg.Source.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	handlers.ObserveDownload(res.Bytes, res.Duration)

	log.Info().
		Str("url", res.URL).
		Str("path", res.Path).
		Int64("bytes", res.Bytes).
		Dur("took", res.Duration).
		Msg("event log downloaded")
	return res, nil
}

// archive stores the load in the database and prunes expired runs.
func archive(cfg *config.Config, res *source.Result, records []events.Record, tables analysis.Tables, at time.Time) error {
	sqlDB, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if conn, err := sqlDB.DB(); err == nil {
		defer conn.Close()
	}

	run := db.NewLoadRun(res.URL, res.Bytes, tables, at)
	if err := db.SaveRun(sqlDB, run, records, tables); err != nil {
		return fmt.Errorf("archive load: %w", err)
	}

	pruned, err := db.PruneRuns(sqlDB, cfg.Database.RetentionDays, at)
	if err != nil {
		return fmt.Errorf("prune archive: %w", err)
	}
	log.Info().Str("run_id", run.ID).Int64("pruned", pruned).Msg("load archived")
	return nil
}

func routes(cfg *config.Config, page []byte, tables analysis.Tables, figs charts.Set) fasthttp.RequestHandler {
	r := router.New()
	auth := appmw.BasicAuth(cfg)

	r.GET("/healthz", handlers.Healthz)
	r.GET("/metrics", handlers.MetricsHandler())

	static := &fasthttp.FS{
		FS:             ui.StaticFS(),
		AllowEmptyRoot: true,
		PathRewrite:    fasthttp.NewPathSlashesStripper(1),
	}
	r.GET("/static/{filepath:*}", auth(static.NewRequestHandler()))
	r.GET("/", auth(handlers.Dashboard(page)))

	r.GET("/api/tables/cameras", auth(handlers.CameraTable(tables)))
	r.GET("/api/tables/daily", auth(handlers.DailyTable(tables)))
	r.GET("/api/tables/hourly", auth(handlers.HourlyTable(tables)))
	r.GET("/api/figures", auth(handlers.Figures(figs)))

	return handlers.RequestLogger(r.Handler)
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, handler fasthttp.RequestHandler) error {
	srv := &fasthttp.Server{
		Handler:      handler,
		Name:         "cctvinsight",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("dashboard listening")
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
