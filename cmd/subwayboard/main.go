package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subwayboard/internal/arrivals"
	"subwayboard/internal/board"
	"subwayboard/internal/config"
	"subwayboard/internal/display"
	"subwayboard/internal/gtfs"
	"subwayboard/internal/realtime"
	"subwayboard/internal/server"
	"subwayboard/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI flags
	importOnly := flag.Bool("import-gtfs", false, "Download and import static GTFS stops, then exit")
	flag.StringVar(&cfg.Stop, "stop", cfg.Stop, "Station code (first 3 characters of the stop id)")
	flag.IntVar(&cfg.MaxTimes, "max-times", cfg.MaxTimes, "Arrivals shown per direction")
	flag.DurationVar(&cfg.PollInterval, "interval", cfg.PollInterval, "Feed poll interval")
	flag.IntVar(&cfg.MaxPolls, "max-polls", cfg.MaxPolls, "Stop after this many polls (0 = unlimited)")
	flag.DurationVar(&cfg.RunFor, "run-for", cfg.RunFor, "Stop after this much wall time (0 = unlimited)")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "Web board port (0 = disabled)")
	flag.BoolVar(&cfg.Panel, "panel", cfg.Panel, "Draw the text panel on stdout")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite path for static stops (empty = disabled)")
	flag.Parse()
	cfg.ImportGTFS = *importOnly

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Context cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	station := cfg.StationName
	if cfg.StaticEnabled() {
		name, err := loadStation(ctx, cfg, logger)
		if err != nil {
			logger.Error("station check failed", "stop", cfg.Stop, "error", err)
			os.Exit(1)
		}
		if name != "" {
			station = name
		}
	}
	if cfg.ImportGTFS {
		return
	}

	fetcher := realtime.NewFetcher(cfg.FeedURL, cfg.APIKey, cfg.RequestTimeout, logger)
	if !fetcher.Supports(cfg.Line) {
		logger.Error("line not supported", "line", cfg.Line, "supported", realtime.LineG)
		os.Exit(1)
	}

	pipeline := board.NewPipeline(fetcher, cfg.Line, cfg.Stop,
		arrivals.NewFormatter(cfg.MaxTimes, cfg.ImminentText),
		board.Labels{Station: station, North: cfg.NorthLabel, South: cfg.SouthLabel},
	)

	renderers := []board.Renderer{display.NewLogRenderer(logger)}
	if cfg.Panel {
		renderers = append(renderers, display.NewPanelRenderer(os.Stdout, cfg.PanelWidth, true))
	}

	store := board.NewStore()
	runner := board.NewRunner(pipeline, store, board.Schedule{
		Interval: cfg.PollInterval,
		Timeout:  cfg.RequestTimeout,
		MaxPolls: cfg.MaxPolls,
		RunFor:   cfg.RunFor,
	}, logger, renderers...)

	if cfg.Port > 0 {
		srv := server.New(cfg, store, logger)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				logger.Error("server error", "error", err)
				stop()
			}
		}()
	}

	logger.Info("board starting",
		"line", cfg.Line,
		"stop", cfg.Stop,
		"station", station,
		"interval", cfg.PollInterval,
		"max_polls", cfg.MaxPolls,
		"run_for", cfg.RunFor,
	)

	if err := runner.Run(ctx); err != nil {
		var lineErr *realtime.UnsupportedLineError
		if errors.As(err, &lineErr) {
			logger.Error("unsupported line", "line", lineErr.Line)
		} else {
			logger.Error("board stopped", "error", err)
		}
		os.Exit(1)
	}
	logger.Info("board stopped")
}

// loadStation opens the static stops database, importing it when empty or
// forced, and resolves the configured station's display name. Once stops are
// loaded, a station without both a northbound and a southbound platform is an
// error. Other failures are logged and leave the configured name in place.
func loadStation(ctx context.Context, cfg *config.Config, logger *slog.Logger) (string, error) {
	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return "", nil
	}
	defer db.Close()

	downloader := gtfs.NewDownloader(cfg.GTFSURL, cfg.GTFSDir, logger)
	scheduler := gtfs.NewScheduler(downloader, db, logger)

	importCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	if cfg.ImportGTFS {
		logger.Info("force importing GTFS stops")
		if err := scheduler.Update(importCtx); err != nil {
			return "", fmt.Errorf("GTFS import: %w", err)
		}
	} else if err := scheduler.EnsureData(importCtx); err != nil {
		logger.Warn("static GTFS unavailable, using configured station name", "error", err)
	} else if err := scheduler.CheckAndUpdate(importCtx); err != nil {
		logger.Warn("GTFS update check failed", "error", err)
	}

	if db.HasData(ctx) {
		platforms, err := db.PlatformIDs(ctx, cfg.Stop)
		if err != nil {
			logger.Warn("platform lookup failed", "error", err)
		} else if missing := arrivals.MissingDirections(cfg.Stop, platforms); len(missing) > 0 {
			return "", fmt.Errorf("station %s has no %v platform in static GTFS (platforms %v)",
				cfg.Stop, missing, platforms)
		}
	}

	name, err := db.StopName(ctx, cfg.Stop)
	if err != nil {
		logger.Warn("station lookup failed", "error", err)
		return "", nil
	}
	return name, nil
}
