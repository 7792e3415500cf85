package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/andresuchdata/shopmetrics/internal/cache"
	"github.com/andresuchdata/shopmetrics/internal/config"
	"github.com/andresuchdata/shopmetrics/internal/domain"
	"github.com/andresuchdata/shopmetrics/internal/engine"
	"github.com/andresuchdata/shopmetrics/internal/export"
	"github.com/andresuchdata/shopmetrics/internal/feeds"
	"github.com/andresuchdata/shopmetrics/internal/repository"
	"github.com/andresuchdata/shopmetrics/internal/storage"
	"github.com/andresuchdata/shopmetrics/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	app := &cli.App{
		Name:  "engine",
		Usage: "Daily product performance aggregation",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Join the daily feeds, compute metrics and replace the date's output",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "date",
						Usage:   "Snapshot date in YYYY-MM-DD format",
						Value:   time.Now().UTC().Format("2006-01-02"),
						EnvVars: []string{"ENGINE_DATE"},
					},
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing the feed CSVs",
						Value:   cfg.Engine.DataDir,
						EnvVars: []string{"ENGINE_DATA_DIR"},
					},
					&cli.StringFlag{
						Name:    "policy-file",
						Usage:   "Category policy YAML file",
						Value:   cfg.Engine.PolicyFile,
						EnvVars: []string{"ENGINE_POLICY_FILE"},
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Usage:   "Directory for CSV export artifacts",
						Value:   cfg.Engine.OutputDir,
						EnvVars: []string{"ENGINE_OUTPUT_DIR"},
					},
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Concurrent record builders",
						Value:   cfg.Engine.Workers,
						EnvVars: []string{"ENGINE_WORKERS"},
					},
					&cli.BoolFlag{
						Name:    "upload",
						Usage:   "Publish export artifacts to object storage",
						Value:   cfg.Export.Enabled,
						EnvVars: []string{"EXPORT_ENABLED"},
					},
				},
				Action: runEngine,
			},
			{
				Name:  "sync-feeds",
				Usage: "Download the latest feed CSVs from the shared Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "folder-id",
						Usage:   "Drive folder holding the feed CSVs",
						Value:   cfg.Feeds.DriveFolderID,
						EnvVars: []string{"FEEDS_DRIVE_FOLDER_ID"},
					},
					&cli.StringFlag{
						Name:    "download-dir",
						Usage:   "Local directory to sync feeds into",
						Value:   cfg.Feeds.DownloadDir,
						EnvVars: []string{"FEEDS_DOWNLOAD_DIR"},
					},
				},
				Action: syncFeeds,
			},
			{
				Name:  "runs",
				Usage: "List recent engine runs",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list",
						Value: 20,
					},
				},
				Action: listRuns,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("Engine command failed")
	}
}

func runEngine(c *cli.Context) error {
	cfg := config.Load()

	date, err := time.Parse("2006-01-02", c.String("date"))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", c.String("date"), err)
	}

	// Policy problems are configuration errors: abort before touching data.
	policies, err := domain.LoadPolicyFile(c.String("policy-file"))
	if err != nil {
		return fmt.Errorf("policy load failed: %w", err)
	}

	engineCfg := engine.Config{
		VolumeWindowDays:  cfg.Engine.VolumeWindowDays,
		RevenueWindowDays: cfg.Engine.RevenueWindowDays,
		SafetyStockDays:   cfg.Engine.SafetyStockDays,
		Workers:           c.Int("workers"),
	}

	eng, err := engine.New(engineCfg, policies)
	if err != nil {
		return fmt.Errorf("engine init failed: %w", err)
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ctx := c.Context
	runs := repository.NewRunRepository(db)

	// One run row per (engine, date): a rerun resets and reuses the
	// existing row instead of stacking a new one.
	prev, err := runs.GetRunByDate(ctx, eng.Name(), date)
	if err != nil {
		return fmt.Errorf("failed to look up previous run: %w", err)
	}
	run := engine.NewRunAttempt(prev, eng.Name(), date, time.Now().UTC())
	if run.ID == 0 {
		if err := runs.CreateRun(ctx, run); err != nil {
			return fmt.Errorf("failed to create run record: %w", err)
		}
	} else {
		if err := runs.UpdateRun(ctx, run); err != nil {
			return fmt.Errorf("failed to reset run record: %w", err)
		}
	}

	result, err := executeRun(ctx, c, eng, db, date)

	now := time.Now().UTC()
	run.CompletedAt = &now
	if err != nil {
		run.Status = engine.RunFailed
		run.ErrorMessage = err.Error()
	} else {
		run.Status = engine.RunCompleted
		run.TotalRecords = len(result.Records)
		run.Violations = result.Quality.Count()
	}
	if updateErr := runs.UpdateRun(ctx, run); updateErr != nil {
		logger.Log.Error().Err(updateErr).Msg("Failed to update run record")
	}

	return err
}

func executeRun(ctx context.Context, c *cli.Context, eng *engine.Engine, db *sql.DB, date time.Time) (*engine.Result, error) {
	facts, err := feeds.LoadFacts(c.String("data-dir"), date)
	if err != nil {
		return nil, fmt.Errorf("feed load failed: %w", err)
	}

	result, err := eng.Run(ctx, date, facts)
	if err != nil {
		return nil, err
	}

	writer := repository.NewRecordWriter(db)
	if err := writer.ReplaceDay(ctx, date, result.Records); err != nil {
		return nil, fmt.Errorf("daily write failed: %w", err)
	}
	invalidateReadCache(ctx)

	recordsPath, qualityPath, err := export.ExportDay(c.String("output-dir"), result)
	if err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	logger.Log.Info().
		Str("records", recordsPath).
		Str("quality", qualityPath).
		Msg("Export artifacts written")

	if c.Bool("upload") {
		if err := publishArtifacts(ctx, date, recordsPath, qualityPath); err != nil {
			return nil, fmt.Errorf("publish failed: %w", err)
		}
	}

	return result, nil
}

// invalidateReadCache drops every cached API read after a partition swap so
// the server never serves replaced rows for the rest of the TTL. Cache
// trouble never fails the run.
func invalidateReadCache(ctx context.Context) {
	readCache, err := cache.NewPerformanceCache(config.Load().Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, skipping invalidation")
		return
	}
	if err := readCache.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to invalidate read cache")
	}
}

func publishArtifacts(ctx context.Context, date time.Time, recordsPath, qualityPath string) error {
	cfg := config.Load()

	store, err := storage.NewObjectStore(cfg.Export)
	if err != nil {
		return err
	}

	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	prefix := date.Format("2006/01/02")
	if err := store.UploadFile(ctx, prefix+"/product_performance.csv", recordsPath); err != nil {
		return err
	}
	return store.UploadFile(ctx, prefix+"/quality_report.csv", qualityPath)
}

func listRuns(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	runs, err := repository.NewRunRepository(db).GetRecentRuns(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	for _, run := range runs {
		fmt.Printf("%-12s %-10s %-10s records=%-6d violations=%d\n",
			run.Date.Format("2006-01-02"), run.EngineName, run.Status,
			run.TotalRecords, run.Violations)
	}
	return nil
}

func syncFeeds(c *cli.Context) error {
	drive, err := feeds.NewDriveService(os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"))
	if err != nil {
		return fmt.Errorf("failed to initialize Drive service: %w", err)
	}

	downloader := feeds.NewDownloader(drive, c.String("download-dir"))
	_, err = downloader.DownloadFolderCSV(c.String("folder-id"))
	return err
}
