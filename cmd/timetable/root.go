package main

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/repository"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/config"
	"github.com/noah-isme/sma-timetable/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/logger"
	"github.com/noah-isme/sma-timetable/pkg/storage"
)

type scheduleSource interface {
	Read(ctx context.Context) (*models.Sheet, error)
	Describe() string
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "timetable",
		Short:         "Teacher timetable tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(usageError)

	flags := cmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "env file with configuration defaults")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "console", "log encoding: console or json")

	cmd.AddCommand(newBuildCmd(&envFile))
	return cmd
}

func newBuildCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Pivot a class-schedule export into a weekly teacher timetable",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError(cmd, fmt.Errorf("unexpected arguments %v", args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*envFile, cmd.Flags())
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.ExitCode, "failed to load config")
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "schedule export to read (xlsx or csv)")
	flags.String("source", config.SourceAuto, "source kind: auto, xlsx, csv or sql")
	flags.String("sheet", "", "workbook sheet to read (default: first sheet)")
	flags.String("query", "", "SQL query returning the schedule columns (sql source)")
	flags.StringP("output", "o", config.DefaultOutputPath, "timetable workbook to write; other formats swap the extension")
	flags.StringSliceP("format", "f", []string{service.FormatXLSX}, "output formats: xlsx, csv, pdf")
	flags.String("sheet-name", "Schedule", "sheet name of the written workbook")
	flags.String("metrics-file", "", "write Prometheus textfile metrics to this path")

	return cmd
}

func usageError(_ *cobra.Command, err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.ExitCode, "invalid command line")
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	kind, err := service.ResolveSourceKind(cfg.Source.Kind, cfg.Source.Path)
	if err != nil {
		return err
	}

	store, err := storage.NewLocalStorage(".")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrOutputUnwritable.Code, appErrors.ErrOutputUnwritable.ExitCode, "failed to prepare output")
	}

	metrics := service.NewMetricsService()
	pipeline := service.NewPipelineService(
		service.NewLoaderService(logr),
		service.NewTimetableService(logr),
		service.NewExportService(store, service.ExportConfig{SheetName: cfg.Output.SheetName}, metrics, logr),
		metrics,
		validator.New(),
		logr,
	)

	req := service.PipelineRequest{
		SourceKind:  kind,
		InputPath:   cfg.Source.Path,
		OutputPath:  cfg.Output.Path,
		Formats:     cfg.Output.Formats,
		MetricsFile: cfg.Metrics.File,
	}
	if err := pipeline.Validate(req); err != nil {
		return err
	}

	src, closeSource, err := openSource(ctx, kind, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	result, err := pipeline.Run(ctx, req, src, out)
	if err != nil {
		return err
	}
	logr.Info("timetable built",
		zap.String("teacher", result.Teacher),
		zap.Int("time_ranges", result.Stats.TimeRanges),
		zap.Int("outputs", len(result.Outputs)),
	)
	return nil
}

func openSource(ctx context.Context, kind string, cfg *config.Config) (scheduleSource, func(), error) {
	noop := func() {}
	switch kind {
	case config.SourceXLSX:
		return repository.NewXLSXSource(cfg.Source.Path, cfg.Source.Sheet), noop, nil
	case config.SourceCSV:
		return repository.NewCSVSource(cfg.Source.Path), noop, nil
	case config.SourceSQL:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, noop, appErrors.Wrap(err, appErrors.ErrSourceUnreadable.Code, appErrors.ErrSourceUnreadable.ExitCode, "failed to connect to database")
		}
		return repository.NewSQLSource(db, cfg.Source.Query), closeDB(db), nil
	default:
		return nil, noop, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported source kind %s", kind))
	}
}

func closeDB(db *sqlx.DB) func() {
	return func() { _ = db.Close() }
}
