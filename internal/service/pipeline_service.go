package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/pkg/config"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// PipelineRequest describes one timetable build.
type PipelineRequest struct {
	SourceKind  string   `validate:"required,oneof=xlsx csv sql"`
	InputPath   string   `validate:"required_unless=SourceKind sql"`
	OutputPath  string   `validate:"required"`
	Formats     []string `validate:"required,min=1,dive,oneof=xlsx csv pdf"`
	MetricsFile string
}

// PipelineResult summarises a completed run.
type PipelineResult struct {
	Teacher string
	Stats   PivotStats
	Table   models.RenderedTable
	Outputs []ExportResult
}

// PipelineService runs load, pivot and render in sequence. Any failure aborts
// the run; nothing is retried.
type PipelineService struct {
	loader    *LoaderService
	timetable *TimetableService
	exporter  *ExportService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPipelineService wires the pipeline stages.
func NewPipelineService(loader *LoaderService, timetable *TimetableService, exporter *ExportService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PipelineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineService{
		loader:    loader,
		timetable: timetable,
		exporter:  exporter,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Validate checks a request before any source is opened.
func (s *PipelineService) Validate(req PipelineRequest) error {
	_, err := s.plan(req)
	return err
}

// plan validates req and resolves the output path of each format.
func (s *PipelineService) plan(req PipelineRequest) ([]string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.ExitCode, "invalid timetable request")
	}
	return s.exporter.Targets(req.OutputPath, req.Formats)
}

// Run executes the pipeline, printing the grid and one status line per
// written file to out.
func (s *PipelineService) Run(ctx context.Context, req PipelineRequest, src scheduleSource, out io.Writer) (*PipelineResult, error) {
	targets, err := s.plan(req)
	if err != nil {
		return nil, err
	}

	started := s.now()
	loaded, err := s.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveLoad(len(loaded.Records))
	s.metrics.ObserveStage(StageLoad, s.now().Sub(started))

	started = s.now()
	table, stats := s.timetable.Build(loaded.Records)
	rendered := s.timetable.Assemble(loaded.Teacher, table)
	s.metrics.ObservePivot(stats)
	s.metrics.ObserveStage(StagePivot, s.now().Sub(started))
	if stats.InvalidDays > 0 {
		s.logger.Warn("records with an unknown weekday were dropped", zap.Int("count", stats.InvalidDays))
	}

	started = s.now()
	if err := s.exporter.Print(out, rendered); err != nil {
		return nil, err
	}

	result := &PipelineResult{Teacher: loaded.Teacher, Stats: stats, Table: rendered}
	for i, format := range req.Formats {
		written, err := s.exporter.Generate(rendered, format, targets[i])
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, *written)
		if _, err := fmt.Fprintf(out, "\n%s saved as: %s\n", outputLabel(format), written.Path); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrOutputUnwritable.Code, appErrors.ErrOutputUnwritable.ExitCode, "failed to print status")
		}
	}
	s.metrics.ObserveStage(StageRender, s.now().Sub(started))
	s.metrics.MarkSuccess(s.now())

	if err := s.metrics.WriteTextfile(req.MetricsFile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrOutputUnwritable.Code, appErrors.ErrOutputUnwritable.ExitCode, "failed to write metrics")
	}
	return result, nil
}

// ResolveSourceKind picks the source kind, inferring it from the file
// extension when kind is empty or "auto".
func ResolveSourceKind(kind, path string) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != "" && kind != config.SourceAuto {
		return kind, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return config.SourceXLSX, nil
	case ".csv":
		return config.SourceCSV, nil
	default:
		return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("cannot infer source kind from %q; use --source", path))
	}
}

func outputLabel(format string) string {
	switch format {
	case FormatXLSX:
		return "Spreadsheet"
	case FormatCSV:
		return "CSV"
	case FormatPDF:
		return "PDF"
	default:
		return strings.ToUpper(format)
	}
}
