package service

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/export"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type consoleRenderer interface {
	Write(w io.Writer, data export.Dataset) error
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	SheetName string
}

// ExportResult captures one written artefact.
type ExportResult struct {
	Format string
	Path   string
	Bytes  int
}

// ExportService renders assembled timetables and persists them.
type ExportService struct {
	storage   fileStorage
	console   consoleRenderer
	renderers map[string]datasetRenderer
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the xlsx, csv and pdf renderers.
func NewExportService(storage fileStorage, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		storage: storage,
		console: export.NewConsoleExporter(),
		renderers: map[string]datasetRenderer{
			FormatXLSX: export.NewXLSXExporter(cfg.SheetName),
			FormatCSV:  export.NewCSVExporter(),
			FormatPDF:  export.NewPDFExporter(),
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Print writes the upper-cased teacher name and the text grid to w.
func (s *ExportService) Print(w io.Writer, table models.RenderedTable) error {
	if err := s.console.Write(w, toDataset(table)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrOutputUnwritable.Code, appErrors.ErrOutputUnwritable.ExitCode, "failed to print timetable")
	}
	return nil
}

// Generate renders the table in format and stores it at path, overwriting any existing file.
func (s *ExportService) Generate(table models.RenderedTable, format, path string) (*ExportResult, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported format %s", format))
	}
	payload, err := renderer.Render(toDataset(table))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.ExitCode, fmt.Sprintf("failed to render %s", format))
	}
	written, err := s.storage.Save(path, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrOutputUnwritable.Code, appErrors.ErrOutputUnwritable.ExitCode, fmt.Sprintf("failed to save %s", path))
	}
	s.metrics.ObserveOutput(format)
	s.logger.Info("timetable exported", zap.String("format", format), zap.String("path", written), zap.Int("bytes", len(payload)))
	return &ExportResult{Format: format, Path: written, Bytes: len(payload)}, nil
}

// Targets returns the output path of every format, in order. Two formats that
// would write the same file are rejected before anything is rendered.
func (s *ExportService) Targets(base string, formats []string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	owners := make(map[string]string, len(formats))
	for _, format := range formats {
		path := OutputPath(base, format)
		resolved := filepath.Clean(s.storage.Path(path))
		if owner, ok := owners[resolved]; ok {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("formats %s and %s would both write %s", owner, format, resolved))
		}
		owners[resolved] = format
		paths = append(paths, path)
	}
	return paths, nil
}

// OutputPath derives the file name for format from the primary output path by
// swapping its extension. The workbook keeps the path as given.
func OutputPath(base, format string) string {
	if format == FormatXLSX {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + format
}

func toDataset(table models.RenderedTable) export.Dataset {
	return export.Dataset{
		Title:   table.Title(),
		Headers: table.Header,
		Rows:    table.Rows,
	}
}
