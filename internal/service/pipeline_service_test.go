package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
	"github.com/noah-isme/sma-timetable/pkg/storage"
)

func newPipelineForTest(t *testing.T) (*PipelineService, *MetricsService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	logger := zap.NewNop()
	metrics := NewMetricsService()
	pipeline := NewPipelineService(
		NewLoaderService(logger),
		NewTimetableService(logger),
		NewExportService(store, ExportConfig{}, metrics, logger),
		metrics,
		validator.New(),
		logger,
	)
	return pipeline, metrics, dir
}

func scenarioSource() *stubSource {
	return sheetOf(standardHeader,
		[]string{"Ana", "2", "08:00", "10:00", "Math", "T1"},
		[]string{"Ana", "4", "08:00", "10:00", "Physics", "T2"},
		[]string{"Ana", "9", "10:00", "12:00", "Ghost", "G1"},
	)
}

func TestPipelineRunEndToEnd(t *testing.T) {
	pipeline, metrics, dir := newPipelineForTest(t)
	out := &bytes.Buffer{}
	metricsFile := filepath.Join(dir, "timetable.prom")

	result, err := pipeline.Run(context.Background(), PipelineRequest{
		SourceKind:  "xlsx",
		InputPath:   "horario.xlsx",
		OutputPath:  "resultado.xlsx",
		Formats:     []string{FormatXLSX, FormatCSV},
		MetricsFile: metricsFile,
	}, scenarioSource(), out)
	require.NoError(t, err)

	assert.Equal(t, "Ana", result.Teacher)
	assert.Equal(t, 1, result.Stats.InvalidDays)
	require.Len(t, result.Outputs, 2)

	printed := out.String()
	assert.True(t, strings.HasPrefix(printed, "ANA\n"))
	assert.Contains(t, printed, "Spreadsheet saved as: "+filepath.Join(dir, "resultado.xlsx"))
	assert.Contains(t, printed, "CSV saved as: "+filepath.Join(dir, "resultado.csv"))
	assert.NotContains(t, printed, "Ghost")

	f, err := excelize.OpenFile(filepath.Join(dir, "resultado.xlsx"))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, []string{"ANA"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, []string{"Time", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}, rows[2])
	assert.Equal(t, []string{"08:00", "Math", "", "Physics"}, rows[3])
	assert.Equal(t, []string{"10:00", "T1", "", "T2"}, rows[4])

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.recordsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.recordsDropped.WithLabelValues("invalid_day")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.timeRanges))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "timetable_records_loaded_total 3")
	assert.Contains(t, string(prom), `timetable_outputs_written_total{format="csv"} 1`)
}

func TestPipelineRunIsIdempotent(t *testing.T) {
	pipeline, _, _ := newPipelineForTest(t)
	req := PipelineRequest{SourceKind: "csv", InputPath: "in.csv", OutputPath: "resultado.xlsx", Formats: []string{FormatCSV}}

	first, err := pipeline.Run(context.Background(), req, scenarioSource(), &bytes.Buffer{})
	require.NoError(t, err)
	second, err := pipeline.Run(context.Background(), req, scenarioSource(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, first.Table, second.Table)
}

func TestPipelineRunMissingColumnStopsBeforeOutput(t *testing.T) {
	pipeline, _, dir := newPipelineForTest(t)
	src := sheetOf([]string{"PROFESSOR", "DIASEMANA", "HORAINICIAL", "HORAFINAL", "DISCIPLINA"})
	out := &bytes.Buffer{}

	_, err := pipeline.Run(context.Background(), PipelineRequest{
		SourceKind: "xlsx", InputPath: "horario.xlsx", OutputPath: "resultado.xlsx", Formats: []string{FormatXLSX},
	}, src, out)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingColumn))
	assert.Empty(t, out.String())
	_, statErr := os.Stat(filepath.Join(dir, "resultado.xlsx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipelineValidate(t *testing.T) {
	pipeline, _, _ := newPipelineForTest(t)

	cases := map[string]PipelineRequest{
		"unknown source": {SourceKind: "ods", InputPath: "a.ods", OutputPath: "o.xlsx", Formats: []string{"xlsx"}},
		"missing input":  {SourceKind: "xlsx", OutputPath: "o.xlsx", Formats: []string{"xlsx"}},
		"no formats":     {SourceKind: "xlsx", InputPath: "a.xlsx", OutputPath: "o.xlsx"},
		"bad format":     {SourceKind: "xlsx", InputPath: "a.xlsx", OutputPath: "o.xlsx", Formats: []string{"docx"}},
		"missing output": {SourceKind: "xlsx", InputPath: "a.xlsx", Formats: []string{"xlsx"}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := pipeline.Validate(req)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
			assert.Equal(t, appErrors.ExitUsage, appErrors.FromError(err).ExitCode)
		})
	}

	assert.NoError(t, pipeline.Validate(PipelineRequest{SourceKind: "sql", OutputPath: "o.xlsx", Formats: []string{"pdf"}}))
}

func TestPipelineRejectsFormatsSharingAFile(t *testing.T) {
	pipeline, _, dir := newPipelineForTest(t)
	src := scenarioSource()
	out := &bytes.Buffer{}

	_, err := pipeline.Run(context.Background(), PipelineRequest{
		SourceKind: "csv", InputPath: "in.csv", OutputPath: "out.csv", Formats: []string{FormatXLSX, FormatCSV},
	}, src, out)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, src.reads)
	assert.Empty(t, out.String())
	_, statErr := os.Stat(filepath.Join(dir, "out.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipelineValidationSkipsSource(t *testing.T) {
	pipeline, _, _ := newPipelineForTest(t)
	src := scenarioSource()
	_, err := pipeline.Run(context.Background(), PipelineRequest{SourceKind: "xlsx"}, src, &bytes.Buffer{})
	require.Error(t, err)
	assert.Zero(t, src.reads)
}

func TestResolveSourceKind(t *testing.T) {
	kind, err := ResolveSourceKind("", "horario.XLSX")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", kind)

	kind, err = ResolveSourceKind("auto", "export.csv")
	require.NoError(t, err)
	assert.Equal(t, "csv", kind)

	kind, err = ResolveSourceKind("SQL", "")
	require.NoError(t, err)
	assert.Equal(t, "sql", kind)

	_, err = ResolveSourceKind("auto", "horario.ods")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnsupportedFormat))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveLoad(1)
	m.ObservePivot(PivotStats{})
	m.ObserveOutput("xlsx")
	m.ObserveStage(StageLoad, time.Second)
	m.MarkSuccess(time.Now())
	assert.NoError(t, m.WriteTextfile("ignored"))
}
