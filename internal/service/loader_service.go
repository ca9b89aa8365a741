package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

type scheduleSource interface {
	Read(ctx context.Context) (*models.Sheet, error)
	Describe() string
}

// LoadResult is the normalized content of one schedule source.
type LoadResult struct {
	Source  string
	Teacher string
	Records []models.ScheduleRecord
}

// LoaderService turns raw source rows into schedule records.
type LoaderService struct {
	logger *zap.Logger
}

// NewLoaderService instantiates LoaderService.
func NewLoaderService(logger *zap.Logger) *LoaderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoaderService{logger: logger}
}

// Load reads the source and maps every data row onto a record. The header
// is checked before any row is processed; the first missing required
// column aborts the load. The teacher name is the first non-empty
// PROFESSOR value; other rows are not compared against it.
func (s *LoaderService) Load(ctx context.Context, src scheduleSource) (*LoadResult, error) {
	sheet, err := src.Read(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrSourceUnreadable.Code, appErrors.ErrSourceUnreadable.ExitCode,
			fmt.Sprintf("failed to read schedule source %s", src.Describe()))
	}

	positions, err := columnPositions(sheet.Header)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{Source: src.Describe()}
	for i, row := range sheet.Rows {
		values := make(map[string]string, len(models.RequiredColumns))
		blank := true
		for _, column := range models.RequiredColumns {
			value := strings.TrimSpace(valueAt(row, positions[column]))
			values[column] = value
			if value != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		if result.Teacher == "" {
			result.Teacher = values[models.ColumnTeacher]
		}

		result.Records = append(result.Records, models.ScheduleRecord{
			Row:       i + 2,
			Teacher:   values[models.ColumnTeacher],
			DayCode:   values[models.ColumnWeekday],
			Weekday:   models.ParseWeekday(values[models.ColumnWeekday]),
			Start:     models.ParseTimeValue(values[models.ColumnStartTime]),
			End:       models.ParseTimeValue(values[models.ColumnEndTime]),
			Subject:   values[models.ColumnSubject],
			ClassCode: values[models.ColumnClassCode],
		})
	}

	s.logger.Info("schedule loaded",
		zap.String("source", result.Source),
		zap.String("sheet", sheet.Name),
		zap.String("teacher", result.Teacher),
		zap.Int("records", len(result.Records)),
	)
	return result, nil
}

// columnPositions maps each required column to its index in header. When a
// name repeats, the right-most occurrence wins.
func columnPositions(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[models.NormalizeHeader(name)] = i
	}
	positions := make(map[string]int, len(models.RequiredColumns))
	for _, column := range models.RequiredColumns {
		pos, ok := index[column]
		if !ok {
			return nil, appErrors.Wrap(&models.MissingColumnError{Column: column},
				appErrors.ErrMissingColumn.Code, appErrors.ErrMissingColumn.ExitCode, "invalid schedule header")
		}
		positions[column] = pos
	}
	return positions, nil
}

func valueAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
