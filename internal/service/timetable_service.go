package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
)

// PivotStats summarises one pivot.
type PivotStats struct {
	Records     int
	InvalidDays int
	Overwrites  int
	TimeRanges  int
}

// TimetableService pivots records into a weekly grid and flattens it for rendering.
type TimetableService struct {
	logger *zap.Logger
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{logger: logger}
}

// Build groups records by time range and weekday. When two records target the
// same slot the later one wins. Records with an unknown weekday are kept under
// WeekdayInvalid, which no renderer shows.
func (s *TimetableService) Build(records []models.ScheduleRecord) (*models.Timetable, PivotStats) {
	table := models.NewTimetable()
	stats := PivotStats{Records: len(records)}

	for _, record := range records {
		if !record.Weekday.Valid() {
			stats.InvalidDays++
			s.logger.Warn("weekday code outside 2..6, record left out of the timetable",
				zap.Int("row", record.Row),
				zap.String("day_code", record.DayCode),
				zap.String("subject", record.Subject),
				zap.String("class_code", record.ClassCode),
			)
		}
		if table.Put(record.TimeRange(), record.Weekday, models.NewCell(record.Subject, record.ClassCode)) {
			stats.Overwrites++
			s.logger.Debug("slot overwritten by later record",
				zap.Int("row", record.Row),
				zap.String("start", record.Start.Raw),
				zap.String("weekday", record.Weekday.String()),
			)
		}
	}

	stats.TimeRanges = table.Len()
	return table, stats
}

// Assemble flattens the timetable into a header and two rows per time range
// (subjects, then class codes), ordered by start time. Ranges sharing a
// start keep their input order.
func (s *TimetableService) Assemble(teacher string, table *models.Timetable) models.RenderedTable {
	header := make([]string, 0, len(models.Weekdays)+1)
	header = append(header, models.HeaderTime)
	for _, day := range models.Weekdays {
		header = append(header, day.String())
	}

	ranges := table.Ranges()
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start.Less(ranges[j].Start)
	})

	rows := make([][]string, 0, len(ranges)*2)
	for _, tr := range ranges {
		subjects := make([]string, 0, len(header))
		codes := make([]string, 0, len(header))
		subjects = append(subjects, tr.Start.Raw)
		codes = append(codes, tr.End.Raw)
		for _, day := range models.Weekdays {
			cell := table.Get(tr, day)
			if cell.Empty() {
				subjects = append(subjects, "")
				codes = append(codes, "")
				continue
			}
			subjects = append(subjects, cell.Subject)
			codes = append(codes, cell.ClassCode)
		}
		rows = append(rows, subjects, codes)
	}

	return models.RenderedTable{Teacher: teacher, Header: header, Rows: rows}
}
