package services

import (
	"fmt"
	"sort"
	"time"

	"FIN-COACH/internal"
	"FIN-COACH/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dayFormat = "2006-01-02"

// StatisticsService keeps daily event counters per form configuration.
type StatisticsService struct {
	now func() time.Time
}

func NewStatisticsService() *StatisticsService {
	return &StatisticsService{now: time.Now}
}

func (s *StatisticsService) today() string {
	return s.now().UTC().Format(dayFormat)
}

// IncrementStat adds one to the counter of today. A concurrent insert of
// the same counter loses on the unique index and falls back to increment.
func (s *StatisticsService) IncrementStat(eventType models.EventType, formConfigID string) error {
	day := s.today()
	increment := func() (int64, error) {
		result := internal.DB.Model(&models.Statistics{}).
			Where("event_type = ? AND form_config_id = ? AND day = ?", eventType, formConfigID, day).
			UpdateColumn("count", gorm.Expr("count + ?", 1))
		return result.RowsAffected, result.Error
	}

	rows, err := increment()
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", eventType, err)
	}
	if rows > 0 {
		return nil
	}

	stat := models.Statistics{
		ID:           uuid.New().String(),
		EventType:    eventType,
		FormConfigID: formConfigID,
		Day:          day,
		Count:        1,
	}
	if err := internal.DB.Create(&stat).Error; err != nil {
		if _, err := increment(); err != nil {
			return fmt.Errorf("failed to increment %s: %w", eventType, err)
		}
	}
	return nil
}

// RecordEvent counts an event globally and for the form of the submission.
func (s *StatisticsService) RecordEvent(eventType models.EventType, submissionID string) {
	if err := s.IncrementStat(eventType, ""); err != nil {
		fmt.Printf("Warning: failed to record global %s stat: %v\n", eventType, err)
	}

	var sub models.FormSubmission
	if err := internal.DB.Select("form_config_id").First(&sub, "id = ?", submissionID).Error; err != nil {
		return
	}
	if err := s.IncrementStat(eventType, sub.FormConfigID); err != nil {
		fmt.Printf("Warning: failed to record %s stat for form %s: %v\n", eventType, sub.FormConfigID, err)
	}
}

func (s *StatisticsService) sum(eventType models.EventType, formConfigID string) (int64, error) {
	var total int64
	err := internal.DB.Model(&models.Statistics{}).
		Where("event_type = ? AND form_config_id = ?", eventType, formConfigID).
		Select("COALESCE(SUM(count), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s: %w", eventType, err)
	}
	return total, nil
}

// GetSummary returns total counts for all event types plus the number of
// open drafts.
func (s *StatisticsService) GetSummary() (*models.StatisticsSummary, error) {
	summary := &models.StatisticsSummary{}
	var err error
	if summary.TotalFormSubmits, err = s.sum(models.EventFormSubmit, ""); err != nil {
		return nil, err
	}
	if summary.TotalExports, err = s.sum(models.EventExport, ""); err != nil {
		return nil, err
	}
	if summary.TotalDocumentUploads, err = s.sum(models.EventDocumentUpload, ""); err != nil {
		return nil, err
	}
	if err := internal.DB.Model(&models.FormSubmission{}).
		Where("status = ?", models.StatusDraft).
		Count(&summary.OpenDrafts).Error; err != nil {
		return nil, fmt.Errorf("failed to count drafts: %w", err)
	}
	return summary, nil
}

// GetFormStats returns the counters of every form that has any.
func (s *StatisticsService) GetFormStats() ([]models.FormStatistics, error) {
	var ids []string
	if err := internal.DB.Model(&models.Statistics{}).
		Where("form_config_id <> ''").
		Distinct("form_config_id").
		Pluck("form_config_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list forms with statistics: %w", err)
	}
	sort.Strings(ids)

	stats := make([]models.FormStatistics, 0, len(ids))
	for _, id := range ids {
		stat, err := s.GetStatsByForm(id)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *stat)
	}
	return stats, nil
}

func (s *StatisticsService) GetStatsByForm(formConfigID string) (*models.FormStatistics, error) {
	stat := &models.FormStatistics{FormConfigID: formConfigID}

	// Soft-deleted forms keep their name
	var cfg models.FormConfiguration
	if err := internal.DB.Unscoped().Select("name").First(&cfg, "id = ?", formConfigID).Error; err == nil {
		stat.FormName = cfg.Name
	} else {
		stat.FormName = "(deleted form)"
	}

	var err error
	if stat.FormSubmits, err = s.sum(models.EventFormSubmit, formConfigID); err != nil {
		return nil, err
	}
	if stat.Exports, err = s.sum(models.EventExport, formConfigID); err != nil {
		return nil, err
	}
	if stat.DocumentUploads, err = s.sum(models.EventDocumentUpload, formConfigID); err != nil {
		return nil, err
	}
	return stat, nil
}

// GetTimeSeries returns one point per day for the last days days, oldest
// first, including days without events.
func (s *StatisticsService) GetTimeSeries(eventType models.EventType, days int, formConfigID string) (*models.TimeSeriesData, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -(days - 1))

	var rows []models.Statistics
	if err := internal.DB.
		Where("event_type = ? AND form_config_id = ? AND day >= ?", eventType, formConfigID, start.Format(dayFormat)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get time series data: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Day] += r.Count
	}

	data := &models.TimeSeriesData{
		EventType:  string(eventType),
		DataPoints: make([]models.TimeSeriesPoint, 0, days),
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format(dayFormat)
		data.DataPoints = append(data.DataPoints, models.TimeSeriesPoint{Date: day, Count: counts[day]})
		data.Total += counts[day]
	}
	return data, nil
}

// GetTrends returns time-based statistics for all event types
func (s *StatisticsService) GetTrends(days int, formConfigID string) (map[string]*models.TimeSeriesData, error) {
	trends := make(map[string]*models.TimeSeriesData, len(models.EventTypes))
	for _, et := range models.EventTypes {
		data, err := s.GetTimeSeries(et, days, formConfigID)
		if err != nil {
			return nil, err
		}
		trends[string(et)] = data
	}
	return trends, nil
}
