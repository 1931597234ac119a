package models

import (
	"time"
)

// EventType represents the type of statistical event
type EventType string

const (
	EventFormSubmit     EventType = "form_submit"
	EventExport         EventType = "export"
	EventDocumentUpload EventType = "document_upload"
)

// EventTypes lists every tracked event.
var EventTypes = []EventType{EventFormSubmit, EventExport, EventDocumentUpload}

// Statistics counts one event type per form configuration per day. An
// empty FormConfigID holds the global count.
type Statistics struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventType    EventType `gorm:"type:varchar(50);not null;uniqueIndex:idx_stat_event_form_day" json:"event_type"`
	FormConfigID string    `gorm:"type:varchar(191);not null;default:'';uniqueIndex:idx_stat_event_form_day" json:"form_config_id,omitempty"`
	Day          string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_stat_event_form_day" json:"day"` // YYYY-MM-DD, UTC
	Count        int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Statistics) TableName() string {
	return "statistics"
}

// StatisticsSummary represents aggregated statistics
type StatisticsSummary struct {
	TotalFormSubmits     int64 `json:"total_form_submits"`
	TotalExports         int64 `json:"total_exports"`
	TotalDocumentUploads int64 `json:"total_document_uploads"`
	OpenDrafts           int64 `json:"open_drafts"`
}

// FormStatistics represents statistics for one form configuration
type FormStatistics struct {
	FormConfigID    string `json:"form_config_id"`
	FormName        string `json:"form_name"`
	FormSubmits     int64  `json:"form_submits"`
	Exports         int64  `json:"exports"`
	DocumentUploads int64  `json:"document_uploads"`
}

// TimeSeriesPoint represents a single point in time-based statistics
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TimeSeriesData represents time-based statistics for a specific event type
type TimeSeriesData struct {
	EventType  string            `json:"event_type"`
	DataPoints []TimeSeriesPoint `json:"data_points"`
	Total      int64             `json:"total"`
}
