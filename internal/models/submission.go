package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmissionStatus is the lifecycle state of a form submission
type SubmissionStatus string

const (
	StatusDraft     SubmissionStatus = "draft"
	StatusSubmitted SubmissionStatus = "submitted"
)

type FormSubmission struct {
	ID           string            `gorm:"primaryKey" json:"id"`
	FormConfigID string            `gorm:"not null;index" json:"form_config_id"`
	UserID       string            `gorm:"not null;index" json:"user_id"`
	FormData     datatypes.JSONMap `json:"form_data"`
	Status       SubmissionStatus  `gorm:"type:varchar(20);index" json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	SubmittedAt  *time.Time        `json:"submitted_at,omitempty"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`

	FormConfig *FormConfiguration `gorm:"foreignKey:FormConfigID" json:"form_config,omitempty"`
}

func (FormSubmission) TableName() string {
	return "form_submissions"
}

// IsSubmitted reports whether the submission reached its terminal state.
func (s *FormSubmission) IsSubmitted() bool {
	return s.Status == StatusSubmitted
}

// UploadedDocument is a file attached to a submission during the document
// upload step that follows submission.
type UploadedDocument struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	SubmissionID string         `gorm:"not null;index" json:"submission_id"`
	UserID       string         `gorm:"index" json:"user_id"`
	DocumentID   string         `json:"document_id"` // RequiredDocument.ID from the configuration
	Filename     string         `gorm:"not null" json:"filename"`
	ObjectName   string         `json:"-"`
	MimeType     string         `json:"mime_type"`
	FileSize     int64          `json:"file_size"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UploadedDocument) TableName() string {
	return "uploaded_documents"
}

// ExportRecord tracks a generated PDF export of a submission
type ExportRecord struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	SubmissionID string    `gorm:"not null;index" json:"submission_id"`
	UserID       string    `gorm:"index" json:"user_id"` // requesting user
	Filename     string    `json:"filename"`
	ObjectName   string    `json:"-"`
	Language     string    `gorm:"type:varchar(8)" json:"language"`
	PageCount    int       `json:"page_count"`
	FileSize     int64     `json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ExportRecord) TableName() string {
	return "export_records"
}
