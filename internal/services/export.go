package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"FIN-COACH/internal"
	"FIN-COACH/internal/export"
	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/models"
	"FIN-COACH/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExportService struct {
	exporter      *export.Exporter
	bundle        *i18n.Bundle
	storageClient storage.StorageClient
	submissions   *SubmissionService
	configs       *FormConfigService
	activity      *ActivityLogService
}

func NewExportService(exporter *export.Exporter, bundle *i18n.Bundle, storageClient storage.StorageClient, submissions *SubmissionService, configs *FormConfigService, activity *ActivityLogService) *ExportService {
	return &ExportService{
		exporter:      exporter,
		bundle:        bundle,
		storageClient: storageClient,
		submissions:   submissions,
		configs:       configs,
		activity:      activity,
	}
}

type ExportOutcome struct {
	Record *models.ExportRecord
	PDF    []byte
}

// Export renders a submission to PDF in the requested language, falling
// back to the owner's language and then the default. The PDF is archived
// best-effort; a storage failure does not fail the export.
func (s *ExportService) Export(ctx context.Context, actor Actor, submissionID, language string) (*ExportOutcome, error) {
	sub, err := s.submissions.Get(ctx, actor, submissionID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.Get(ctx, sub.FormConfigID)
	if err != nil {
		return nil, err
	}

	var clientName, clientEmail string
	owner, err := findUser(sub.UserID)
	switch {
	case err == nil:
		clientName, clientEmail = owner.Name, owner.Email
		if language == "" {
			language = owner.Language
		}
	case errors.Is(err, ErrUserNotFound):
		log.Printf("Warning: owner %s of submission %s not found", sub.UserID, sub.ID)
	default:
		return nil, err
	}
	lang := s.bundle.Resolve(language)

	result, err := s.exporter.Export(ctx, export.Request{
		Config:      cfg,
		Submission:  sub,
		ClientName:  clientName,
		ClientEmail: clientEmail,
		Language:    lang,
		T:           s.bundle.For(lang),
	})
	if err != nil {
		return nil, err
	}

	record := &models.ExportRecord{
		ID:           uuid.New().String(),
		SubmissionID: sub.ID,
		UserID:       actor.ID,
		Filename:     result.Filename,
		Language:     lang,
		PageCount:    result.PageCount,
		FileSize:     int64(len(result.PDF)),
	}

	objectName := storage.ExportObjectName(sub.ID, result.Filename)
	if _, err := s.storageClient.UploadFile(ctx, bytes.NewReader(result.PDF), objectName, "application/pdf"); err != nil {
		log.Printf("Warning: failed to archive export of %s: %v", sub.ID, err)
	} else {
		record.ObjectName = objectName
		if err := internal.DB.Create(record).Error; err != nil {
			log.Printf("Warning: failed to record export of %s: %v", sub.ID, err)
		}
	}

	s.activity.Record(actor, ActionExported, sub.ID, lang+", "+strconv.Itoa(result.PageCount)+" pages")
	return &ExportOutcome{Record: record, PDF: result.PDF}, nil
}

func (s *ExportService) List(ctx context.Context, actor Actor, submissionID string) ([]models.ExportRecord, error) {
	if _, err := s.submissions.Get(ctx, actor, submissionID); err != nil {
		return nil, err
	}
	var records []models.ExportRecord
	if err := internal.DB.Where("submission_id = ?", submissionID).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return records, nil
}

// Open streams an archived export. The caller closes the reader.
func (s *ExportService) Open(ctx context.Context, actor Actor, submissionID, exportID string) (*models.ExportRecord, io.ReadCloser, error) {
	if _, err := s.submissions.Get(ctx, actor, submissionID); err != nil {
		return nil, nil, err
	}
	var record models.ExportRecord
	if err := internal.DB.First(&record, "id = ? AND submission_id = ?", exportID, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrExportNotFound
		}
		return nil, nil, fmt.Errorf("failed to load export: %w", err)
	}
	reader, err := s.storageClient.ReadFile(ctx, record.ObjectName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read export: %w", err)
	}
	return &record, reader, nil
}
