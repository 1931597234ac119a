package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"FIN-COACH/internal"
	"FIN-COACH/internal/models"
	"FIN-COACH/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxUploadSize limits a single uploaded document.
const MaxUploadSize = 10 << 20

var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// DocumentService handles the document upload step that follows a submit.
type DocumentService struct {
	storageClient storage.StorageClient
	submissions   *SubmissionService
	configs       *FormConfigService
	activity      *ActivityLogService
}

func NewDocumentService(storageClient storage.StorageClient, submissions *SubmissionService, configs *FormConfigService, activity *ActivityLogService) *DocumentService {
	return &DocumentService{
		storageClient: storageClient,
		submissions:   submissions,
		configs:       configs,
		activity:      activity,
	}
}

type UploadRequest struct {
	SubmissionID string
	DocumentID   string
	Filename     string
	Reader       io.Reader
}

// Upload stores a file for a submitted submission. The content type is
// sniffed from the data, the client supplied header is ignored.
func (s *DocumentService) Upload(ctx context.Context, actor Actor, req UploadRequest) (*models.UploadedDocument, error) {
	sub, err := s.submissions.Get(ctx, actor, req.SubmissionID)
	if err != nil {
		return nil, err
	}
	if !sub.IsSubmitted() {
		return nil, fmt.Errorf("%w: documents are uploaded after submitting the form", ErrInvalidInput)
	}
	if req.DocumentID != "" {
		cfg, err := s.configs.Get(ctx, sub.FormConfigID)
		if err != nil {
			return nil, err
		}
		if !hasRequiredDocument(cfg, req.DocumentID) {
			return nil, fmt.Errorf("%w: unknown document %q", ErrInvalidInput, req.DocumentID)
		}
	}

	data, err := io.ReadAll(io.LimitReader(req.Reader, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxUploadSize)
	}
	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !allowedUploadTypes[mimeType] {
		return nil, fmt.Errorf("%w: unsupported file type %s", ErrInvalidInput, mimeType)
	}

	filename := filepath.Base(req.Filename)
	objectName := storage.UploadObjectName(sub.ID, req.DocumentID, filename)
	result, err := s.storageClient.UploadFile(ctx, bytes.NewReader(data), objectName, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	doc := &models.UploadedDocument{
		ID:           uuid.New().String(),
		SubmissionID: sub.ID,
		UserID:       actor.ID,
		DocumentID:   req.DocumentID,
		Filename:     filename,
		ObjectName:   result.ObjectName,
		MimeType:     mimeType,
		FileSize:     result.Size,
	}
	if err := internal.DB.Create(doc).Error; err != nil {
		// Clean up the stored object on error
		s.storageClient.DeleteFile(ctx, result.ObjectName)
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	s.activity.Record(actor, ActionDocumentUploaded, sub.ID, doc.ID)
	return doc, nil
}

func hasRequiredDocument(cfg *models.FormConfiguration, id string) bool {
	for _, doc := range cfg.Documents {
		if doc.ID == id {
			return true
		}
	}
	return false
}

func (s *DocumentService) List(ctx context.Context, actor Actor, submissionID string) ([]models.UploadedDocument, error) {
	if _, err := s.submissions.Get(ctx, actor, submissionID); err != nil {
		return nil, err
	}
	var docs []models.UploadedDocument
	if err := internal.DB.Where("submission_id = ?", submissionID).Order("created_at ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) get(ctx context.Context, actor Actor, submissionID, id string) (*models.UploadedDocument, error) {
	if _, err := s.submissions.Get(ctx, actor, submissionID); err != nil {
		return nil, err
	}
	var doc models.UploadedDocument
	if err := internal.DB.First(&doc, "id = ? AND submission_id = ?", id, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return &doc, nil
}

// Open returns the document metadata and a reader the caller must close.
func (s *DocumentService) Open(ctx context.Context, actor Actor, submissionID, id string) (*models.UploadedDocument, io.ReadCloser, error) {
	doc, err := s.get(ctx, actor, submissionID, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.storageClient.ReadFile(ctx, doc.ObjectName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}
	return doc, reader, nil
}

// SignedURL returns a short-lived download link for a document.
func (s *DocumentService) SignedURL(ctx context.Context, actor Actor, submissionID, id string, expiry time.Duration) (string, error) {
	doc, err := s.get(ctx, actor, submissionID, id)
	if err != nil {
		return "", err
	}
	signed, err := s.storageClient.GetSignedURL(doc.ObjectName, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign document url: %w", err)
	}
	return signed, nil
}

func (s *DocumentService) Delete(ctx context.Context, actor Actor, submissionID, id string) error {
	doc, err := s.get(ctx, actor, submissionID, id)
	if err != nil {
		return err
	}
	if err := internal.DB.Delete(doc).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := s.storageClient.DeleteFile(ctx, doc.ObjectName); err != nil {
		fmt.Printf("Warning: failed to delete stored object %s: %v\n", doc.ObjectName, err)
	}
	s.activity.Record(actor, ActionDocumentDeleted, submissionID, doc.ID)
	return nil
}
