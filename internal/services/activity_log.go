package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"FIN-COACH/internal"
	"FIN-COACH/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Lifecycle actions recorded besides plain requests.
const (
	ActionRequest          = "request"
	ActionDraftSaved       = "draft_saved"
	ActionSubmitted        = "submitted"
	ActionExported         = "exported"
	ActionDocumentUploaded = "document_uploaded"
	ActionDocumentDeleted  = "document_deleted"
)

// sanitizeUTF8 ensures the string is valid UTF-8, replacing invalid bytes
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "�")
}

// statisticEvents maps lifecycle actions onto the counters they feed.
var statisticEvents = map[string]models.EventType{
	ActionSubmitted:        models.EventFormSubmit,
	ActionExported:         models.EventExport,
	ActionDocumentUploaded: models.EventDocumentUpload,
}

type ActivityLogService struct {
	stats *StatisticsService
}

func NewActivityLogService() *ActivityLogService {
	return &ActivityLogService{stats: NewStatisticsService()}
}

// Record stores a lifecycle event. Failures are logged and swallowed.
func (s *ActivityLogService) Record(actor Actor, action, targetID, details string) {
	entry := &models.ActivityLog{
		ID:        uuid.New().String(),
		UserID:    actor.ID,
		UserEmail: actor.Email,
		UserRole:  actor.Role,
		Action:    action,
		TargetID:  targetID,
		Details:   sanitizeUTF8(details),
		CreatedAt: time.Now(),
	}
	if err := internal.DB.Create(entry).Error; err != nil {
		fmt.Printf("Warning: failed to save activity log: %v\n", err)
	}
	if event, ok := statisticEvents[action]; ok {
		s.stats.RecordEvent(event, targetID)
	}
}

// LogRequest stores one API request. Request bodies carry financial data
// and are never persisted, only the query string is.
func (s *ActivityLogService) LogRequest(c *gin.Context, statusCode int, responseTime time.Duration) {
	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = c.Request.RemoteAddr
	}

	entry := &models.ActivityLog{
		ID:           uuid.New().String(),
		UserID:       c.GetString("user_id"),
		UserEmail:    c.GetString("user_email"),
		UserRole:     models.Role(c.GetString("user_role")),
		Action:       ActionRequest,
		Details:      sanitizeUTF8(c.Request.URL.RawQuery),
		Method:       c.Request.Method,
		Path:         c.Request.URL.Path,
		UserAgent:    sanitizeUTF8(c.Request.UserAgent()),
		IPAddress:    clientIP,
		StatusCode:   statusCode,
		ResponseTime: responseTime.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	// Save to database (don't block the request if this fails)
	go func() {
		if err := internal.DB.Create(entry).Error; err != nil {
			fmt.Printf("Failed to save activity log: %v\n", err)
		}
	}()
}

func (s *ActivityLogService) GetAllLogs(limit int, offset int) ([]models.ActivityLog, int64, error) {
	return s.find("", limit, offset)
}

func (s *ActivityLogService) GetLogsByAction(action string, limit int, offset int) ([]models.ActivityLog, int64, error) {
	return s.find(action, limit, offset)
}

func (s *ActivityLogService) GetLogsByTarget(targetID string) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	if err := internal.DB.Where("target_id = ?", targetID).Order("created_at ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch logs: %w", err)
	}
	return logs, nil
}

func (s *ActivityLogService) find(action string, limit, offset int) ([]models.ActivityLog, int64, error) {
	var logs []models.ActivityLog
	var total int64

	query := internal.DB.Model(&models.ActivityLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count logs: %w", err)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch logs: %w", err)
	}

	return logs, total, nil
}

// LoggingMiddleware records every request after it has been handled.
func (s *ActivityLogService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.LogRequest(c, c.Writer.Status(), time.Since(start))
	}
}
