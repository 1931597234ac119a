package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"FIN-COACH/internal"
	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService stores the client's financial profile resources and uses
// them to prefill new forms.
type ProfileService struct{}

func NewProfileService() *ProfileService {
	return &ProfileService{}
}

func (s *ProfileService) GetAll(userID string) (map[models.ProfileResource]datatypes.JSONMap, error) {
	var records []models.ProfileRecord
	if err := internal.DB.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	out := make(map[models.ProfileResource]datatypes.JSONMap, len(records))
	for _, r := range records {
		out[r.Resource] = r.Data
	}
	return out, nil
}

// Get returns nil data without error when the resource was never stored.
func (s *ProfileService) Get(userID string, resource models.ProfileResource) (datatypes.JSONMap, error) {
	if !resource.Valid() {
		return nil, fmt.Errorf("%w: unknown profile resource %q", ErrInvalidInput, resource)
	}
	var record models.ProfileRecord
	err := internal.DB.Where("user_id = ? AND resource = ?", userID, resource).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile resource %s: %w", resource, err)
	}
	return record.Data, nil
}

func (s *ProfileService) Put(userID string, resource models.ProfileResource, data map[string]interface{}) (*models.ProfileRecord, error) {
	if !resource.Valid() {
		return nil, fmt.Errorf("%w: unknown profile resource %q", ErrInvalidInput, resource)
	}
	record := &models.ProfileRecord{
		ID:       uuid.New().String(),
		UserID:   userID,
		Resource: resource,
		Data:     datatypes.JSONMap(data),
	}
	err := internal.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "resource"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to store profile resource %s: %w", resource, err)
	}
	return record, nil
}

// Prefill builds initial form data from the user's profile. A section is
// filled from the resource with the same id. Declared fields take only
// their own keys, legacy sections take the whole resource. Dual forms fill
// the first applicant. A resource that fails to load is skipped.
func (s *ProfileService) Prefill(ctx context.Context, cfg *models.FormConfiguration, userID string) map[string]interface{} {
	data := map[string]interface{}{}
	applicant := forms.ApplicantNone
	if cfg.IsDual() {
		applicant = forms.Applicant1
	}

	for _, section := range forms.SortedSections(cfg) {
		resource := models.ProfileResource(section.ID)
		if !resource.Valid() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		values, err := s.Get(userID, resource)
		if err != nil {
			log.Printf("Warning: profile prefill skipped %s for user %s: %v", resource, userID, err)
			continue
		}
		if len(values) == 0 {
			continue
		}

		if len(section.Fields) == 0 {
			for key, value := range values {
				forms.SetValue(data, applicant, section.ID, key, value)
			}
			continue
		}
		for _, field := range section.Fields {
			if value, ok := values[field.Name]; ok {
				forms.SetValue(data, applicant, section.ID, field.Name, value)
			}
		}
	}
	return data
}
