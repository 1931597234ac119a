package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FIN-COACH/internal"
	"FIN-COACH/internal/cache"
	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FormConfigService struct {
	cache cache.ConfigCache
}

func NewFormConfigService(configCache cache.ConfigCache) *FormConfigService {
	if configCache == nil {
		configCache = cache.Noop{}
	}
	return &FormConfigService{cache: configCache}
}

func (s *FormConfigService) List(activeOnly bool) ([]models.FormConfiguration, error) {
	var configs []models.FormConfiguration
	query := internal.DB.Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to list form configurations: %w", err)
	}
	return configs, nil
}

func (s *FormConfigService) Get(ctx context.Context, id string) (*models.FormConfiguration, error) {
	if cfg, ok := s.cache.Get(ctx, id); ok {
		return cfg, nil
	}

	var cfg models.FormConfiguration
	if err := internal.DB.First(&cfg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to load form configuration: %w", err)
	}
	s.cache.Set(ctx, &cfg)
	return &cfg, nil
}

func (s *FormConfigService) Create(ctx context.Context, cfg *models.FormConfiguration) (*models.FormConfiguration, error) {
	if cfg.FormType == "" {
		cfg.FormType = models.FormTypeSingle
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	cfg.ID = uuid.New().String()
	if err := internal.DB.Create(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to create form configuration: %w", err)
	}
	return cfg, nil
}

func (s *FormConfigService) Update(ctx context.Context, id string, cfg *models.FormConfiguration) (*models.FormConfiguration, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cfg.FormType == "" {
		cfg.FormType = existing.FormType
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	if err := internal.DB.Save(cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to update form configuration: %w", err)
	}
	s.cache.Invalidate(ctx, id)
	return cfg, nil
}

func (s *FormConfigService) Delete(ctx context.Context, id string) error {
	result := internal.DB.Delete(&models.FormConfiguration{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete form configuration: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConfigNotFound
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

// ValidateConfig checks the structure of a configuration before it is
// stored. Problems use the same error type as form data validation.
func ValidateConfig(cfg *models.FormConfiguration) error {
	verr := &forms.ValidationError{}
	problem := func(path, msg string) {
		verr.Problems = append(verr.Problems, forms.FieldProblem{Path: path, Message: msg})
	}

	if strings.TrimSpace(cfg.Name) == "" {
		problem("name", "is required")
	}
	if cfg.FormType != models.FormTypeSingle && cfg.FormType != models.FormTypeDual {
		problem("form_type", fmt.Sprintf("unsupported form type %q", cfg.FormType))
	}

	sectionIDs := map[string]bool{}
	for i, section := range cfg.Sections {
		path := fmt.Sprintf("sections[%d]", i)
		switch {
		case section.ID == "":
			problem(path+".id", "is required")
		case strings.Contains(section.ID, "."):
			problem(path+".id", "must not contain dots")
		case section.ID == forms.KeyApplicant1 || section.ID == forms.KeyApplicant2 ||
			strings.HasPrefix(section.ID, "consent_") || strings.HasPrefix(section.ID, forms.KeySignature):
			problem(path+".id", "is a reserved key")
		case sectionIDs[section.ID]:
			problem(path+".id", "is duplicated")
		}
		sectionIDs[section.ID] = true

		fieldNames := map[string]bool{}
		for j, field := range section.Fields {
			fpath := fmt.Sprintf("%s.fields[%d]", path, j)
			if field.Name == "" || strings.Contains(field.Name, ".") {
				problem(fpath+".name", "must be a non-empty name without dots")
			} else if fieldNames[field.Name] {
				problem(fpath+".name", "is duplicated")
			}
			fieldNames[field.Name] = true
			if !field.Type.Valid() {
				problem(fpath+".type", fmt.Sprintf("unsupported field type %q", field.Type))
			}
		}
	}

	consentIDs := map[string]bool{}
	for i, consent := range cfg.ConsentForms {
		if consent.ID == "" {
			continue
		}
		if consentIDs[consent.ID] {
			problem(fmt.Sprintf("consent_forms[%d].id", i), "is duplicated")
		}
		consentIDs[consent.ID] = true
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}
