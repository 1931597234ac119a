package services

import (
	"context"
	"sync"
	"testing"

	"FIN-COACH/internal"
	"FIN-COACH/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB points internal.DB at a fresh in-memory database. A single
// connection keeps every goroutine on the same database.
func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	internal.DB = db
	require.NoError(t, internal.AutoMigrate())
	t.Cleanup(func() {
		sqlDB.Close()
		internal.DB = nil
	})
}

func createUser(t *testing.T, id string, role models.Role, coachID string) Actor {
	t.Helper()
	user := &models.User{
		ID:           id,
		Email:        id + "@example.nl",
		Name:         "User " + id,
		PasswordHash: "x",
		Role:         role,
		CoachID:      coachID,
	}
	require.NoError(t, internal.DB.Create(user).Error)
	return Actor{ID: user.ID, Email: user.Email, Role: role}
}

func intakeConfig() *models.FormConfiguration {
	return &models.FormConfiguration{
		Name:     "Intake",
		FormType: models.FormTypeSingle,
		Version:  "1",
		IsActive: true,
		Sections: []models.Section{
			{
				ID:    "personal_details",
				Title: "Personal details",
				Order: 1,
				Fields: []models.FormField{
					{Name: "first_name", Label: "First name", Type: models.FieldTypeText, Required: true},
					{Name: "email", Label: "Email", Type: models.FieldTypeEmail},
				},
			},
			{
				ID:    "income",
				Title: "Income",
				Order: 2,
				Fields: []models.FormField{
					{Name: "gross_income", Label: "Gross income", Type: models.FieldTypeNumber, Required: true},
				},
			},
			{ID: "expenses", Title: "Expenses", Order: 3},
		},
		ConsentForms: []models.ConsentForm{
			{ID: "privacy", Title: "Privacy", Content: "We keep your data safe.", Required: true},
		},
		Documents: []models.RequiredDocument{
			{ID: "payslip", Name: "Pay slip", Required: true},
		},
	}
}

func completeData() map[string]interface{} {
	return map[string]interface{}{
		"personal_details": map[string]interface{}{"first_name": "Anna", "email": "anna@example.nl"},
		"income":           map[string]interface{}{"gross_income": 5000.0},
		"consent_privacy":  true,
	}
}

// memoryCache is a ConfigCache that records what happens to it.
type memoryCache struct {
	mu          sync.Mutex
	items       map[string]*models.FormConfiguration
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]*models.FormConfiguration{}}
}

func (m *memoryCache) Get(_ context.Context, id string) (*models.FormConfiguration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.items[id]
	return cfg, ok
}

func (m *memoryCache) Set(_ context.Context, cfg *models.FormConfiguration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[cfg.ID] = cfg
}

func (m *memoryCache) Invalidate(_ context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	m.invalidated = append(m.invalidated, id)
}

type fixture struct {
	configs     *FormConfigService
	profiles    *ProfileService
	activity    *ActivityLogService
	submissions *SubmissionService
	config      *models.FormConfiguration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	setupDB(t)
	f := &fixture{
		configs:  NewFormConfigService(nil),
		profiles: NewProfileService(),
		activity: NewActivityLogService(),
	}
	f.submissions = NewSubmissionService(f.configs, f.profiles, f.activity)
	cfg, err := f.configs.Create(context.Background(), intakeConfig())
	require.NoError(t, err)
	f.config = cfg
	return f
}
