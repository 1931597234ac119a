package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FIN-COACH/internal"
	"FIN-COACH/internal/export"
	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/models"
	"FIN-COACH/internal/services"
	"FIN-COACH/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubEngine struct{}

func (stubEngine) ConvertHTMLToPDF(_ context.Context, _ []byte) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("%PDF-1.7 stub")), nil
}

func (stubEngine) AddWatermark(pdf []byte, _ string) ([]byte, error) { return pdf, nil }

func (stubEngine) PageCount([]byte) (int, error) { return 2, nil }

type testServer struct {
	router *gin.Engine
	auth   *services.AuthService
	store  *storage.LocalStorageClient
}

func newTestServer(t *testing.T) *testServer {
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

	store, err := storage.NewLocalStorageClient(t.TempDir(), "http://localhost/files", "key")
	require.NoError(t, err)

	bundle := i18n.MustLoad("en")
	activity := services.NewActivityLogService()
	configs := services.NewFormConfigService(nil)
	profiles := services.NewProfileService()
	submissions := services.NewSubmissionService(configs, profiles, activity)
	authService := services.NewAuthService(testSecret, time.Hour)
	documents := services.NewDocumentService(store, submissions, configs, activity)
	exports := services.NewExportService(export.NewExporter(stubEngine{}, export.Options{}), bundle, store, submissions, configs, activity)

	r := gin.New()
	RegisterRoutes(r, &Handlers{
		Auth:        NewAuthHandler(authService),
		FormConfigs: NewFormConfigHandler(configs),
		Submissions: NewSubmissionHandler(submissions, configs, bundle),
		Documents:   NewDocumentHandler(documents),
		Exports:     NewExportHandler(exports),
		Profile:     NewProfileHandler(profiles),
		Coach:       NewCoachHandler(submissions),
		Admin:       NewAdminHandler(authService, activity),
		Statistics:  NewStatisticsHandler(services.NewStatisticsService()),
		I18n:        NewI18nHandler(bundle),
	}, testSecret)
	r.GET("/files/*filepath", ServeSignedFiles(store))

	return &testServer{router: r, auth: authService, store: store}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req, token)
}

func (s *testServer) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// register creates a client through the API and returns its token and id.
func (s *testServer) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": email, "password": "correct-horse", "name": "Anna Jansen",
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var result services.AuthResult
	decode(t, env, &result)
	return result.Token, result.User.ID
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var result services.AuthResult
	decode(t, env, &result)
	return result.Token
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	require.NoError(t, s.auth.SeedAdmin("admin@example.nl", "admin-password"))
	return s.login(t, "admin@example.nl", "admin-password")
}

func intakeConfig() models.FormConfiguration {
	return models.FormConfiguration{
		Name:     "Intake",
		FormType: models.FormTypeSingle,
		Version:  "1",
		IsActive: true,
		Sections: []models.Section{
			{ID: "personal_details", Title: "Personal details", Order: 1, Fields: []models.FormField{
				{Name: "first_name", Label: "First name", Type: models.FieldTypeText, Required: true},
			}},
			{ID: "income", Title: "Income", Order: 2, Fields: []models.FormField{
				{Name: "gross_income", Label: "Gross income", Type: models.FieldTypeNumber, Required: true},
			}},
		},
		ConsentForms: []models.ConsentForm{{ID: "privacy", Title: "Privacy", Content: "We keep your data safe.", Required: true}},
		Documents:    []models.RequiredDocument{{ID: "payslip", Name: "Pay slip", Required: true}},
	}
}

func (s *testServer) createConfig(t *testing.T, adminToken string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/form-configs", adminToken, intakeConfig())
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var cfg models.FormConfiguration
	decode(t, env, &cfg)
	return cfg.ID
}

func completeData() map[string]interface{} {
	return map[string]interface{}{
		"personal_details": map[string]interface{}{"first_name": "Anna"},
		"income":           map[string]interface{}{"gross_income": 5000},
		"consent_privacy":  true,
	}
}
