package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements the handful of endpoints a form session uses.
type fakeAPI struct {
	mu       sync.Mutex
	saves    []SaveRequest
	submits  []SaveRequest
	draftID  string
	rejectOn bool
	consents []models.ConsentForm
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	consents := f.consents
	if consents == nil {
		consents = []models.ConsentForm{{ID: "privacy", Title: "Privacy", Required: true}}
	}
	cfg := models.FormConfiguration{
		ID:       "cfg-1",
		Name:     "Intake",
		FormType: models.FormTypeSingle,
		Sections: []models.Section{{ID: "income", Title: "Income", Fields: []models.FormField{
			{Name: "gross_income", Label: "Gross income", Type: models.FieldTypeNumber, Required: true},
		}}},
		ConsentForms: consents,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{
			"token": "tok-1", "user": map[string]string{"id": "u-1", "role": "client"},
		}})
	})
	mux.HandleFunc("/api/v1/form-configs/cfg-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": cfg})
	})
	mux.HandleFunc("/api/v1/form-configs/cfg-1/submission", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{
			"submission": map[string]interface{}{
				"form_config_id": "cfg-1",
				"form_data":      map[string]interface{}{"income": map[string]interface{}{"gross_income": 1000}},
				"status":         "draft",
			},
		}})
	})
	mux.HandleFunc("/api/v1/submissions/draft", func(w http.ResponseWriter, r *http.Request) {
		var req SaveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.saves = append(f.saves, req)
		if req.ID == "" {
			f.draftID = "sub-1"
		}
		id := f.draftID
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{"id": id, "status": "draft"}})
	})
	mux.HandleFunc("/api/v1/submissions/submit", func(w http.ResponseWriter, r *http.Request) {
		var req SaveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.submits = append(f.submits, req)
		reject := f.rejectOn
		f.mu.Unlock()
		if reject {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"success": false,
				"message": "invalid form data",
				"data":    []forms.FieldProblem{{Path: "income.gross_income", Message: "must be a number"}},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{
			"submission": map[string]interface{}{"id": req.ID, "status": "submitted"},
			"next_step":  "forms",
		}})
	})
	mux.HandleFunc("/api/v1/submissions/sub-1/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nl", r.URL.Query().Get("lang"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="Intake_2024-05-01.pdf"`)
		w.Write([]byte("%PDF-1.7"))
	})
	return mux
}

func newSession(t *testing.T, f *fakeAPI) (*Client, *FormSession) {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	client := New(srv.URL + "/")
	ctx := context.Background()
	_, err := client.Login(ctx, "anna@example.nl", "pw")
	require.NoError(t, err)

	session, err := client.OpenSession(ctx, "cfg-1")
	require.NoError(t, err)
	return client, session
}

func TestSessionLifecycle(t *testing.T) {
	f := &fakeAPI{}
	_, session := newSession(t, f)
	ctx := context.Background()

	assert.Equal(t, StateNew, session.State())
	assert.Empty(t, session.SubmissionID())
	assert.Equal(t, map[string]interface{}{"gross_income": 1000.0}, session.Data()["income"])

	require.NoError(t, session.SaveDraft(ctx))
	assert.Equal(t, StateDraft, session.State())
	assert.Equal(t, "sub-1", session.SubmissionID())

	require.NoError(t, session.Set(forms.ApplicantNone, "income", "gross_income", 2500.0))
	require.NoError(t, session.SaveDraft(ctx))

	require.Len(t, f.saves, 2)
	assert.Empty(t, f.saves[0].ID)
	assert.Equal(t, "sub-1", f.saves[1].ID, "second save reuses the id")
	assert.Equal(t, "cfg-1", f.saves[1].FormConfigID)

	var verr *forms.ValidationError
	require.ErrorAs(t, session.Submit(ctx), &verr, "consent is missing")
	assert.Empty(t, f.submits, "local validation runs first")

	assert.Error(t, session.SetConsent(1, true))
	require.NoError(t, session.SetConsent(0, true))
	require.NoError(t, session.Submit(ctx))
	assert.Equal(t, StateSubmitted, session.State())
	assert.Equal(t, "forms", session.NextStep())
	require.Len(t, f.submits, 1)
	assert.Equal(t, true, f.submits[0].FormData["consent_privacy"])

	assert.ErrorIs(t, session.Set(forms.ApplicantNone, "income", "gross_income", 1.0), ErrSessionSubmitted)
	assert.ErrorIs(t, session.SaveDraft(ctx), ErrSessionSubmitted)
}

func TestSessionServerRejection(t *testing.T) {
	f := &fakeAPI{rejectOn: true}
	_, session := newSession(t, f)

	require.NoError(t, session.SetConsent(0, true))
	err := session.Submit(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "invalid form data", apiErr.Message)
	require.Len(t, apiErr.Problems, 1)
	assert.Equal(t, "income.gross_income", apiErr.Problems[0].Path)
	assert.Equal(t, StateNew, session.State())
}

func TestSessionPositionalConsents(t *testing.T) {
	f := &fakeAPI{consents: []models.ConsentForm{
		{Title: "Privacy", Required: true},
		{Title: "Sharing", Required: true},
	}}
	_, session := newSession(t, f)

	require.NoError(t, session.SetConsent(1, true))
	assert.Equal(t, true, session.Data()["consent_1"])
	assert.NotContains(t, session.Data(), "consent_0")

	var verr *forms.ValidationError
	require.ErrorAs(t, session.Validate(), &verr)
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, "consent_0", verr.Problems[0].Path)

	require.NoError(t, session.SetConsent(0, true))
	assert.NoError(t, session.Validate())
}

func TestExportPDF(t *testing.T) {
	client, _ := newSession(t, &fakeAPI{})

	pdf, filename, err := client.ExportPDF(context.Background(), "sub-1", "nl")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(pdf))
	assert.Equal(t, "Intake_2024-05-01.pdf", filename)

	_, _, err = client.ExportPDF(context.Background(), "missing", "nl")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
