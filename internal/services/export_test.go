package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"FIN-COACH/internal/export"
	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	html       string
	convertErr error
	watermark  string
}

func (e *stubEngine) ConvertHTMLToPDF(_ context.Context, html []byte) (io.ReadCloser, error) {
	e.html = string(html)
	if e.convertErr != nil {
		return nil, e.convertErr
	}
	return io.NopCloser(strings.NewReader("%PDF-1.7 stub")), nil
}

func (e *stubEngine) AddWatermark(pdf []byte, text string) ([]byte, error) {
	e.watermark = text
	return pdf, nil
}

func (e *stubEngine) PageCount([]byte) (int, error) {
	return 2, nil
}

func TestExportSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := createUser(t, "client-1", models.RoleClient, "")
	engine := &stubEngine{}
	store := localStorage(t)
	svc := NewExportService(export.NewExporter(engine, export.Options{}), i18n.MustLoad("en"), store, f.submissions, f.configs, f.activity)

	result, err := f.submissions.Submit(ctx, client, SaveRequest{FormConfigID: f.config.ID, FormData: completeData()})
	require.NoError(t, err)

	out, err := svc.Export(ctx, client, result.Submission.ID, "nl-BE")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 stub", string(out.PDF))
	assert.Equal(t, "nl", out.Record.Language)
	assert.Equal(t, 2, out.Record.PageCount)
	assert.NotEmpty(t, out.Record.ObjectName)
	assert.Contains(t, engine.html, "User client-1")
	assert.Contains(t, engine.html, "5.000")
	assert.Empty(t, engine.watermark)

	records, err := svc.List(ctx, client, result.Submission.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, reader, err := svc.Open(ctx, client, result.Submission.ID, records[0].ID)
	require.NoError(t, err)
	body, _ := io.ReadAll(reader)
	reader.Close()
	assert.Equal(t, "%PDF-1.7 stub", string(body))

	_, _, err = svc.Open(ctx, client, result.Submission.ID, "missing")
	assert.ErrorIs(t, err, ErrExportNotFound)

	logs, _, err := f.activity.GetLogsByAction(ActionExported, 0, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestExportFormatsStoredNumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := createUser(t, "client-1", models.RoleClient, "")
	engine := &stubEngine{}
	svc := NewExportService(export.NewExporter(engine, export.Options{}), i18n.MustLoad("en"), localStorage(t), f.submissions, f.configs, f.activity)

	result, err := f.submissions.Submit(ctx, client, SaveRequest{FormConfigID: f.config.ID, FormData: completeData()})
	require.NoError(t, err)

	stored, err := f.submissions.Get(ctx, client, result.Submission.ID)
	require.NoError(t, err)
	require.IsType(t, json.Number(""), stored.FormData["income"].(map[string]interface{})["gross_income"])

	_, err = svc.Export(ctx, client, result.Submission.ID, "en")
	require.NoError(t, err)
	assert.Contains(t, engine.html, "5,000")
}

func TestExportDraftAndEngineFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := createUser(t, "client-1", models.RoleClient, "")
	outsider := createUser(t, "client-2", models.RoleClient, "")
	engine := &stubEngine{}
	svc := NewExportService(export.NewExporter(engine, export.Options{}), i18n.MustLoad("en"), localStorage(t), f.submissions, f.configs, f.activity)

	draft, err := f.submissions.SaveDraft(ctx, client, SaveRequest{FormConfigID: f.config.ID})
	require.NoError(t, err)

	_, err = svc.Export(ctx, client, draft.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", engine.watermark)

	_, err = svc.Export(ctx, outsider, draft.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	engine.convertErr = errors.New("connection refused")
	_, err = svc.Export(ctx, client, draft.ID, "")
	assert.ErrorIs(t, err, export.ErrEngine)
}
