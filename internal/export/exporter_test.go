package export

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"FIN-COACH/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeEngine struct {
	html        []byte
	convertErr  error
	watermarked string
	pages       int
	countErr    error
}

func (f *fakeEngine) ConvertHTMLToPDF(_ context.Context, html []byte) (io.ReadCloser, error) {
	f.html = html
	if f.convertErr != nil {
		return nil, f.convertErr
	}
	return io.NopCloser(strings.NewReader("%PDF-1.7 fake")), nil
}

func (f *fakeEngine) AddWatermark(pdf []byte, text string) ([]byte, error) {
	f.watermarked = text
	return append(pdf, []byte(" +wm")...), nil
}

func (f *fakeEngine) PageCount(pdf []byte) (int, error) {
	return f.pages, f.countErr
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func exportRequest(status models.SubmissionStatus, data map[string]interface{}) Request {
	submitted := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	sub := &models.FormSubmission{
		ID:        "sub-1",
		FormData:  datatypes.JSONMap(data),
		Status:    status,
		UpdatedAt: submitted,
	}
	if status == models.StatusSubmitted {
		sub.SubmittedAt = &submitted
	}
	return Request{
		Config: &models.FormConfiguration{
			Name:     "Intake Form",
			FormType: models.FormTypeSingle,
			Version:  "2",
			Sections: []models.Section{{
				ID:    "income",
				Title: "Income",
				Fields: []models.FormField{
					{Name: "gross_income", Label: "Gross Income", Type: models.FieldTypeNumber},
				},
			}},
			ConsentForms: []models.ConsentForm{{ID: "privacy", Title: "Privacy", Content: "We keep your data safe."}},
		},
		Submission:  sub,
		ClientName:  "Anna Jansen",
		ClientEmail: "anna@example.nl",
		Language:    "en",
		T:           bundle.For("en"),
	}
}

func TestDecodeImage(t *testing.T) {
	raw := pngBytes(t)
	encoded := base64.StdEncoding.EncodeToString(raw)

	uri, err := DecodeImage(encoded)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	uri2, err := DecodeImage("data:image/png;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, uri, uri2)

	_, err = DecodeImage("data:image/png;base64,not-base64!!")
	assert.Error(t, err)

	_, err = DecodeImage(base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.Error(t, err)
}

func TestExportSubmitted(t *testing.T) {
	engine := &fakeEngine{pages: 3}
	exporter := NewExporter(engine, Options{Caption: "Confidential"})

	signature := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))
	req := exportRequest(models.StatusSubmitted, map[string]interface{}{
		"income":          map[string]interface{}{"gross_income": 5000.0},
		"signature":       signature,
		"consent_privacy": true,
	})

	result, err := exporter.Export(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "IntakeForm_2024-06-30.pdf", result.Filename)
	assert.Equal(t, 3, result.PageCount)
	assert.Equal(t, "%PDF-1.7 fake", string(result.PDF))
	assert.Empty(t, engine.watermarked)

	html := string(engine.html)
	assert.Contains(t, html, "5,000")
	assert.Contains(t, html, "Anna Jansen")
	assert.Contains(t, html, `<img src="data:image/png;base64,`)
	assert.Contains(t, html, "Page 1 of 2")
	assert.Contains(t, html, "Confidential")
	assert.Contains(t, html, "We keep your data safe.")
}

func TestExportDraftIsWatermarked(t *testing.T) {
	engine := &fakeEngine{pages: 2}
	exporter := NewExporter(engine, Options{})

	result, err := exporter.Export(context.Background(), exportRequest(models.StatusDraft, map[string]interface{}{
		"signature": "garbage",
	}))
	require.NoError(t, err)

	assert.Equal(t, "DRAFT", engine.watermarked)
	assert.Equal(t, "%PDF-1.7 fake +wm", string(result.PDF))
	assert.Contains(t, string(engine.html), "signature error")
}

func TestExportEngineFailure(t *testing.T) {
	engine := &fakeEngine{convertErr: errors.New("gotenberg down")}
	exporter := NewExporter(engine, Options{})

	_, err := exporter.Export(context.Background(), exportRequest(models.StatusSubmitted, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEngine)
}

func TestExportPageCountFallsBackToLayout(t *testing.T) {
	engine := &fakeEngine{countErr: errors.New("broken xref")}
	exporter := NewExporter(engine, Options{})

	result, err := exporter.Export(context.Background(), exportRequest(models.StatusSubmitted, map[string]interface{}{
		"income": map[string]interface{}{"gross_income": 1.0},
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, result.PageCount)
}

func TestBuildLogo(t *testing.T) {
	dir := t.TempDir()
	logoPath := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(logoPath, pngBytes(t), 0o644))

	doc, err := NewExporter(&fakeEngine{}, Options{LogoPath: logoPath}).Build(context.Background(), exportRequest(models.StatusSubmitted, nil))
	require.NoError(t, err)
	require.NotEmpty(t, doc.Pages[0].Blocks)
	assert.Equal(t, BlockLogo, doc.Pages[0].Blocks[0].Kind)

	// A missing logo is skipped.
	doc, err = NewExporter(&fakeEngine{}, Options{LogoPath: filepath.Join(dir, "missing.png")}).Build(context.Background(), exportRequest(models.StatusSubmitted, nil))
	require.NoError(t, err)
	assert.Equal(t, BlockTitle, doc.Pages[0].Blocks[0].Kind)
}

func TestBuildDual(t *testing.T) {
	req := exportRequest(models.StatusSubmitted, map[string]interface{}{
		"applicant1": map[string]interface{}{"income": map[string]interface{}{"gross_income": 4000.0}},
		"applicant2": map[string]interface{}{"income": map[string]interface{}{"gross_income": 2000.0}},
	})
	req.Config.FormType = models.FormTypeDual

	doc, err := NewExporter(&fakeEngine{}, Options{}).Build(context.Background(), req)
	require.NoError(t, err)

	rows := blocksOf(doc, BlockTableRow)
	require.Len(t, rows, 1)
	assert.Equal(t, [][]string{{"Gross Income"}, {"4,000"}, {"2,000"}}, rows[0].Cells)
	assert.Len(t, blocksOf(doc, BlockSignaturePair), 1)
}

func TestBuildRequiresInput(t *testing.T) {
	_, err := NewExporter(&fakeEngine{}, Options{}).Build(context.Background(), Request{})
	assert.Error(t, err)
}
