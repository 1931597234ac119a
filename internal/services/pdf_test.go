package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertHTMLToPDF(t *testing.T) {
	var calls atomic.Int32
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		var uploaded strings.Builder
		for _, headers := range r.MultipartForm.File {
			for _, header := range headers {
				file, err := header.Open()
				require.NoError(t, err)
				body, _ := io.ReadAll(file)
				file.Close()
				uploaded.Write(body)
			}
		}
		assert.Contains(t, uploaded.String(), "<h1>Profile</h1>")
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 converted"))
	}))
	defer server.Close()

	svc, err := NewPDFService(server.URL, "5s")
	require.NoError(t, err)

	body, err := svc.ConvertHTMLToPDF(context.Background(), []byte("<html><body><h1>Profile</h1></body></html>"))
	require.NoError(t, err)
	defer body.Close()
	pdf, err := io.ReadAll(body)
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.7 converted", string(pdf))
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, strings.HasSuffix(gotPath, "/convert/html"), gotPath)
}

func TestConvertHTMLToPDFFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc, err := NewPDFService(server.URL, "5s")
	require.NoError(t, err)
	svc.maxRetries = 2

	_, err = svc.ConvertHTMLToPDF(context.Background(), []byte("<html></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), calls.Load())
}

func TestPageCountRejectsGarbage(t *testing.T) {
	svc := &PDFService{}
	_, err := svc.PageCount([]byte("not a pdf"))
	assert.Error(t, err)
	_, err = svc.AddWatermark([]byte("not a pdf"), "DRAFT")
	assert.Error(t, err)
}

// twoPagePDF builds a real PDF with one image per page.
func twoPagePDF(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	img.Set(1, 1, color.Black)
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var out bytes.Buffer
	pages := []io.Reader{bytes.NewReader(pngBuf.Bytes()), bytes.NewReader(pngBuf.Bytes())}
	require.NoError(t, api.ImportImages(nil, &out, pages, nil, nil))
	return out.Bytes()
}

func TestAddWatermarkKeepsPages(t *testing.T) {
	svc := &PDFService{}
	pdf := twoPagePDF(t)

	count, err := svc.PageCount(pdf)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	stamped, err := svc.AddWatermark(pdf, "DRAFT")
	require.NoError(t, err)
	assert.NotEqual(t, pdf, stamped)

	count, err = svc.PageCount(stamped)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
