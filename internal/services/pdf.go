package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"FIN-COACH/internal/export"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"
)

const watermarkStyle = "fontname:Helvetica, points:64, rotation:45, opacity:0.15, fillcolor:#b91c1c"

// PDFService renders export HTML through Gotenberg's Chromium route and
// post-processes the result with pdfcpu.
type PDFService struct {
	client     *gotenberg.Client
	timeout    time.Duration
	maxRetries int
}

func NewPDFService(gotenbergURL string, timeoutStr string) (*PDFService, error) {
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	client, err := gotenberg.NewClient(gotenbergURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gotenberg client: %w", err)
	}

	return &PDFService{
		client:     client,
		timeout:    timeout,
		maxRetries: 3,
	}, nil
}

func (s *PDFService) ConvertHTMLToPDF(ctx context.Context, html []byte) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		body, err := s.convert(ctx, html)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < s.maxRetries {
			fmt.Printf("Warning: PDF conversion attempt %d failed: %v\n", attempt, err)
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	return nil, fmt.Errorf("failed to convert document after %d attempts: %w", s.maxRetries, lastErr)
}

func (s *PDFService) convert(ctx context.Context, html []byte) (io.ReadCloser, error) {
	convertCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	index, err := document.FromString("index.html", string(html))
	if err != nil {
		return nil, fmt.Errorf("failed to create document from html: %w", err)
	}

	req := gotenberg.NewHTMLRequest(index)
	req.PaperSize(gotenberg.A4)
	req.Margins(gotenberg.NoMargins)
	req.PrintBackground()

	resp, err := s.client.Send(convertCtx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}

	// The body must be read before convertCtx is cancelled.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted document: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// AddWatermark stamps text diagonally across every page.
func (s *PDFService) AddWatermark(pdf []byte, text string) ([]byte, error) {
	wm, err := api.TextWatermark(text, watermarkStyle, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build watermark: %w", err)
	}
	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &out, nil, wm, pdfConfig()); err != nil {
		return nil, fmt.Errorf("failed to add watermark: %w", err)
	}
	return out.Bytes(), nil
}

func (s *PDFService) PageCount(pdf []byte) (int, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return ctx.PageCount, nil
}

func (s *PDFService) Close() error {
	return nil
}

var _ export.Engine = (*PDFService)(nil)
