// Package export lays out submissions as paginated A4 documents and turns
// them into PDF files.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/models"
)

// ErrEngine marks failures of the PDF engine itself, as opposed to
// degraded assets.
var ErrEngine = errors.New("pdf engine failure")

// Engine converts rendered HTML into PDF and post-processes the result.
type Engine interface {
	ConvertHTMLToPDF(ctx context.Context, html []byte) (io.ReadCloser, error)
	AddWatermark(pdf []byte, text string) ([]byte, error)
	PageCount(pdf []byte) (int, error)
}

type Options struct {
	LogoPath string
	Caption  string
}

type Exporter struct {
	engine Engine
	opts   Options
}

func NewExporter(engine Engine, opts Options) *Exporter {
	return &Exporter{engine: engine, opts: opts}
}

// Request is one export of a submission.
type Request struct {
	Config      *models.FormConfiguration
	Submission  *models.FormSubmission
	ClientName  string
	ClientEmail string
	Language    string
	T           func(string) string
}

type Result struct {
	Filename  string
	PDF       []byte
	PageCount int
}

// SubmissionDate is the date shown on and used to name an export.
func SubmissionDate(s *models.FormSubmission) time.Time {
	switch {
	case s.SubmittedAt != nil && !s.SubmittedAt.IsZero():
		return *s.SubmittedAt
	case !s.UpdatedAt.IsZero():
		return s.UpdatedAt
	}
	return s.CreatedAt
}

// Build extracts and lays out the document without rendering it. The logo
// loads concurrently with extraction and is awaited before layout.
func (e *Exporter) Build(ctx context.Context, req Request) (*Document, error) {
	if req.Config == nil || req.Submission == nil {
		return nil, errors.New("export needs a configuration and a submission")
	}

	logoCh := make(chan string, 1)
	go func() {
		if e.opts.LogoPath == "" {
			logoCh <- ""
			return
		}
		logo, err := LoadLogo(e.opts.LogoPath)
		if err != nil {
			log.Printf("Warning: export logo unavailable: %v", err)
		}
		logoCh <- logo
	}()

	data := map[string]interface{}(req.Submission.FormData)
	payload := forms.ParsePayload(data)
	dual := payload.IsDual()
	date := SubmissionDate(req.Submission)

	content := Content{
		Language: req.Language,
		Dual:     dual,
		Sections: forms.ExtractSections(req.Config, data, req.T),
		Caption:  e.opts.Caption,
		Meta: Metadata{
			FormName:       req.Config.Name,
			FormType:       req.Config.FormType,
			Version:        req.Config.Version,
			SubmissionDate: date,
			Status:         req.Submission.Status,
			ClientName:     req.ClientName,
			ClientEmail:    req.ClientEmail,
		},
	}

	for i, consent := range req.Config.ConsentForms {
		content.Consents = append(content.Consents, ConsentInput{
			Title:    consent.Title,
			Content:  consent.Content,
			Accepted: payload.ConsentAccepted(consent, i),
		})
	}

	if dual {
		content.Signatures = []SignatureInput{
			decodeSignature(forms.Applicant1, payload.Signature(forms.Applicant1), date),
			decodeSignature(forms.Applicant2, payload.Signature(forms.Applicant2), date),
		}
	} else {
		content.Signatures = []SignatureInput{
			decodeSignature(forms.ApplicantNone, payload.Signature(forms.ApplicantNone), date),
		}
	}

	select {
	case content.Logo = <-logoCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return LayoutDocument(content, NewFormatter(req.Language, req.T)), nil
}

// Export renders the submission to PDF. Drafts are watermarked. Asset and
// post-processing problems degrade; engine failures wrap ErrEngine.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	doc, err := e.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}

	body, err := e.engine.ConvertHTMLToPDF(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}
	defer body.Close()

	pdf, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read pdf: %v", ErrEngine, err)
	}

	if req.Submission.Status != models.StatusSubmitted {
		text := "DRAFT"
		if req.T != nil {
			text = req.T("pdf.draft_watermark")
		}
		if marked, err := e.engine.AddWatermark(pdf, text); err != nil {
			log.Printf("Warning: failed to watermark draft export: %v", err)
		} else {
			pdf = marked
		}
	}

	pages, err := e.engine.PageCount(pdf)
	if err != nil {
		log.Printf("Warning: failed to count export pages: %v", err)
		pages = len(doc.Pages)
	}

	return &Result{
		Filename:  Filename(req.Config.Name, SubmissionDate(req.Submission)),
		PDF:       pdf,
		PageCount: pages,
	}, nil
}
