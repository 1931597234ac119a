// Command export renders a submission to PDF from the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"FIN-COACH/internal/apiclient"
	"FIN-COACH/internal/export"
	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/models"
	"FIN-COACH/internal/services"

	"github.com/spf13/pflag"
)

func main() {
	opts, err := parseOptions(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		pdf      []byte
		filename string
	)
	if opts.remote() {
		pdf, filename, err = exportRemote(ctx, opts)
	} else {
		pdf, filename, err = exportLocal(ctx, opts)
	}
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	out := opts.Output
	if out == "" {
		out = filename
	}
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", out, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", out, len(pdf))
}

func exportRemote(ctx context.Context, opts *options) ([]byte, string, error) {
	client := apiclient.New(opts.APIURL)
	if _, err := client.Login(ctx, opts.Email, opts.Password); err != nil {
		return nil, "", fmt.Errorf("login failed: %w", err)
	}
	pdf, filename, err := client.ExportPDF(ctx, opts.SubmissionID, opts.Language)
	if err != nil {
		return nil, "", err
	}
	if filename == "" {
		filename = opts.SubmissionID + ".pdf"
	}
	return pdf, filename, nil
}

func readJSON(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// loadLocal reads the configuration and submission files. A submission
// file may hold either a full submission or only its form data.
func loadLocal(opts *options) (*models.FormConfiguration, *models.FormSubmission, error) {
	var cfg models.FormConfiguration
	if err := readJSON(opts.ConfigFile, &cfg); err != nil {
		return nil, nil, err
	}
	if cfg.FormType == "" {
		cfg.FormType = models.FormTypeSingle
	}
	if err := services.ValidateConfig(&cfg); err != nil {
		return nil, nil, err
	}

	var sub models.FormSubmission
	if err := readJSON(opts.SubmissionFile, &sub); err != nil {
		return nil, nil, err
	}
	if sub.FormData == nil && sub.Status == "" {
		var data map[string]interface{}
		if err := readJSON(opts.SubmissionFile, &data); err != nil {
			return nil, nil, err
		}
		sub.FormData = data
	}
	if sub.Status == "" {
		sub.Status = models.StatusDraft
	}
	return &cfg, &sub, nil
}

func exportLocal(ctx context.Context, opts *options) ([]byte, string, error) {
	cfg, sub, err := loadLocal(opts)
	if err != nil {
		return nil, "", err
	}

	bundle, err := i18n.Load("")
	if err != nil {
		return nil, "", err
	}
	pdfService, err := services.NewPDFService(opts.GotenbergURL, opts.Timeout)
	if err != nil {
		return nil, "", err
	}
	defer pdfService.Close()

	lang := bundle.Resolve(opts.Language)
	exporter := export.NewExporter(pdfService, export.Options{LogoPath: opts.LogoPath, Caption: opts.Caption})
	result, err := exporter.Export(ctx, export.Request{
		Config:      cfg,
		Submission:  sub,
		ClientName:  opts.ClientName,
		ClientEmail: opts.ClientEmail,
		Language:    lang,
		T:           bundle.For(lang),
	})
	if err != nil {
		return nil, "", err
	}
	log.Printf("Rendered %d pages in %s", result.PageCount, lang)
	return result.PDF, result.Filename, nil
}
