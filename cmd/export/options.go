package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// options controls one export run. Flags win over FIN_EXPORT_* environment
// variables, which win over the defaults.
type options struct {
	// remote mode
	APIURL       string
	Email        string
	Password     string
	SubmissionID string

	// local mode
	ConfigFile     string
	SubmissionFile string
	ClientName     string
	ClientEmail    string
	GotenbergURL   string
	Timeout        string
	LogoPath       string
	Caption        string

	Language string
	Output   string
}

func (o *options) remote() bool {
	return o.APIURL != ""
}

func (o *options) validate() error {
	if o.remote() {
		if o.SubmissionID == "" {
			return errors.New("--submission-id is required with --api-url")
		}
		if o.Email == "" || o.Password == "" {
			return errors.New("--email and --password are required with --api-url")
		}
		return nil
	}
	if o.ConfigFile == "" || o.SubmissionFile == "" {
		return errors.New("either --api-url or both --config and --submission are required")
	}
	return nil
}

func parseOptions(args []string) (*options, error) {
	v := viper.New()
	v.SetEnvPrefix("FIN_EXPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	fs.String("api-url", "", "Base URL of the API, enables remote mode")
	fs.String("email", "", "Login email (remote mode)")
	fs.String("password", "", "Login password (remote mode)")
	fs.String("submission-id", "", "Submission to export (remote mode)")
	fs.String("config", "", "Form configuration JSON file (local mode)")
	fs.String("submission", "", "Submission JSON file (local mode)")
	fs.String("client-name", "", "Client name printed on the cover (local mode)")
	fs.String("client-email", "", "Client email printed on the cover (local mode)")
	fs.String("gotenberg-url", "http://localhost:3000", "Gotenberg URL (local mode)")
	fs.String("timeout", "30s", "Gotenberg timeout (local mode)")
	fs.String("logo", "", "Logo image for the cover page (local mode)")
	fs.String("caption", "Confidential - financial profile", "Footer caption (local mode)")
	fs.String("lang", "", "Export language (en, nl, fr)")
	fs.StringP("out", "o", "", "Output file, defaults to the export file name")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of export:\n\n")
		fmt.Fprintf(os.Stderr, "Renders a submission to PDF, either through a running API or from local JSON files.\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  export --api-url=http://localhost:8081 --email=coach@example.nl --password=... --submission-id=<id>\n")
		fmt.Fprintf(os.Stderr, "  export --config=intake.json --submission=anna.json --client-name=\"Anna Jansen\" --lang=nl\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	opts := &options{
		APIURL:         v.GetString("api-url"),
		Email:          v.GetString("email"),
		Password:       v.GetString("password"),
		SubmissionID:   v.GetString("submission-id"),
		ConfigFile:     v.GetString("config"),
		SubmissionFile: v.GetString("submission"),
		ClientName:     v.GetString("client-name"),
		ClientEmail:    v.GetString("client-email"),
		GotenbergURL:   v.GetString("gotenberg-url"),
		Timeout:        v.GetString("timeout"),
		LogoPath:       v.GetString("logo"),
		Caption:        v.GetString("caption"),
		Language:       v.GetString("lang"),
		Output:         v.GetString("out"),
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
