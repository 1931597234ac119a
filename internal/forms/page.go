package forms

import (
	"html/template"
	"io"
	"sort"

	"FIN-COACH/internal/models"
	"FIN-COACH/internal/utils"
)

// FormOptions controls a full form page.
type FormOptions struct {
	T        func(string) string
	Language string
	Action   string
	ReadOnly bool
}

type pageApplicant struct {
	Label  string
	Fields []template.HTML
}

type pageSection struct {
	Title       string
	Description string
	Collapsible bool
	Applicants  []pageApplicant
}

type pageConsent struct {
	Key          string
	Title        string
	Content      string
	CheckboxText string
	Required     bool
	Accepted     bool
}

type pageData struct {
	Language     string
	Title        string
	Description  string
	Action       string
	ReadOnly     bool
	Sections     []pageSection
	Consents     []pageConsent
	ConsentTitle string
	RequiredHint string
	SaveDraft    string
	Submit       string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;margin:2rem;color:#1f2937}
section{margin-bottom:2rem}
.applicants{display:flex;gap:2rem}
.applicant{flex:1}
.field{margin-bottom:.75rem;display:flex;flex-direction:column}
.required-mark{color:#b91c1c}
.consent{border:1px solid #d1d5db;padding:1rem;margin-bottom:1rem}
.consent-content{white-space:pre-wrap;max-height:12rem;overflow:auto}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{with .Description}}<p>{{.}}</p>{{end}}
<p class="hint">{{.RequiredHint}}</p>
<form method="post" action="{{.Action}}">
{{- range .Sections}}
<section>
{{- if .Collapsible}}<details open><summary><h2>{{.Title}}</h2></summary>{{else}}<h2>{{.Title}}</h2>{{end}}
{{with .Description}}<p>{{.}}</p>{{end}}
<div class="applicants">
{{- range .Applicants}}
<div class="applicant">
{{with .Label}}<h3>{{.}}</h3>{{end}}
{{- range .Fields}}
{{.}}
{{- end}}
</div>
{{- end}}
</div>
{{- if .Collapsible}}</details>{{end}}
</section>
{{- end}}
{{- if .Consents}}
<section>
<h2>{{.ConsentTitle}}</h2>
{{- range .Consents}}
<div class="consent">
<h3>{{.Title}}{{if .Required}} <span class="required-mark">*</span>{{end}}</h3>
<div class="consent-content">{{.Content}}</div>
<label><input type="hidden" name="{{.Key}}" value="false"><input type="checkbox" name="{{.Key}}" value="true"{{if .Accepted}} checked{{end}}{{if $.ReadOnly}} disabled{{end}}> {{.CheckboxText}}</label>
</div>
{{- end}}
</section>
{{- end}}
{{- if not .ReadOnly}}
<button type="submit" name="action" value="draft">{{.SaveDraft}}</button>
<button type="submit" name="action" value="submit">{{.Submit}}</button>
{{- end}}
</form>
</body>
</html>
`))

// RenderForm writes the editable HTML page of a configuration bound to data.
func RenderForm(w io.Writer, cfg *models.FormConfiguration, data map[string]interface{}, opts FormOptions) error {
	payload := ParsePayload(data)
	applicants := []int{ApplicantNone}
	if cfg.IsDual() {
		applicants = []int{Applicant1, Applicant2}
	}

	page := pageData{
		Language:     opts.Language,
		Title:        cfg.Name,
		Description:  cfg.Description,
		Action:       opts.Action,
		ReadOnly:     opts.ReadOnly,
		ConsentTitle: translate(opts.T, "form.consents"),
		RequiredHint: translate(opts.T, "form.required_hint"),
		SaveDraft:    translate(opts.T, "form.save_draft"),
		Submit:       translate(opts.T, "form.submit"),
	}

	for _, section := range SortedSections(cfg) {
		ps := pageSection{
			Title:       section.Title,
			Description: section.Description,
			Collapsible: section.Collapsible,
		}
		for _, applicant := range applicants {
			pa := pageApplicant{}
			if applicant != ApplicantNone {
				pa.Label = ApplicantLabel(applicant, opts.T)
			}
			bucket, nested := payload.Bucket(applicant, section.ID)
			fields := section.Fields
			if len(fields) == 0 && nested {
				fields = legacyFields(bucket, opts.T)
			}
			for _, field := range fields {
				control, err := RenderField(field, bucket[field.Name], RenderOptions{
					T:         opts.T,
					Applicant: applicant,
					SectionID: section.ID,
					ReadOnly:  opts.ReadOnly,
				})
				if err != nil {
					return err
				}
				pa.Fields = append(pa.Fields, control)
			}
			ps.Applicants = append(ps.Applicants, pa)
		}
		page.Sections = append(page.Sections, ps)
	}

	for i, consent := range cfg.ConsentForms {
		page.Consents = append(page.Consents, pageConsent{
			Key:          consent.ConsentKey(i),
			Title:        consent.Title,
			Content:      consent.Content,
			CheckboxText: consent.CheckboxText,
			Required:     consent.Required,
			Accepted:     payload.ConsentAccepted(consent, i),
		})
	}

	return pageTemplate.Execute(w, page)
}

// legacyFields derives field descriptors from the keys of a section bucket.
func legacyFields(bucket map[string]interface{}, t func(string) string) []models.FormField {
	keys := make([]string, 0, len(bucket))
	for key := range bucket {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]models.FormField, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, models.FormField{
			Name:  key,
			Label: utils.FieldLabel(key, t),
			Type:  utils.InferFieldType(key, bucket[key]),
		})
	}
	return fields
}
