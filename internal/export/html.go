package export

import (
	"bytes"
	"fmt"
	"html/template"
)

type htmlSignature struct {
	Label   string
	Image   template.URL
	Caption string
	Text    string
}

type htmlBlock struct {
	Kind       string
	Style      template.CSS
	Text       string
	Label      string
	Lines      []string
	Cells      [][]string
	Shaded     bool
	Accepted   bool
	Image      template.URL
	Signatures []htmlSignature
}

type htmlPage struct {
	Number        int
	Blocks        []htmlBlock
	FooterCaption string
	FooterPage    string
}

type htmlDocument struct {
	Language string
	Title    string
	Pages    []htmlPage
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="{{.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page{size:A4;margin:0}
body{margin:0;font-family:Helvetica,Arial,sans-serif;font-size:10pt;color:#1f2937}
.page{position:relative;width:210mm;height:297mm;overflow:hidden;page-break-after:always}
.page:last-child{page-break-after:auto}
.block{position:absolute;left:15mm;right:15mm;line-height:7mm;overflow:hidden}
.logo img{max-height:20mm}
.title{font-size:18pt;font-weight:bold;color:#1e3a8a}
.heading{font-size:13pt;font-weight:bold;color:#1e3a8a;border-bottom:.3mm solid #1e3a8a}
.row{display:flex}
.row .label{width:70mm;font-weight:bold}
.row .value{flex:1}
.table-header,.table-row{display:flex}
.table-header{background:#1e3a8a;color:#fff;font-weight:bold}
.cell{width:60mm;padding:0 1.5mm;box-sizing:border-box}
.shaded{background:#f3f4f6}
.consent .consent-title{font-weight:bold}
.consent .accepted{color:#15803d;font-weight:bold}
.consent .rejected{color:#b91c1c;font-weight:bold}
.signature-pair{display:flex;gap:10mm}
.signature-slot{flex:1}
.signature-slot img{max-height:30mm;max-width:80mm}
.signature-error{color:#b91c1c}
.footer{position:absolute;left:15mm;right:15mm;bottom:8mm;display:flex;justify-content:space-between;font-size:8pt;color:#6b7280;border-top:.2mm solid #d1d5db;padding-top:1mm}
</style>
</head>
<body>
{{- range .Pages}}
<div class="page" data-page="{{.Number}}">
{{- range .Blocks}}
<div class="block {{.Kind}}{{if .Shaded}} shaded{{end}}" style="{{.Style}}">
{{- if eq .Kind "logo"}}<img src="{{.Image}}" alt="">
{{- else if eq .Kind "title"}}{{.Text}}
{{- else if eq .Kind "heading"}}{{.Text}}
{{- else if eq .Kind "text"}}{{range .Lines}}<div>{{.}}</div>{{end}}
{{- else if eq .Kind "row"}}<div class="label">{{.Label}}</div><div class="value">{{range .Lines}}<div>{{.}}</div>{{end}}</div>
{{- else if or (eq .Kind "table-header") (eq .Kind "table-row")}}{{range .Cells}}<div class="cell">{{range .}}<div>{{.}}</div>{{end}}</div>{{end}}
{{- else if eq .Kind "consent"}}<div class="consent-title">{{.Label}}</div>{{range .Lines}}<div>{{.}}</div>{{end}}<div class="{{if .Accepted}}accepted{{else}}rejected{{end}}">{{.Text}}</div>
{{- else}}<div class="signature-pair">{{range .Signatures}}<div class="signature-slot">{{with .Label}}<div class="label">{{.}}</div>{{end}}{{if .Image}}<img src="{{.Image}}" alt="">{{end}}{{with .Caption}}<div>{{.}}</div>{{end}}{{with .Text}}<div class="signature-error">{{.}}</div>{{end}}</div>{{end}}</div>
{{- end}}
</div>
{{- end}}
<div class="footer"><span>{{.FooterCaption}}</span><span>{{.FooterPage}}</span></div>
</div>
{{- end}}
</body>
</html>
`))

// RenderHTML renders a laid-out document as one self-contained HTML page
// per A4 sheet.
func RenderHTML(doc *Document) ([]byte, error) {
	view := htmlDocument{Language: doc.Language, Title: doc.Title}
	for _, page := range doc.Pages {
		hp := htmlPage{
			Number:        page.Number,
			FooterCaption: page.FooterCaption,
			FooterPage:    page.FooterPage,
		}
		for _, b := range page.Blocks {
			hb := htmlBlock{
				Kind:     string(b.Kind),
				Style:    template.CSS(fmt.Sprintf("top:%.2fmm;height:%.2fmm", b.Y, b.Height)),
				Text:     b.Text,
				Label:    b.Label,
				Lines:    b.Lines,
				Cells:    b.Cells,
				Shaded:   b.Shaded,
				Accepted: b.Accepted,
				Image:    template.URL(b.Image),
			}
			for _, sig := range b.Signatures {
				hb.Signatures = append(hb.Signatures, htmlSignature{
					Label:   sig.Label,
					Image:   template.URL(sig.Image),
					Caption: sig.Caption,
					Text:    sig.Text,
				})
			}
			hp.Blocks = append(hp.Blocks, hb)
		}
		view.Pages = append(view.Pages, hp)
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render document html: %w", err)
	}
	return buf.Bytes(), nil
}
