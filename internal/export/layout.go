package export

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/models"
)

// A4 geometry in millimetres.
const (
	PageWidth     = 210.0
	PageHeight    = 297.0
	MarginTop     = 20.0
	MarginBottom  = 15.0
	MarginX       = 15.0
	FooterHeight  = 10.0
	LineHeight    = 7.0
	HeadingHeight = 11.0
	TitleHeight   = 16.0
	LogoHeight    = 22.0

	SignatureHeight = 45.0
	SectionSpacing  = 4.0

	// ContentBottom is the lowest y a block may reach before the footer.
	ContentBottom = PageHeight - MarginBottom - FooterHeight

	// ConsentPreviewLines is how much consent text the document reproduces.
	ConsentPreviewLines = 10
)

// Approximate characters per line for each text column at body font size.
const (
	labelChars     = 34
	valueChars     = 56
	tableChars     = 28
	paragraphChars = 95
)

type BlockKind string

const (
	BlockLogo          BlockKind = "logo"
	BlockTitle         BlockKind = "title"
	BlockHeading       BlockKind = "heading"
	BlockText          BlockKind = "text"
	BlockRow           BlockKind = "row"
	BlockTableHeader   BlockKind = "table-header"
	BlockTableRow      BlockKind = "table-row"
	BlockConsent       BlockKind = "consent"
	BlockSignature     BlockKind = "signature"
	BlockSignaturePair BlockKind = "signature-pair"
)

// SignatureView is one rendered signature slot.
type SignatureView struct {
	Label   string
	Image   string
	Caption string
	Text    string
}

// Block is a positioned element on a page. Y and Height are millimetres.
type Block struct {
	Kind       BlockKind
	Y          float64
	Height     float64
	Text       string
	Label      string
	Lines      []string
	Cells      [][]string
	Shaded     bool
	Accepted   bool
	Image      string
	Signatures []SignatureView
}

type Page struct {
	Number        int
	Blocks        []Block
	FooterCaption string
	FooterPage    string
}

// Document is the laid-out export, ready for HTML rendering.
type Document struct {
	Language string
	Title    string
	Pages    []Page
}

// Metadata is the cover page content.
type Metadata struct {
	FormName       string
	FormType       models.FormType
	Version        string
	SubmissionDate time.Time
	Status         models.SubmissionStatus
	ClientName     string
	ClientEmail    string
}

// SignatureInput is a signature after decoding. Image is a data URI and is
// empty when no signature was given; Invalid marks an undecodable image.
type SignatureInput struct {
	Applicant int
	Image     string
	Invalid   bool
	SignedAt  time.Time
}

type ConsentInput struct {
	Title    string
	Content  string
	Accepted bool
}

// Content is everything the layout engine places.
type Content struct {
	Language   string
	Meta       Metadata
	Dual       bool
	Sections   []forms.SectionData
	Consents   []ConsentInput
	Signatures []SignatureInput
	Logo       string
	Caption    string
}

type layoutEngine struct {
	doc *Document
	f   *Formatter
	y   float64
}

// LayoutDocument paginates content onto A4 pages. Footers are written in a
// final pass once the page count is known.
func LayoutDocument(c Content, f *Formatter) *Document {
	e := &layoutEngine{
		doc: &Document{Language: c.Language, Title: c.Meta.FormName},
		f:   f,
	}

	e.newPage()
	e.coverPage(c)

	if c.Dual {
		if len(c.Sections) > 0 {
			e.newPage()
			e.dualSections(c.Sections)
		}
		if len(c.Consents) > 0 {
			e.newPage()
			e.consents(c.Consents)
		}
		e.newPage()
		e.dualSignatures(c.Signatures)
	} else if len(c.Sections) > 0 || len(c.Consents) > 0 || hasSignature(c.Signatures) {
		e.newPage()
		e.singleSections(c.Sections)
		if len(c.Consents) > 0 {
			if len(c.Sections) > 0 {
				e.gap()
			}
			e.consents(c.Consents)
		}
		e.singleSignature(c.Signatures)
	}

	e.footers(c.Caption)
	return e.doc
}

func hasSignature(signatures []SignatureInput) bool {
	for _, sig := range signatures {
		if sig.Image != "" || sig.Invalid {
			return true
		}
	}
	return false
}

func (e *layoutEngine) newPage() {
	e.doc.Pages = append(e.doc.Pages, Page{Number: len(e.doc.Pages) + 1})
	e.y = MarginTop
}

func (e *layoutEngine) page() *Page {
	return &e.doc.Pages[len(e.doc.Pages)-1]
}

func (e *layoutEngine) fits(height float64) bool {
	return e.y+height <= ContentBottom
}

// reserve starts a new page unless height still fits, for keeping a
// heading together with its first line.
func (e *layoutEngine) reserve(height float64) {
	if !e.fits(height) && len(e.page().Blocks) > 0 {
		e.newPage()
	}
}

func (e *layoutEngine) place(b Block) {
	e.reserve(b.Height)
	b.Y = e.y
	e.page().Blocks = append(e.page().Blocks, b)
	e.y += b.Height
}

func (e *layoutEngine) gap() {
	e.y += SectionSpacing
}

func (e *layoutEngine) coverPage(c Content) {
	t := e.f.T
	if c.Logo != "" {
		e.place(Block{Kind: BlockLogo, Height: LogoHeight, Image: c.Logo})
	}
	e.place(Block{Kind: BlockTitle, Height: TitleHeight, Text: t("pdf.title")})

	meta := c.Meta
	e.row(t("pdf.form_name"), meta.FormName)
	e.row(t("pdf.form_type"), translated(t, "form_types.", string(meta.FormType)))
	e.row(t("pdf.version"), meta.Version)
	e.row(t("pdf.submission_date"), e.f.Date(meta.SubmissionDate))
	e.row(t("pdf.status"), translated(t, "status.", string(meta.Status)))

	e.gap()
	e.place(Block{Kind: BlockHeading, Height: HeadingHeight, Text: t("pdf.client")})
	e.row(t("pdf.client_name"), meta.ClientName)
	e.row(t("pdf.client_email"), meta.ClientEmail)
}

func (e *layoutEngine) row(label, value string) {
	if strings.TrimSpace(value) == "" {
		value = e.f.T("common.not_provided")
	}
	labelLines := wrapText(label, labelChars)
	valueLines := wrapText(value, valueChars)
	e.place(Block{
		Kind:   BlockRow,
		Height: LineHeight * float64(max(len(labelLines), len(valueLines))),
		Label:  label,
		Text:   value,
		Lines:  valueLines,
	})
}

func (e *layoutEngine) sectionHeading(index int, title, description string) {
	e.reserve(HeadingHeight + LineHeight)
	e.place(Block{Kind: BlockHeading, Height: HeadingHeight, Text: strconv.Itoa(index) + ". " + title})
	if description != "" {
		lines := wrapText(description, paragraphChars)
		e.place(Block{Kind: BlockText, Height: LineHeight * float64(len(lines)), Text: description, Lines: lines})
	}
}

func (e *layoutEngine) singleSections(sections []forms.SectionData) {
	for i, section := range sections {
		if i > 0 {
			e.gap()
		}
		e.sectionHeading(i+1, section.Title, section.Description)
		for _, field := range section.Fields {
			e.row(field.Label, e.f.Value(field.Value, field.Type))
		}
	}
}

type dualGroup struct {
	sectionID   string
	title       string
	description string
	names       []string
	labels      map[string]string
	values      [2]map[string]string
}

// groupDual pairs applicant sections by section id and their fields by name.
func groupDual(sections []forms.SectionData, f *Formatter) []*dualGroup {
	var groups []*dualGroup
	byID := map[string]*dualGroup{}

	for _, section := range sections {
		g, ok := byID[section.SectionID]
		if !ok {
			g = &dualGroup{
				sectionID:   section.SectionID,
				title:       section.SectionTitle,
				description: section.Description,
				labels:      map[string]string{},
				values:      [2]map[string]string{{}, {}},
			}
			if g.title == "" {
				g.title = section.Title
			}
			byID[section.SectionID] = g
			groups = append(groups, g)
		}

		slot := 0
		if section.Applicant == forms.Applicant2 {
			slot = 1
		}
		for _, field := range section.Fields {
			if _, seen := g.labels[field.Name]; !seen {
				g.labels[field.Name] = field.Label
				g.names = append(g.names, field.Name)
			}
			g.values[slot][field.Name] = f.Value(field.Value, field.Type)
		}
	}
	return groups
}

func (e *layoutEngine) dualSections(sections []forms.SectionData) {
	t := e.f.T
	header := Block{
		Kind:   BlockTableHeader,
		Height: LineHeight,
		Cells: [][]string{
			{t("pdf.field")},
			{forms.ApplicantLabel(forms.Applicant1, t)},
			{forms.ApplicantLabel(forms.Applicant2, t)},
		},
	}
	notProvided := t("common.not_provided")

	for i, g := range groupDual(sections, e.f) {
		if i > 0 {
			e.gap()
		}
		e.sectionHeading(i+1, g.title, g.description)
		e.reserve(header.Height + LineHeight)
		e.place(header)

		for r, name := range g.names {
			cells := [][]string{wrapText(g.labels[name], tableChars)}
			for slot := 0; slot < 2; slot++ {
				value, ok := g.values[slot][name]
				if !ok {
					value = notProvided
				}
				cells = append(cells, wrapText(value, tableChars))
			}
			lines := max(len(cells[0]), len(cells[1]), len(cells[2]))
			block := Block{
				Kind:   BlockTableRow,
				Height: LineHeight * float64(lines),
				Cells:  cells,
				Shaded: r%2 == 1,
			}
			if !e.fits(block.Height) {
				e.newPage()
				e.place(header)
			}
			e.place(block)
		}
	}
}

func (e *layoutEngine) consents(consents []ConsentInput) {
	t := e.f.T
	e.reserve(HeadingHeight + LineHeight*3)
	e.place(Block{Kind: BlockHeading, Height: HeadingHeight, Text: t("pdf.consents")})

	for _, consent := range consents {
		lines := wrapText(consent.Content, paragraphChars)
		if len(lines) > ConsentPreviewLines {
			lines = lines[:ConsentPreviewLines]
		}
		status := t("pdf.rejected")
		if consent.Accepted {
			status = t("pdf.accepted")
		}
		// Title line, content and status line.
		e.place(Block{
			Kind:     BlockConsent,
			Height:   LineHeight*float64(len(lines)+2) + SectionSpacing,
			Label:    consent.Title,
			Lines:    lines,
			Text:     status,
			Accepted: consent.Accepted,
		})
	}
}

func (e *layoutEngine) signatureView(sig SignatureInput, label string) SignatureView {
	t := e.f.T
	view := SignatureView{Label: label}
	switch {
	case sig.Invalid:
		view.Text = t("pdf.signature_error")
	case sig.Image == "":
		view.Text = t("pdf.no_signature")
	default:
		view.Image = sig.Image
		if !sig.SignedAt.IsZero() {
			view.Caption = i18n.Format(t("pdf.signed_at"), map[string]string{"date": e.f.Date(sig.SignedAt)})
		}
	}
	return view
}

func (e *layoutEngine) singleSignature(signatures []SignatureInput) {
	if len(signatures) == 0 {
		return
	}
	sig := signatures[0]
	if sig.Image == "" && !sig.Invalid {
		return
	}

	e.gap()
	e.reserve(HeadingHeight + SignatureHeight)
	e.place(Block{Kind: BlockHeading, Height: HeadingHeight, Text: e.f.T("pdf.signature")})
	e.place(Block{
		Kind:       BlockSignature,
		Height:     SignatureHeight,
		Signatures: []SignatureView{e.signatureView(sig, "")},
	})
}

func (e *layoutEngine) dualSignatures(signatures []SignatureInput) {
	t := e.f.T
	views := make([]SignatureView, 2)
	for slot, applicant := range []int{forms.Applicant1, forms.Applicant2} {
		sig := SignatureInput{Applicant: applicant}
		for _, s := range signatures {
			if s.Applicant == applicant {
				sig = s
			}
		}
		views[slot] = e.signatureView(sig, forms.ApplicantLabel(applicant, t))
	}

	e.place(Block{Kind: BlockHeading, Height: HeadingHeight, Text: t("pdf.signatures")})
	e.place(Block{Kind: BlockSignaturePair, Height: SignatureHeight, Signatures: views})
}

func (e *layoutEngine) footers(caption string) {
	total := strconv.Itoa(len(e.doc.Pages))
	template := e.f.T("pdf.page_of")
	for i := range e.doc.Pages {
		e.doc.Pages[i].FooterCaption = caption
		e.doc.Pages[i].FooterPage = i18n.Format(template, map[string]string{
			"page":  strconv.Itoa(i + 1),
			"total": total,
		})
	}
}

func translated(t func(string) string, prefix, value string) string {
	if value == "" {
		return ""
	}
	if label := t(prefix + value); label != prefix+value {
		return label
	}
	return value
}

// wrapText breaks text into lines of at most width runes at word
// boundaries. Words longer than width are split.
func wrapText(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			for utf8.RuneCountInString(word) > width {
				if current != "" {
					lines = append(lines, current)
					current = ""
				}
				runes := []rune(word)
				lines = append(lines, string(runes[:width]))
				word = string(runes[width:])
			}
			switch {
			case current == "":
				current = word
			case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
				current += " " + word
			default:
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
