package forms

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"FIN-COACH/internal/models"
	"FIN-COACH/internal/utils"
)

// RenderOptions binds a field control to its place in the payload.
type RenderOptions struct {
	T         func(string) string
	Applicant int
	SectionID string
	ReadOnly  bool
}

type optionData struct {
	Value    string
	Label    string
	Selected bool
}

type controlData struct {
	ID                string
	Name              string
	Label             string
	Kind              string
	InputType         string
	Value             string
	Placeholder       string
	SelectPlaceholder string
	Min               string
	Max               string
	Pattern           string
	Required          bool
	Checked           bool
	Disabled          bool
	Options           []optionData
}

var controlTemplate = template.Must(template.New("control").Parse(`<div class="field{{if .Required}} field-required{{end}}">
<label for="{{.ID}}">{{.Label}}{{if .Required}} <span class="required-mark">*</span>{{end}}</label>
{{- if eq .Kind "select"}}
<select id="{{.ID}}" name="{{.Name}}"{{if .Required}} required{{end}}{{if .Disabled}} disabled{{end}}>
<option value="">{{.SelectPlaceholder}}</option>
{{- range .Options}}
<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
{{- else if eq .Kind "textarea"}}
<textarea id="{{.ID}}" name="{{.Name}}" rows="4" placeholder="{{.Placeholder}}"{{if .Required}} required{{end}}{{if .Disabled}} disabled{{end}}>{{.Value}}</textarea>
{{- else if eq .Kind "checkbox"}}
<input type="hidden" name="{{.Name}}" value="false">
<input type="checkbox" id="{{.ID}}" name="{{.Name}}" value="true"{{if .Checked}} checked{{end}}{{if .Required}} required{{end}}{{if .Disabled}} disabled{{end}}>
{{- else}}
<input type="{{.InputType}}" id="{{.ID}}" name="{{.Name}}" value="{{.Value}}" placeholder="{{.Placeholder}}"{{with .Min}} min="{{.}}"{{end}}{{with .Max}} max="{{.}}"{{end}}{{with .Pattern}} pattern="{{.}}"{{end}}{{if eq .InputType "number"}} step="any"{{end}}{{if .Required}} required{{end}}{{if .Disabled}} disabled{{end}}>
{{- end}}
</div>`))

// InputName is the form-post name of a field: "section.field", prefixed
// with the applicant key on dual forms.
func InputName(applicant int, sectionID, fieldName string) string {
	name := sectionID + "." + fieldName
	if key := ApplicantKey(applicant); key != "" {
		name = key + "." + name
	}
	return name
}

// RenderField renders the editable control for one field bound to value.
func RenderField(field models.FormField, value interface{}, opts RenderOptions) (template.HTML, error) {
	name := InputName(opts.Applicant, opts.SectionID, field.Name)
	data := controlData{
		ID:          strings.ReplaceAll(name, ".", "-"),
		Name:        name,
		Label:       field.Label,
		Value:       FormatInputValue(value),
		Placeholder: field.Placeholder,
		Required:    field.Required,
		Disabled:    opts.ReadOnly,
	}
	if data.Label == "" {
		data.Label = utils.FieldLabel(field.Name, opts.T)
	}

	switch field.Type {
	case models.FieldTypeSelect:
		data.Kind = "select"
		data.SelectPlaceholder = translate(opts.T, "form.select_placeholder")
		options := field.Options
		if len(options) == 0 {
			options = utils.EnumerationOptions(field.Name, opts.T)
		}
		for _, option := range options {
			data.Options = append(data.Options, optionData{
				Value:    option.Value,
				Label:    option.Label,
				Selected: option.Value == data.Value,
			})
		}
	case models.FieldTypeTextarea:
		data.Kind = "textarea"
	case models.FieldTypeCheckbox:
		data.Kind = "checkbox"
		data.Checked = truthy(value)
	default:
		data.Kind = "input"
		data.InputType = string(field.Type)
		if !field.Type.Valid() {
			data.InputType = string(models.FieldTypeText)
		}
		if v := field.Validation; v != nil {
			if v.Min != nil {
				data.Min = strconv.FormatFloat(*v.Min, 'f', -1, 64)
			}
			if v.Max != nil {
				data.Max = strconv.FormatFloat(*v.Max, 'f', -1, 64)
			}
			data.Pattern = v.Pattern
		}
	}

	var buf bytes.Buffer
	if err := controlTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render field %s: %w", field.Name, err)
	}
	return template.HTML(buf.String()), nil
}

// FormatInputValue renders a stored value as an input value attribute.
func FormatInputValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	if n, ok := utils.ToFloat(value); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

// NormalizeValue converts a raw edit into the field's value domain. Numbers
// that fail to parse become 0; dates pass through unchanged.
func NormalizeValue(field models.FormField, raw string) interface{} {
	switch field.Type {
	case models.FieldTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0.0
		}
		return n
	case models.FieldTypeCheckbox:
		return parseBool(raw)
	}
	return raw
}

// ApplyEdits merges posted form values into a copy of data. Keys follow
// InputName; consent keys are stored as booleans. The "action" key of the
// submit buttons is ignored.
func ApplyEdits(cfg *models.FormConfiguration, data map[string]interface{}, form url.Values) (map[string]interface{}, error) {
	result := CloneData(data)
	verr := &ValidationError{}

	sections := make(map[string]models.Section, len(cfg.Sections))
	for _, section := range cfg.Sections {
		sections[section.ID] = section
	}
	consents := make(map[string]bool, len(cfg.ConsentForms))
	for i, consent := range cfg.ConsentForms {
		consents[consent.ConsentKey(i)] = true
	}

	for name, values := range form {
		if name == "action" || len(values) == 0 {
			continue
		}
		raw := values[len(values)-1]

		if isConsentKey(name) {
			if !consents[name] {
				verr.add(name, "unknown consent")
				continue
			}
			result[name] = parseBool(raw)
			continue
		}

		applicant, sectionID, fieldName, ok := splitInputName(name, cfg.IsDual())
		if !ok {
			verr.add(name, "unknown form input")
			continue
		}
		section, ok := sections[sectionID]
		if !ok {
			verr.add(name, "unknown section")
			continue
		}

		var value interface{}
		if len(section.Fields) > 0 {
			field, ok := findField(section, fieldName)
			if !ok {
				verr.add(name, "unknown field")
				continue
			}
			value = NormalizeValue(field, raw)
		} else {
			bucket, _ := ParsePayload(result).Bucket(applicant, sectionID)
			value = NormalizeValue(models.FormField{Type: utils.InferFieldType(fieldName, bucket[fieldName])}, raw)
		}
		SetValue(result, applicant, sectionID, fieldName, value)
	}

	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return result, nil
}

func splitInputName(name string, dual bool) (applicant int, sectionID, fieldName string, ok bool) {
	parts := strings.Split(name, ".")
	if dual {
		if len(parts) != 3 {
			return 0, "", "", false
		}
		switch parts[0] {
		case KeyApplicant1:
			applicant = Applicant1
		case KeyApplicant2:
			applicant = Applicant2
		default:
			return 0, "", "", false
		}
		return applicant, parts[1], parts[2], parts[1] != "" && parts[2] != ""
	}
	if len(parts) != 2 {
		return 0, "", "", false
	}
	return ApplicantNone, parts[0], parts[1], parts[0] != "" && parts[1] != ""
}

func translate(t func(string) string, key string) string {
	if t == nil {
		return key
	}
	return t(key)
}
