package forms

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"FIN-COACH/internal/i18n"
	"FIN-COACH/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFieldControls(t *testing.T) {
	opts := RenderOptions{T: en, SectionID: "personal"}

	tests := []struct {
		name     string
		field    models.FormField
		value    interface{}
		contains []string
	}{
		{
			name:     "text",
			field:    models.FormField{Name: "first_name", Label: "First name", Type: models.FieldTypeText, Placeholder: "Anna"},
			value:    "Jo<b>",
			contains: []string{`type="text"`, `name="personal.first_name"`, `value="Jo&lt;b&gt;"`, `placeholder="Anna"`},
		},
		{
			name:     "number with constraints",
			field:    models.FormField{Name: "rent", Type: models.FieldTypeNumber, Validation: &models.FieldValidation{Min: float(0), Max: float(5000)}},
			value:    950.0,
			contains: []string{`type="number"`, `value="950"`, `min="0"`, `max="5000"`, `step="any"`, ">Rent<"},
		},
		{
			name:     "required date",
			field:    models.FormField{Name: "start_date", Label: "Start", Type: models.FieldTypeDate, Required: true},
			value:    "2024-02-01",
			contains: []string{`type="date"`, `value="2024-02-01"`, ` required`, `required-mark`},
		},
		{
			name:     "textarea",
			field:    models.FormField{Name: "notes", Label: "Notes", Type: models.FieldTypeTextarea},
			value:    "line",
			contains: []string{`<textarea`, `>line</textarea>`},
		},
		{
			name:     "checkbox",
			field:    models.FormField{Name: "has_car", Label: "Car", Type: models.FieldTypeCheckbox},
			value:    true,
			contains: []string{`type="hidden" name="personal.has_car" value="false"`, `type="checkbox"`, ` checked`},
		},
		{
			name: "select with declared options",
			field: models.FormField{Name: "plan", Label: "Plan", Type: models.FieldTypeSelect, Options: []models.FieldOption{
				{Value: "a", Label: "Plan A"}, {Value: "b", Label: "Plan B"},
			}},
			value:    "b",
			contains: []string{`<select`, `<option value="b" selected>Plan B</option>`, `Select an option`},
		},
		{
			name:     "select from enumeration",
			field:    models.FormField{Name: "housing", Label: "Housing", Type: models.FieldTypeSelect},
			value:    "tenant",
			contains: []string{`<option value="tenant" selected>`, `<option value="owner">`},
		},
		{
			name:     "unknown type renders text input",
			field:    models.FormField{Name: "misc", Label: "Misc", Type: "range"},
			contains: []string{`type="text"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := RenderField(tt.field, tt.value, opts)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, string(html), want)
			}
		})
	}
}

func TestRenderFieldReadOnlyAndApplicant(t *testing.T) {
	field := models.FormField{Name: "gross_income", Label: "Gross", Type: models.FieldTypeNumber}
	html, err := RenderField(field, nil, RenderOptions{T: en, Applicant: Applicant2, SectionID: "income", ReadOnly: true})
	require.NoError(t, err)

	assert.Contains(t, string(html), `name="applicant2.income.gross_income"`)
	assert.Contains(t, string(html), `id="applicant2-income-gross_income"`)
	assert.Contains(t, string(html), ` disabled`)
	assert.Contains(t, string(html), `value=""`)
}

func TestNormalizeValue(t *testing.T) {
	number := models.FormField{Type: models.FieldTypeNumber}
	checkbox := models.FormField{Type: models.FieldTypeCheckbox}
	date := models.FormField{Type: models.FieldTypeDate}
	text := models.FormField{Type: models.FieldTypeText}

	assert.Equal(t, 5000.0, NormalizeValue(number, "5000"))
	assert.Equal(t, 12.5, NormalizeValue(number, " 12.5 "))
	assert.Equal(t, 0.0, NormalizeValue(number, "abc"))
	assert.Equal(t, 0.0, NormalizeValue(number, ""))
	assert.Equal(t, true, NormalizeValue(checkbox, "on"))
	assert.Equal(t, true, NormalizeValue(checkbox, "true"))
	assert.Equal(t, false, NormalizeValue(checkbox, "false"))
	assert.Equal(t, "2024-03-01", NormalizeValue(date, "2024-03-01"))
	assert.Equal(t, " keep ", NormalizeValue(text, " keep "))
}

func TestApplyEdits(t *testing.T) {
	cfg := profileConfig()
	original := map[string]interface{}{
		"personal": map[string]interface{}{"first_name": "Old"},
		"notes":    map[string]interface{}{"custom_note": "a", "pets": 2.0},
	}
	form := url.Values{
		"personal.first_name": {"Anna"},
		"income.gross_income": {"4100"},
		"income.has_benefits": {"false", "true"},
		"notes.custom_note":   {"b"},
		"notes.pets":          {"3"},
		"consent_privacy":     {"false", "true"},
		"action":              {"draft"},
	}

	result, err := ApplyEdits(cfg, original, form)
	require.NoError(t, err)

	personal := result["personal"].(map[string]interface{})
	income := result["income"].(map[string]interface{})
	notes := result["notes"].(map[string]interface{})
	assert.Equal(t, "Anna", personal["first_name"])
	assert.Equal(t, 4100.0, income["gross_income"])
	assert.Equal(t, true, income["has_benefits"])
	assert.Equal(t, "b", notes["custom_note"])
	assert.Equal(t, 3.0, notes["pets"])
	assert.Equal(t, true, result["consent_privacy"])
	assert.NotContains(t, result, "action")

	assert.Equal(t, "Old", original["personal"].(map[string]interface{})["first_name"], "input is not mutated")
}

func TestApplyEditsDual(t *testing.T) {
	cfg := profileConfig()
	cfg.FormType = models.FormTypeDual

	result, err := ApplyEdits(cfg, nil, url.Values{
		"applicant2.income.gross_income": {"1500"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, result["applicant2"].(map[string]interface{})["income"].(map[string]interface{})["gross_income"])

	_, err = ApplyEdits(cfg, nil, url.Values{"income.gross_income": {"1"}})
	assert.Error(t, err)
}

func TestApplyEditsRejectsUnknownInputs(t *testing.T) {
	_, err := ApplyEdits(profileConfig(), nil, url.Values{
		"personal.nickname": {"x"},
		"hobbies.x":         {"y"},
		"toplevel":          {"z"},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 3)

	_, err = ApplyEdits(profileConfig(), nil, url.Values{"consent_marketing": {"on"}})
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, "consent_marketing", verr.Problems[0].Path)
}

func TestApplyEditsPositionalConsents(t *testing.T) {
	cfg := profileConfig()
	cfg.ConsentForms = []models.ConsentForm{{Title: "Privacy"}, {Title: "Sharing"}}

	result, err := ApplyEdits(cfg, nil, url.Values{"consent_1": {"on"}})
	require.NoError(t, err)
	assert.Equal(t, true, result["consent_1"])
	assert.NotContains(t, result, "consent_0")

	_, err = ApplyEdits(cfg, nil, url.Values{"consent_2": {"on"}})
	assert.Error(t, err)
}

func TestRenderForm(t *testing.T) {
	cfg := profileConfig()
	cfg.Sections[0].Collapsible = true
	data := map[string]interface{}{
		"personal":        map[string]interface{}{"first_name": "Anna"},
		"notes":           map[string]interface{}{"custom_note": "hello"},
		"consent_privacy": true,
	}

	var buf bytes.Buffer
	err := RenderForm(&buf, cfg, data, FormOptions{T: en, Language: "en", Action: "/api/v1/submissions/s1/form"})
	require.NoError(t, err)
	html := buf.String()

	assert.Contains(t, html, `<html lang="en">`)
	assert.Contains(t, html, `action="/api/v1/submissions/s1/form"`)
	assert.Contains(t, html, `<details open>`)
	assert.Contains(t, html, `value="Anna"`)
	assert.Contains(t, html, `name="notes.custom_note"`)
	assert.Contains(t, html, `name="consent_privacy" value="true" checked`)
	assert.Contains(t, html, `name="consent_1" value="true">`)
	assert.Contains(t, html, `value="submit"`)
	assert.Less(t, strings.Index(html, "Personal"), strings.Index(html, "Income"))
}

func TestRenderFormDualReadOnly(t *testing.T) {
	cfg := incomeConfig()
	cfg.FormType = models.FormTypeDual
	nl := i18n.MustLoad("en").For("nl")

	var buf bytes.Buffer
	err := RenderForm(&buf, cfg, nil, FormOptions{T: nl, Language: "nl", ReadOnly: true})
	require.NoError(t, err)
	html := buf.String()

	assert.Contains(t, html, "Aanvrager 1")
	assert.Contains(t, html, "Aanvrager 2")
	assert.Contains(t, html, `name="applicant1.income.gross_income"`)
	assert.Contains(t, html, `name="applicant2.income.gross_income"`)
	assert.NotContains(t, html, `value="submit"`)
}
