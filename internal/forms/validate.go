package forms

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"

	"FIN-COACH/internal/models"
	"FIN-COACH/internal/utils"
)

// FieldProblem describes one rejected value.
type FieldProblem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a payload.
type ValidationError struct {
	Problems []FieldProblem `json:"problems"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Path+": "+p.Message)
	}
	return "invalid form data: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(path, format string, args ...interface{}) {
	e.Problems = append(e.Problems, FieldProblem{Path: path, Message: fmt.Sprintf(format, args...)})
}

// DateLayouts are the accepted encodings of a date value.
var DateLayouts = []string{"2006-01-02", time.RFC3339}

// ValidatePayload checks form data against the configuration at the API
// boundary. Empty values are accepted; required checks happen on submit.
func ValidatePayload(cfg *models.FormConfiguration, data map[string]interface{}) error {
	verr := &ValidationError{}
	payload := ParsePayload(data)

	if payload.IsDual() && !cfg.IsDual() {
		verr.add(KeyApplicant1, "applicant data is only allowed on dual applicant forms")
		return verr
	}

	sections := make(map[string]models.Section, len(cfg.Sections))
	fieldSection := make(map[string]models.Section)
	for _, section := range cfg.Sections {
		sections[section.ID] = section
		for _, field := range section.Fields {
			if _, seen := fieldSection[field.Name]; !seen {
				fieldSection[field.Name] = section
			}
		}
	}

	keys := sortedKeys(data)
	for _, key := range keys {
		value := data[key]
		switch {
		case isSignatureKey(key):
			if _, ok := value.(string); !ok && value != nil {
				verr.add(key, "signature must be a base64 string")
			}
		case isConsentKey(key):
			if _, ok := value.(bool); !ok && value != nil {
				verr.add(key, "consent must be a boolean")
			}
		case key == KeyApplicant1 || key == KeyApplicant2:
			applicantData, ok := asMap(value)
			if !ok {
				if value != nil {
					verr.add(key, "applicant data must be an object")
				}
				continue
			}
			validateApplicant(verr, key, applicantData, sections, fieldSection)
		case cfg.IsDual():
			verr.add(key, "unexpected key on a dual applicant form")
		default:
			section, ok := sections[key]
			if !ok {
				verr.add(key, "unknown section")
				continue
			}
			bucket, ok := asMap(value)
			if !ok {
				if value != nil {
					verr.add(key, "section data must be an object")
				}
				continue
			}
			validateBucket(verr, key, section, bucket)
		}
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func validateApplicant(verr *ValidationError, prefix string, data map[string]interface{}, sections map[string]models.Section, fieldSection map[string]models.Section) {
	for _, key := range sortedKeys(data) {
		value := data[key]
		if section, ok := sections[key]; ok {
			if bucket, ok := asMap(value); ok {
				validateBucket(verr, prefix+"."+key, section, bucket)
				continue
			}
		}
		// Flat applicant data keyed by field name.
		section, ok := fieldSection[key]
		if !ok {
			verr.add(prefix+"."+key, "unknown field")
			continue
		}
		field, _ := findField(section, key)
		if msg := checkValue(field, value); msg != "" {
			verr.add(prefix+"."+key, "%s", msg)
		}
	}
}

func validateBucket(verr *ValidationError, prefix string, section models.Section, bucket map[string]interface{}) {
	if len(section.Fields) == 0 {
		return
	}
	for _, key := range sortedKeys(bucket) {
		field, ok := findField(section, key)
		if !ok {
			verr.add(prefix+"."+key, "unknown field")
			continue
		}
		if msg := checkValue(field, bucket[key]); msg != "" {
			verr.add(prefix+"."+key, "%s", msg)
		}
	}
}

func findField(section models.Section, name string) (models.FormField, bool) {
	for _, field := range section.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return models.FormField{}, false
}

// checkValue returns a problem description, or "" when value fits field.
func checkValue(field models.FormField, value interface{}) string {
	if isEmpty(value) {
		return ""
	}

	switch field.Type {
	case models.FieldTypeNumber:
		n, ok := utils.ToFloat(value)
		if !ok {
			return "must be a number"
		}
		if v := field.Validation; v != nil {
			if v.Min != nil && n < *v.Min {
				return fmt.Sprintf("must be at least %v", *v.Min)
			}
			if v.Max != nil && n > *v.Max {
				return fmt.Sprintf("must be at most %v", *v.Max)
			}
		}
		return ""
	case models.FieldTypeCheckbox:
		if _, ok := value.(bool); !ok {
			return "must be a boolean"
		}
		return ""
	}

	s, ok := value.(string)
	if !ok {
		return "must be a string"
	}

	switch field.Type {
	case models.FieldTypeEmail:
		if _, err := mail.ParseAddress(s); err != nil {
			return "must be an email address"
		}
	case models.FieldTypeDate:
		if _, ok := ParseDate(s); !ok {
			return "must be a date (YYYY-MM-DD)"
		}
	case models.FieldTypeSelect:
		options := field.Options
		if len(options) == 0 {
			options = utils.EnumerationOptions(field.Name, nil)
		}
		if len(options) > 0 && !hasOption(options, s) {
			return fmt.Sprintf("%q is not one of the options", s)
		}
	}

	if v := field.Validation; v != nil && v.Pattern != "" {
		re, err := regexp.Compile("^(?:" + v.Pattern + ")$")
		if err == nil && !re.MatchString(s) {
			return "does not match the required format"
		}
	}
	return ""
}

// ParseDate parses a date value in any accepted layout.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasOption(options []models.FieldOption, value string) bool {
	for _, option := range options {
		if option.Value == value {
			return true
		}
	}
	return false
}

// MissingRequired lists required fields and consents without a value, as
// "section.field" paths prefixed by the applicant key on dual forms and
// consent keys for consents.
func MissingRequired(cfg *models.FormConfiguration, data map[string]interface{}) []string {
	payload := ParsePayload(data)
	applicants := []int{ApplicantNone}
	if cfg.IsDual() {
		applicants = []int{Applicant1, Applicant2}
	}

	var missing []string
	for _, section := range SortedSections(cfg) {
		for _, applicant := range applicants {
			bucket, _ := payload.Bucket(applicant, section.ID)
			for _, field := range section.Fields {
				if !field.Required {
					continue
				}
				value := bucket[field.Name]
				if field.Type == models.FieldTypeCheckbox {
					if b, _ := value.(bool); b {
						continue
					}
				} else if !isEmpty(value) {
					continue
				}
				path := section.ID + "." + field.Name
				if key := ApplicantKey(applicant); key != "" {
					path = key + "." + path
				}
				missing = append(missing, path)
			}
		}
	}

	for i, consent := range cfg.ConsentForms {
		if consent.Required && !payload.ConsentAccepted(consent, i) {
			missing = append(missing, consent.ConsentKey(i))
		}
	}
	return missing
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
