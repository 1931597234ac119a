package forms

import (
	"FIN-COACH/internal/models"
	"FIN-COACH/internal/utils"
)

// FieldData is one label/value/type triple of the export projection.
type FieldData struct {
	Name  string           `json:"name"`
	Label string           `json:"label"`
	Value interface{}      `json:"value"`
	Type  models.FieldType `json:"type"`
}

// SectionData is a section of the export projection. Applicant is 0 for
// single-applicant forms. Title carries the applicant suffix, SectionTitle
// does not.
type SectionData struct {
	SectionID    string      `json:"section_id"`
	Applicant    int         `json:"applicant"`
	Title        string      `json:"title"`
	SectionTitle string      `json:"section_title"`
	Description  string      `json:"description,omitempty"`
	Fields       []FieldData `json:"fields"`
}

// ExtractSections merges a configuration with submitted data into ordered
// sections of label/value/type triples. Sections without fields are dropped.
func ExtractSections(cfg *models.FormConfiguration, data map[string]interface{}, t func(string) string) []SectionData {
	sections := SortedSections(cfg)
	if len(sections) == 0 {
		return []SectionData{}
	}

	// The payload shape alone decides dual mode, whatever the form type says.
	payload := ParsePayload(data)
	applicants := payload.Applicants()

	result := make([]SectionData, 0, len(sections)*len(applicants))
	for _, section := range sections {
		for _, applicant := range applicants {
			fields := extractFields(section, payload, applicant, t)
			if len(fields) == 0 {
				continue
			}
			result = append(result, SectionData{
				SectionID:    section.ID,
				Applicant:    applicant,
				Title:        sectionTitle(section.Title, applicant, t),
				SectionTitle: section.Title,
				Description:  section.Description,
				Fields:       fields,
			})
		}
	}
	return result
}

func extractFields(section models.Section, payload *Payload, applicant int, t func(string) string) []FieldData {
	bucket, nested := payload.Bucket(applicant, section.ID)

	if len(section.Fields) > 0 {
		// An applicant without any value for the section gets no section.
		if applicant != ApplicantNone && !hasAnyField(bucket, section.Fields) {
			return nil
		}
		fields := make([]FieldData, 0, len(section.Fields))
		for _, field := range section.Fields {
			label := field.Label
			if label == "" {
				label = utils.FieldLabel(field.Name, t)
			}
			fields = append(fields, FieldData{
				Name:  field.Name,
				Label: label,
				Value: bucket[field.Name],
				Type:  field.Type,
			})
		}
		return fields
	}

	// Sections without a field list only read a bucket nested under their id.
	if !nested || len(bucket) == 0 {
		return nil
	}
	legacy := legacyFields(bucket, t)
	fields := make([]FieldData, 0, len(legacy))
	for _, field := range legacy {
		fields = append(fields, FieldData{
			Name:  field.Name,
			Label: field.Label,
			Value: bucket[field.Name],
			Type:  field.Type,
		})
	}
	return fields
}

func hasAnyField(bucket map[string]interface{}, fields []models.FormField) bool {
	for _, field := range fields {
		if _, ok := bucket[field.Name]; ok {
			return true
		}
	}
	return false
}

func sectionTitle(title string, applicant int, t func(string) string) string {
	if applicant == ApplicantNone {
		return title
	}
	return title + " - " + ApplicantLabel(applicant, t)
}

// ApplicantLabel returns the localized "Applicant N" label.
func ApplicantLabel(applicant int, t func(string) string) string {
	key := "common.applicant1"
	if applicant == Applicant2 {
		key = "common.applicant2"
	}
	if t == nil {
		return key
	}
	return t(key)
}
