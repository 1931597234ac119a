package utils

import (
	"encoding/json"
	"strings"

	"FIN-COACH/internal/models"
)

// InferFieldType guesses a display type for a data point that has no field
// schema. Rules are applied in order: boolean, numeric, date-like key,
// email-like key, text.
func InferFieldType(key string, value interface{}) models.FieldType {
	if _, ok := value.(bool); ok {
		return models.FieldTypeCheckbox
	}
	if IsNumeric(value) {
		return models.FieldTypeNumber
	}

	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "date") || strings.HasSuffix(lowerKey, "_at") {
		return models.FieldTypeDate
	}
	if strings.Contains(lowerKey, "email") {
		return models.FieldTypeEmail
	}

	return models.FieldTypeText
}

// IsNumeric reports whether value holds a Go or JSON number.
func IsNumeric(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	}
	return false
}

// ToFloat converts a numeric value to float64.
func ToFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Option enumerations for select fields whose configuration carries no
// options. Labels are translated from "options.<enumeration>.<value>".
var enumerationOptions = map[string][]string{
	"marital_status": {"single", "married", "registered_partnership", "cohabiting", "divorced", "widowed"},
	"housing":        {"owner", "tenant", "with_parents", "other"},
	"contract_type":  {"permanent", "temporary", "self_employed", "none"},
	"loan_type":      {"mortgage", "personal_loan", "revolving_credit", "student_loan", "car_loan"},
	"relation":       {"partner", "child", "parent", "other"},
}

// EnumerationOptions returns the localized hardcoded options for a field
// name, or nil when the name is not a known enumeration.
func EnumerationOptions(fieldName string, t func(string) string) []models.FieldOption {
	values, ok := enumerationOptions[fieldName]
	if !ok {
		return nil
	}

	options := make([]models.FieldOption, 0, len(values))
	for _, value := range values {
		label := value
		if t != nil {
			label = t("options." + fieldName + "." + value)
		}
		options = append(options, models.FieldOption{Value: value, Label: label})
	}
	return options
}

// IsEnumeration reports whether fieldName has hardcoded options.
func IsEnumeration(fieldName string) bool {
	_, ok := enumerationOptions[fieldName]
	return ok
}
