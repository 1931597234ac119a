package models

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FieldType is the declared input type of a form field
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeCheckbox FieldType = "checkbox"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeEmail, FieldTypeTel,
		FieldTypeDate, FieldTypeSelect, FieldTypeTextarea, FieldTypeCheckbox:
		return true
	}
	return false
}

// FormType distinguishes single and dual applicant forms
type FormType string

const (
	FormTypeSingle FormType = "single"
	FormTypeDual   FormType = "dual_applicant"
)

// FieldValidation contains native input constraints for a field
type FieldValidation struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
}

type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type FormField struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Type        FieldType        `json:"type"`
	Required    bool             `json:"required"`
	Placeholder string           `json:"placeholder,omitempty"`
	Options     []FieldOption    `json:"options,omitempty"`
	Validation  *FieldValidation `json:"validation,omitempty"`
}

type Section struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Order       int         `json:"order"`
	Fields      []FormField `json:"fields,omitempty"` // empty for legacy sections that list their data keys freely
	Required    bool        `json:"required"`
	Collapsible bool        `json:"collapsible"`
}

type ConsentForm struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	CheckboxText string `json:"checkboxText"`
	Required     bool   `json:"required"`
}

type RequiredDocument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type FormConfiguration struct {
	ID           string                                `gorm:"primaryKey" json:"id"`
	Name         string                                `gorm:"not null" json:"name"`
	Description  string                                `json:"description"`
	FormType     FormType                              `gorm:"type:varchar(32)" json:"form_type"`
	Version      string                                `gorm:"type:varchar(32)" json:"version"`
	Sections     datatypes.JSONSlice[Section]          `json:"sections"`
	ConsentForms datatypes.JSONSlice[ConsentForm]      `json:"consent_forms,omitempty"`
	Documents    datatypes.JSONSlice[RequiredDocument] `json:"documents,omitempty"`
	IsActive     bool                                  `json:"is_active"`
	CreatedAt    time.Time                             `json:"created_at"`
	UpdatedAt    time.Time                             `json:"updated_at"`
	DeletedAt    gorm.DeletedAt                        `gorm:"index" json:"-"`
}

func (FormConfiguration) TableName() string {
	return "form_configurations"
}

// IsDual reports whether the configuration collects data for two applicants.
func (c *FormConfiguration) IsDual() bool {
	return c.FormType == FormTypeDual
}

// ConsentKey returns the form_data key under which acceptance of the
// consent form at index is stored.
func (c ConsentForm) ConsentKey(index int) string {
	if c.ID != "" {
		return "consent_" + c.ID
	}
	return LegacyConsentKey(index)
}

// LegacyConsentKey is the positional key used before consent forms carried ids.
func LegacyConsentKey(index int) string {
	return "consent_" + strconv.Itoa(index)
}
