package export

import (
	"fmt"
	"strings"
	"time"

	"FIN-COACH/internal/forms"
	"FIN-COACH/internal/models"
	"FIN-COACH/internal/utils"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const fallbackDateLayout = "2006-01-02"

// Formatter renders field values for display in one language.
type Formatter struct {
	t          func(string) string
	printer    *message.Printer
	dateLayout string
}

func NewFormatter(lang string, t func(string) string) *Formatter {
	if t == nil {
		t = func(key string) string { return key }
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	layout := t("format.date")
	if layout == "format.date" || layout == "" {
		layout = fallbackDateLayout
	}

	return &Formatter{
		t:          t,
		printer:    message.NewPrinter(tag),
		dateLayout: layout,
	}
}

// T returns the translation of key.
func (f *Formatter) T(key string) string {
	return f.t(key)
}

// Value formats one field value. Missing values render as the localized
// "not provided" placeholder.
func (f *Formatter) Value(value interface{}, fieldType models.FieldType) string {
	switch v := value.(type) {
	case nil:
		return f.t("common.not_provided")
	case bool:
		return f.Bool(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return f.t("common.not_provided")
		}
		if fieldType == models.FieldTypeDate {
			return f.DateString(s)
		}
		return s
	case []interface{}:
		if len(v) == 0 {
			return f.t("common.not_provided")
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, f.Value(item, models.FieldTypeText))
		}
		return strings.Join(parts, ", ")
	}

	if n, ok := utils.ToFloat(value); ok {
		return f.Number(n)
	}
	return fmt.Sprint(value)
}

func (f *Formatter) Bool(v bool) string {
	if v {
		return f.t("common.yes")
	}
	return f.t("common.no")
}

// Number applies locale thousands grouping.
func (f *Formatter) Number(n float64) string {
	return f.printer.Sprintf("%v", number.Decimal(n, number.MaxFractionDigits(2)))
}

// DateString formats a stored date, returning the raw string when it does
// not parse.
func (f *Formatter) DateString(s string) string {
	t, ok := forms.ParseDate(s)
	if !ok {
		return s
	}
	return f.Date(t)
}

func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return f.t("common.not_provided")
	}
	return t.Format(f.dateLayout)
}
