package export

import (
	"strings"
	"time"
)

// Filename derives the download name "<name>_<YYYY-MM-DD>.pdf" with every
// character outside [A-Za-z0-9] stripped from the name.
func Filename(formName string, date time.Time) string {
	var b strings.Builder
	for _, r := range formName {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "form"
	}
	if date.IsZero() {
		date = time.Now()
	}
	return name + "_" + date.Format("2006-01-02") + ".pdf"
}
