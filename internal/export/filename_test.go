package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	date := time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "IntakeForm2024_2024-06-30.pdf", Filename("Intake Form (2024)", date))
	assert.Equal(t, "Financileprofiel_2024-06-30.pdf", Filename("Financiële profiel", date))
	assert.Equal(t, "form_2024-06-30.pdf", Filename("!!!", date))
	assert.Regexp(t, `^X_\d{4}-\d{2}-\d{2}\.pdf$`, Filename("X", time.Time{}))
}
