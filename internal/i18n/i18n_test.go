package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	b, err := Load("en")
	require.NoError(t, err)

	assert.Equal(t, "en", b.DefaultLanguage())
	assert.Equal(t, []string{"en", "fr", "nl"}, b.Languages())

	_, err = Load("xx")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	b := MustLoad("en")

	tests := []struct {
		name string
		lang string
		key  string
		want string
	}{
		{"nested key", "en", "common.yes", "Yes"},
		{"other language", "nl", "common.yes", "Ja"},
		{"deep key", "fr", "fields.income.gross_income", "Revenu brut"},
		{"unknown language uses default", "de", "common.no", "No"},
		{"missing key returns key", "nl", "does.not.exist", "does.not.exist"},
		{"non-leaf key returns key", "en", "common", "common"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Translate(tt.lang, tt.key))
		})
	}
}

func TestLookupFallsBackToDefaultLanguage(t *testing.T) {
	b := MustLoad("en")
	b.tables["nl"] = map[string]interface{}{"common": map[string]interface{}{"yes": "Ja"}}

	value, ok := b.Lookup("nl", "common.no")
	require.True(t, ok)
	assert.Equal(t, "No", value)
}

func TestResolve(t *testing.T) {
	b := MustLoad("en")

	assert.Equal(t, "en", b.Resolve(""))
	assert.Equal(t, "nl", b.Resolve("nl"))
	assert.Equal(t, "nl", b.Resolve("NL"))
	assert.Equal(t, "nl", b.Resolve("nl-BE"))
	assert.Equal(t, "fr", b.Resolve("fr-CH,fr;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", b.Resolve("ja-JP"))
	assert.Equal(t, "en", b.Resolve("%%%"))
}

func TestFor(t *testing.T) {
	b := MustLoad("en")
	t2 := b.For("nl-NL")

	assert.Equal(t, "Aanvrager 2", t2("common.applicant2"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Page 2 of 5", Format("Page {page} of {total}", map[string]string{"page": "2", "total": "5"}))
	assert.Equal(t, "plain", Format("plain", nil))
}

func TestStatic(t *testing.T) {
	tr := Static(map[string]string{"a": "A"})
	assert.Equal(t, "A", tr("a"))
	assert.Equal(t, "b", tr("b"))
}
