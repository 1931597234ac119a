// Package i18n resolves dotted translation keys against the embedded
// per-language string tables.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const DefaultLanguage = "en"

// Func translates a dotted key for one bound language.
type Func func(key string) string

// Bundle holds every loaded language table.
type Bundle struct {
	tables      map[string]map[string]interface{}
	defaultLang string
	matcher     language.Matcher
	tags        []string
}

// Load reads the embedded locale tables. defaultLang must be one of them.
func Load(defaultLang string) (*Bundle, error) {
	if defaultLang == "" {
		defaultLang = DefaultLanguage
	}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	b := &Bundle{tables: make(map[string]map[string]interface{})}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		raw, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", entry.Name(), err)
		}
		var table map[string]interface{}
		if err := json.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", entry.Name(), err)
		}
		b.tables[strings.TrimSuffix(entry.Name(), ".json")] = table
	}

	if _, ok := b.tables[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q has no locale table", defaultLang)
	}
	b.defaultLang = defaultLang

	// The default language goes first so the matcher falls back to it.
	b.tags = append(b.tags, defaultLang)
	for lang := range b.tables {
		if lang != defaultLang {
			b.tags = append(b.tags, lang)
		}
	}
	sort.Strings(b.tags[1:])

	supported := make([]language.Tag, 0, len(b.tags))
	for _, lang := range b.tags {
		supported = append(supported, language.Make(lang))
	}
	b.matcher = language.NewMatcher(supported)

	return b, nil
}

// MustLoad is Load for package initialisation and tests.
func MustLoad(defaultLang string) *Bundle {
	b, err := Load(defaultLang)
	if err != nil {
		panic(err)
	}
	return b
}

// Languages returns the supported languages, default first.
func (b *Bundle) Languages() []string {
	out := make([]string, len(b.tags))
	copy(out, b.tags)
	return out
}

// DefaultLanguage returns the fallback language of the bundle.
func (b *Bundle) DefaultLanguage() string {
	return b.defaultLang
}

// Resolve maps a requested language (a tag like "nl-BE" or an
// Accept-Language header value) onto a supported language.
func (b *Bundle) Resolve(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return b.defaultLang
	}
	if _, ok := b.tables[strings.ToLower(requested)]; ok {
		return strings.ToLower(requested)
	}

	tags, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(tags) == 0 {
		return b.defaultLang
	}
	_, index, confidence := b.matcher.Match(tags...)
	if confidence == language.No {
		return b.defaultLang
	}
	return b.tags[index]
}

// Table returns the raw nested table of a language.
func (b *Bundle) Table(lang string) (map[string]interface{}, bool) {
	table, ok := b.tables[lang]
	return table, ok
}

// Lookup resolves key in lang, then in the default language.
func (b *Bundle) Lookup(lang, key string) (string, bool) {
	if table, ok := b.tables[lang]; ok {
		if value, ok := lookup(table, key); ok {
			return value, true
		}
	}
	if lang != b.defaultLang {
		if value, ok := lookup(b.tables[b.defaultLang], key); ok {
			return value, true
		}
	}
	return "", false
}

// Translate returns the translation of key, or key itself when no table has it.
func (b *Bundle) Translate(lang, key string) string {
	if value, ok := b.Lookup(lang, key); ok {
		return value
	}
	return key
}

// For binds the bundle to one language.
func (b *Bundle) For(lang string) Func {
	lang = b.Resolve(lang)
	return func(key string) string {
		return b.Translate(lang, key)
	}
}

func lookup(table map[string]interface{}, key string) (string, bool) {
	var current interface{} = table
	for _, part := range strings.Split(key, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return "", false
		}
		current, ok = node[part]
		if !ok {
			return "", false
		}
	}
	value, ok := current.(string)
	return value, ok
}

// Format substitutes {name} placeholders in a translated string.
func Format(template string, args map[string]string) string {
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for name, value := range args {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Static builds a Func over a flat key table, for callers without a bundle.
func Static(table map[string]string) Func {
	return func(key string) string {
		if value, ok := table[key]; ok {
			return value
		}
		return key
	}
}
