// Package forms holds the configuration-driven form engine: the typed view
// over submission payloads, boundary validation, section extraction and the
// HTML field renderer.
package forms

import (
	"sort"
	"strings"

	"FIN-COACH/internal/models"
	"FIN-COACH/internal/utils"

	"gorm.io/datatypes"
)

const (
	KeyApplicant1          = "applicant1"
	KeyApplicant2          = "applicant2"
	KeySignature           = "signature"
	KeySignatureApplicant1 = "signature_applicant1"
	KeySignatureApplicant2 = "signature_applicant2"

	consentPrefix = "consent_"
)

// Applicant numbers. Single-applicant data belongs to ApplicantNone.
const (
	ApplicantNone = 0
	Applicant1    = 1
	Applicant2    = 2
)

// Payload is a read view over a submission's form_data. The raw map is
// shared, not copied.
type Payload struct {
	raw  map[string]interface{}
	dual bool
}

// ParsePayload classifies the payload shape. A payload is dual-applicant when
// either applicant key is present at the root.
func ParsePayload(data map[string]interface{}) *Payload {
	if data == nil {
		data = map[string]interface{}{}
	}
	_, has1 := data[KeyApplicant1]
	_, has2 := data[KeyApplicant2]
	return &Payload{raw: data, dual: has1 || has2}
}

func (p *Payload) IsDual() bool {
	return p.dual
}

func (p *Payload) Raw() map[string]interface{} {
	return p.raw
}

// Applicants lists the applicant numbers present in the payload shape.
func (p *Payload) Applicants() []int {
	if p.dual {
		return []int{Applicant1, Applicant2}
	}
	return []int{ApplicantNone}
}

// ApplicantKey returns the root key of an applicant, or "" for single data.
func ApplicantKey(applicant int) string {
	switch applicant {
	case Applicant1:
		return KeyApplicant1
	case Applicant2:
		return KeyApplicant2
	}
	return ""
}

// ApplicantData returns the flat map of one applicant in a dual payload.
func (p *Payload) ApplicantData(applicant int) map[string]interface{} {
	key := ApplicantKey(applicant)
	if key == "" {
		return nil
	}
	data, _ := asMap(p.raw[key])
	return data
}

// Bucket returns the values of one section for one applicant. Dual payloads
// may nest values by section id or keep them flat per applicant; nested
// reports which shape was found.
func (p *Payload) Bucket(applicant int, sectionID string) (bucket map[string]interface{}, nested bool) {
	if applicant == ApplicantNone {
		bucket, ok := asMap(p.raw[sectionID])
		return bucket, ok
	}

	data := p.ApplicantData(applicant)
	if data == nil {
		return nil, false
	}
	if bucket, ok := asMap(data[sectionID]); ok {
		return bucket, true
	}
	return data, false
}

// Signature returns the base64 signature of an applicant. Single payloads
// use the plain signature key.
func (p *Payload) Signature(applicant int) string {
	key := KeySignature
	switch applicant {
	case Applicant1:
		key = KeySignatureApplicant1
	case Applicant2:
		key = KeySignatureApplicant2
	}
	value, _ := p.raw[key].(string)
	if value == "" && applicant == Applicant1 {
		value, _ = p.raw[KeySignature].(string)
	}
	return value
}

// ConsentAccepted reports acceptance of the consent form at index. The
// id-based key wins; the positional key is read for older submissions.
func (p *Payload) ConsentAccepted(consent models.ConsentForm, index int) bool {
	if value, ok := p.raw[consent.ConsentKey(index)]; ok {
		return truthy(value)
	}
	if value, ok := p.raw[models.LegacyConsentKey(index)]; ok {
		return truthy(value)
	}
	return false
}

// SignatureKeys are the root keys that hold signature images.
var SignatureKeys = []string{KeySignature, KeySignatureApplicant1, KeySignatureApplicant2}

func isSignatureKey(key string) bool {
	for _, k := range SignatureKeys {
		if k == key {
			return true
		}
	}
	return false
}

func isConsentKey(key string) bool {
	return strings.HasPrefix(key, consentPrefix)
}

// SortedSections returns the configuration sections ordered by their order
// value. Declaration order breaks ties.
func SortedSections(cfg *models.FormConfiguration) []models.Section {
	if cfg == nil || len(cfg.Sections) == 0 {
		return nil
	}
	sections := make([]models.Section, len(cfg.Sections))
	copy(sections, cfg.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
	return sections
}

// SetValue writes one field value into data, creating the section and
// applicant maps as needed.
func SetValue(data map[string]interface{}, applicant int, sectionID, fieldName string, value interface{}) {
	target := data
	if key := ApplicantKey(applicant); key != "" {
		target = childMap(target, key)
	}
	childMap(target, sectionID)[fieldName] = value
}

func childMap(parent map[string]interface{}, key string) map[string]interface{} {
	if child, ok := asMap(parent[key]); ok {
		parent[key] = child
		return child
	}
	child := map[string]interface{}{}
	parent[key] = child
	return child
}

// asMap accepts both plain maps and the JSONMap values gorm hands back.
func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case datatypes.JSONMap:
		return map[string]interface{}(v), true
	}
	return nil, false
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return parseBool(v)
	}
	if n, ok := utils.ToFloat(value); ok {
		return n != 0
	}
	return false
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// CloneData deep-copies nested maps of a payload so edits never touch the
// caller's map.
func CloneData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		if child, ok := asMap(value); ok {
			out[key] = CloneData(child)
			continue
		}
		out[key] = value
	}
	return out
}
