package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// FieldClass selects the equivalence rule and resolution strategy applied to
// a field.
type FieldClass int

const (
	// FieldGeneric compares trimmed string forms.
	FieldGeneric FieldClass = iota
	// FieldIdentifier compares exactly; registry identifiers never fuzz.
	FieldIdentifier
	// FieldName compares case- and whitespace-insensitively.
	FieldName
	// FieldURL compares ignoring scheme, "www." prefix and trailing slash.
	FieldURL
)

var fieldClasses = map[string]FieldClass{
	"siren":           FieldIdentifier,
	"siret":           FieldIdentifier,
	"id":              FieldIdentifier,
	"registration_id": FieldIdentifier,
	"vat_number":      FieldIdentifier,
	"name":            FieldName,
	"legal_name":      FieldName,
	"normalized_name": FieldName,
	"url":             FieldURL,
	"website":         FieldURL,
	"homepage":        FieldURL,
}

// ClassifyField maps a field name to its comparison class. Unknown fields
// are generic.
func ClassifyField(field string) FieldClass {
	return fieldClasses[strings.ToLower(field)]
}

// severityOf derives conflict severity from the field class: disagreeing
// identifiers poison everything downstream, disagreeing display fields are
// mostly cosmetic.
func severityOf(class FieldClass) Severity {
	switch class {
	case FieldIdentifier:
		return SeverityCritical
	case FieldURL:
		return SeverityHigh
	case FieldName:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Detector finds field-level disagreements across source payloads.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector { return &Detector{} }

// Detect compares every unordered pair of sources on their common fields and
// returns one Conflict per disagreeing pair. Sources and fields are walked
// in sorted order, so output is deterministic and each pair appears once.
//
// Fields prefixed with "_" are payload annotations (e.g. the source type),
// not entity claims, and are never compared.
func (d *Detector) Detect(sources map[string]map[string]interface{}) []Conflict {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var conflicts []Conflict
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			conflicts = append(conflicts, d.comparePair(names[i], sources[names[i]], names[j], sources[names[j]])...)
		}
	}
	return conflicts
}

func (d *Detector) comparePair(name1 string, data1 map[string]interface{}, name2 string, data2 map[string]interface{}) []Conflict {
	common := make([]string, 0, len(data1))
	for field := range data1 {
		if strings.HasPrefix(field, "_") {
			continue
		}
		if _, ok := data2[field]; ok {
			common = append(common, field)
		}
	}
	sort.Strings(common)

	var conflicts []Conflict
	for _, field := range common {
		v1, v2 := data1[field], data2[field]
		class := ClassifyField(field)
		if Equivalent(class, v1, v2) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Field:    field,
			Source1:  name1,
			Value1:   v1,
			Source2:  name2,
			Value2:   v2,
			Severity: severityOf(class),
		})
	}
	return conflicts
}

// Equivalent reports whether two values agree under the field class's rule.
func Equivalent(class FieldClass, v1, v2 interface{}) bool {
	s1, s2 := stringify(v1), stringify(v2)
	switch class {
	case FieldIdentifier:
		return strings.TrimSpace(s1) == strings.TrimSpace(s2)
	case FieldName:
		return normalizeName(s1) == normalizeName(s2)
	case FieldURL:
		return normalizeURL(s1) == normalizeURL(s2)
	default:
		return strings.TrimSpace(s1) == strings.TrimSpace(s2)
	}
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// normalizeName uppercases and collapses internal whitespace.
func normalizeName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// normalizeURL strips scheme, "www." prefix and trailing slash, lowercased.
func normalizeURL(s string) string {
	u := strings.ToLower(strings.TrimSpace(s))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimRight(u, "/")
}
