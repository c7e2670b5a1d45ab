// Package reconcile merges the claims several enrichment sources make about
// one entity: it detects field-level disagreements, settles them through
// per-field-type strategies and condenses the outcome into consistency and
// quality scores. The whole pass runs inside one validation agent; conflicts
// and resolutions never outlive the session.
package reconcile

import "fmt"

// Severity grades how damaging a field disagreement is.
type Severity int

const (
	// SeverityLow marks disagreement on free-form fields.
	SeverityLow Severity = iota + 1
	// SeverityMedium marks disagreement on display fields such as names.
	SeverityMedium
	// SeverityHigh marks disagreement on locator fields such as URLs.
	SeverityHigh
	// SeverityCritical marks disagreement on identifier fields.
	SeverityCritical
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText makes severities render as their names in JSON payloads.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Conflict is one detected disagreement between two sources over a field.
// Source1/Source2 are ordered lexicographically so the same pair is always
// reported the same way regardless of iteration order.
type Conflict struct {
	Field    string      `json:"field"`
	Source1  string      `json:"source1"`
	Value1   interface{} `json:"value1"`
	Source2  string      `json:"source2"`
	Value2   interface{} `json:"value2"`
	Severity Severity    `json:"severity"`
}

// String renders the conflict for logs and summaries.
func (c Conflict) String() string {
	return fmt.Sprintf("%s: %s=%v vs %s=%v (%s)",
		c.Field, c.Source1, c.Value1, c.Source2, c.Value2, c.Severity)
}

// Resolution is the settled outcome for one conflicted field.
type Resolution struct {
	Field         string      `json:"field"`
	Method        string      `json:"resolution_method"`
	ResolvedValue interface{} `json:"resolved_value"`
	ChosenSource  string      `json:"chosen_source"`
	Confidence    float64     `json:"confidence"`
	Reason        string      `json:"reason"`
}

// Resolution methods, in strategy-chain order.
const (
	MethodSourcePriority = "source_priority"
	MethodURLPreference  = "url_preference"
	MethodNamePreference = "name_preference"
	MethodConfidence     = "confidence"
)
