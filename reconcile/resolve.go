package reconcile

import (
	"fmt"
	"strings"

	"github.com/entigraph/enrichmesh/core"
)

// legalSuffixes are the entity-form markers that make one spelling of a
// company name preferable over another.
var legalSuffixes = []string{
	"SA", "SARL", "SAS", "SASU", "SCI", "EURL",
	"INC", "CORP", "LLC", "LTD", "PLC", "GMBH", "AG", "BV", "NV",
}

// Candidate is one source's claim for a conflicted field. SourceType is the
// provenance label used for priority ranking (registry, api, web, ...);
// Source is the reporting agent.
type Candidate struct {
	Source     string
	SourceType string
	Value      interface{}
	Confidence float64
}

// Resolver settles conflicted fields through a fixed strategy chain keyed by
// field class. Candidates are expected in a deterministic order (the agent
// passes them sorted by source name); every strategy keeps the first best
// candidate, so resolution is idempotent.
type Resolver struct {
	ranking core.SourceRanking
}

// NewResolver creates a Resolver over a source-priority ranking.
func NewResolver(ranking core.SourceRanking) *Resolver {
	if ranking == nil {
		ranking = core.DefaultSourceRanking()
	}
	return &Resolver{ranking: ranking}
}

// Resolve settles one conflicted field given every source's candidate value.
// Strategy by field class, first match wins: identifiers go to the highest
// priority source; URLs prefer HTTPS; names prefer a legal-entity suffix;
// everything else goes to the highest self-reported confidence. Each
// specialized strategy falls back to source priority.
func (r *Resolver) Resolve(field string, candidates []Candidate) (Resolution, bool) {
	if len(candidates) == 0 {
		return Resolution{}, false
	}

	switch ClassifyField(field) {
	case FieldIdentifier:
		return r.bySourcePriority(field, candidates), true
	case FieldURL:
		return r.byURLPreference(field, candidates), true
	case FieldName:
		return r.byNamePreference(field, candidates), true
	default:
		return r.byConfidence(field, candidates), true
	}
}

func (r *Resolver) bySourcePriority(field string, candidates []Candidate) Resolution {
	best := candidates[0]
	bestPriority := r.ranking.PriorityOf(best.SourceType)
	for _, c := range candidates[1:] {
		if p := r.ranking.PriorityOf(c.SourceType); p > bestPriority {
			best, bestPriority = c, p
		}
	}
	return Resolution{
		Field:         field,
		Method:        MethodSourcePriority,
		ResolvedValue: best.Value,
		ChosenSource:  best.Source,
		Confidence:    bestPriority,
		Reason:        fmt.Sprintf("highest priority source (%s)", best.SourceType),
	}
}

func (r *Resolver) byURLPreference(field string, candidates []Candidate) Resolution {
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(stringify(c.Value)), "https://") {
			return Resolution{
				Field:         field,
				Method:        MethodURLPreference,
				ResolvedValue: c.Value,
				ChosenSource:  c.Source,
				Confidence:    0.8,
				Reason:        "https url preferred",
			}
		}
	}
	return r.bySourcePriority(field, candidates)
}

func (r *Resolver) byNamePreference(field string, candidates []Candidate) Resolution {
	for _, c := range candidates {
		if hasLegalSuffix(stringify(c.Value)) {
			return Resolution{
				Field:         field,
				Method:        MethodNamePreference,
				ResolvedValue: c.Value,
				ChosenSource:  c.Source,
				Confidence:    0.7,
				Reason:        "name carries a legal entity form",
			}
		}
	}
	return r.bySourcePriority(field, candidates)
}

// byConfidence keeps the candidate with the highest self-reported
// confidence; exact ties go to the higher priority source.
func (r *Resolver) byConfidence(field string, candidates []Candidate) Resolution {
	best := candidates[0]
	for _, c := range candidates[1:] {
		switch {
		case c.Confidence > best.Confidence:
			best = c
		case c.Confidence == best.Confidence &&
			r.ranking.PriorityOf(c.SourceType) > r.ranking.PriorityOf(best.SourceType):
			best = c
		}
	}
	return Resolution{
		Field:         field,
		Method:        MethodConfidence,
		ResolvedValue: best.Value,
		ChosenSource:  best.Source,
		Confidence:    best.Confidence,
		Reason:        fmt.Sprintf("highest reported confidence (%.2f)", best.Confidence),
	}
}

// hasLegalSuffix reports whether a name contains a known legal entity form
// as a standalone token.
func hasLegalSuffix(name string) bool {
	for _, token := range strings.Fields(strings.ToUpper(name)) {
		token = strings.Trim(token, ".,()")
		for _, suffix := range legalSuffixes {
			if token == suffix {
				return true
			}
		}
	}
	return false
}
