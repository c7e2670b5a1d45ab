package enrich

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// legalForms are the company-form tokens stripped from the end of a name
// during canonicalization.
var legalForms = map[string]bool{
	"SA": true, "SARL": true, "SAS": true, "SASU": true, "SNC": true,
	"SCS": true, "GIE": true, "SE": true, "SCA": true,
	"INC": true, "CORP": true, "CORPORATION": true,
	"LLC": true, "LTD": true, "LIMITED": true,
}

// wordReplacements expands the common French abbreviations before matching.
var wordReplacements = map[string]string{
	"&":   "ET",
	"CIE": "COMPAGNIE",
	"ETS": "ETABLISSEMENTS",
	"ST":  "SAINT",
	"STE": "SAINTE",
}

var (
	specialChars = regexp.MustCompile(`[^\p{L}\p{N}\s&-]`)
	accents      = strings.NewReplacer(
		"É", "E", "È", "E", "Ê", "E", "Ë", "E",
		"À", "A", "Â", "A", "Î", "I", "Ï", "I",
		"Ô", "O", "Ù", "U", "Û", "U", "Ç", "C",
	)
)

// RuleNormalizer canonicalizes names with deterministic lexical rules and
// matches variants against an in-memory reference table. It needs no
// external service, which makes it the default for tests and offline runs.
type RuleNormalizer struct {
	// reference maps an already-normalized name to its registry identifier.
	reference map[string]string
}

// NewRuleNormalizer creates a RuleNormalizer over a reference table of
// normalized name -> identifier. A nil table disables matching.
func NewRuleNormalizer(reference map[string]string) *RuleNormalizer {
	normalized := make(map[string]string, len(reference))
	for name, id := range reference {
		normalized[normalizeBasic(name)] = id
	}
	return &RuleNormalizer{reference: normalized}
}

// Normalize uppercases, strips punctuation and accents, expands common
// abbreviations and drops a trailing legal form, then derives lookup
// variants.
func (n *RuleNormalizer) Normalize(_ context.Context, rawName string) (NormalizedName, error) {
	raw := strings.TrimSpace(rawName)
	if raw == "" {
		return NormalizedName{}, ErrNoMatch
	}

	normalized := normalizeBasic(raw)
	return NormalizedName{
		Normalized: normalized,
		Variants:   variants(normalized, raw),
		Confidence: normalizeConfidence(raw, normalized),
	}, nil
}

// Match looks each variant up in the reference table; the normalized form
// scores highest, later variants decay slightly so the best match is always
// the most canonical one.
func (n *RuleNormalizer) Match(_ context.Context, names []string) ([]Match, error) {
	var matches []Match
	seen := map[string]bool{}
	for i, name := range names {
		key := normalizeBasic(name)
		id, ok := n.reference[key]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		score := 0.95 - 0.05*float64(i)
		if score < 0.5 {
			score = 0.5
		}
		matches = append(matches, Match{Name: key, Identifier: id, Score: score})
	}
	if len(matches) == 0 {
		return nil, ErrNoMatch
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches, nil
}

func normalizeBasic(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = accents.Replace(s)
	s = specialChars.ReplaceAllString(s, " ")

	words := strings.Fields(s)
	for i, w := range words {
		if repl, ok := wordReplacements[w]; ok {
			words[i] = repl
		}
	}
	if len(words) > 1 && legalForms[strings.TrimRight(words[len(words)-1], ".")] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// variants derives the alternate spellings worth trying against reference
// data: the raw uppercase form, an abbreviated form and an ampersand form.
func variants(normalized, raw string) []string {
	out := []string{normalized}
	add := func(v string) {
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}

	add(strings.ToUpper(strings.TrimSpace(raw)))

	abbreviated := normalized
	for _, word := range []string{"SOCIETE", "ETABLISSEMENTS", "COMPAGNIE"} {
		abbreviated = strings.ReplaceAll(abbreviated, word, word[:3])
	}
	if abbreviated != normalized {
		add(abbreviated)
	}

	if strings.Contains(normalized, " ET ") {
		add(strings.ReplaceAll(normalized, " ET ", " & "))
	}
	return out
}

// normalizeConfidence grades how safely the raw name reduced to its
// canonical form: unchanged names are trusted most, heavy rewriting less.
func normalizeConfidence(raw, normalized string) float64 {
	confidence := 0.7
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == normalized {
		confidence += 0.2
	}
	if len(strings.Fields(normalized)) > 1 {
		confidence += 0.05
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}
