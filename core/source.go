package core

// SourceRanking maps a data-source label to its trust priority. Higher
// values win conflicts resolved by source authority. The ranking is
// configuration, not law: callers may replace or extend it per deployment.
type SourceRanking map[string]float64

// Default source labels recognized across the module.
const (
	SourceRegistry = "registry"
	SourceOfficial = "official"
	SourceAPI      = "api"
	SourceWeb      = "web"
	SourceManual   = "manual"
	SourceUnknown  = "unknown"
)

// DefaultSourceRanking returns the built-in trust ordering:
// authoritative registry > official > API > web > manual > unknown.
func DefaultSourceRanking() SourceRanking {
	return SourceRanking{
		SourceRegistry: 0.9,
		SourceOfficial: 0.8,
		SourceAPI:      0.7,
		SourceWeb:      0.6,
		SourceManual:   0.5,
		SourceUnknown:  0.3,
	}
}

// PriorityOf returns the priority of a source label, falling back to the
// unknown-source priority for labels the ranking does not list.
func (r SourceRanking) PriorityOf(source string) float64 {
	if p, ok := r[source]; ok {
		return p
	}
	if p, ok := r[SourceUnknown]; ok {
		return p
	}
	return 0.3
}
