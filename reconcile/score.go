package reconcile

// ScoreWeights tunes the consistency score. The defaults mirror the
// historical behavior; deployments may adjust them, the shape (monotonic
// penalty/bonus, clamped) is fixed.
type ScoreWeights struct {
	// SourceBase is the score contribution per corroborating source.
	SourceBase float64
	// SourceCap bounds the source contribution.
	SourceCap float64
	// ConflictPenalty is subtracted per conflict, scaled by severity.
	ConflictPenalty float64
	// ResolutionBonus is added per successfully auto-resolved conflict.
	ResolutionBonus float64
}

// DefaultScoreWeights returns the standard weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		SourceBase:      0.2,
		SourceCap:       0.8,
		ConflictPenalty: 0.1,
		ResolutionBonus: 0.05,
	}
}

// severityWeight scales the conflict penalty: a critical disagreement costs
// twice a medium one.
func severityWeight(s Severity) float64 {
	switch s {
	case SeverityCritical:
		return 2.0
	case SeverityHigh:
		return 1.5
	case SeverityMedium:
		return 1.0
	default:
		return 0.5
	}
}

// Consistency computes the aggregate consistency score for one reconciliation
// pass: more corroborating sources raise it, conflicts lower it by severity,
// auto-resolutions claw part of the penalty back. Always within [0,1].
func (w ScoreWeights) Consistency(sources int, conflicts []Conflict, resolutions int) float64 {
	if sources == 0 {
		return 0
	}

	score := float64(sources) * w.SourceBase
	if score > w.SourceCap {
		score = w.SourceCap
	}
	for _, c := range conflicts {
		score -= w.ConflictPenalty * severityWeight(c.Severity)
	}
	score += float64(resolutions) * w.ResolutionBonus

	return clamp01(score)
}

// QualityScore is the mean of the sources' self-reported confidences, 0.5
// when no source reports one.
func QualityScore(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0.5
	}
	total := 0.0
	for _, c := range confidences {
		total += c
	}
	return clamp01(total / float64(len(confidences)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
