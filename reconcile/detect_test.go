package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_NoConflictOnAgreement(t *testing.T) {
	d := NewDetector()

	conflicts := d.Detect(map[string]map[string]interface{}{
		"identification": {"siren": "552100554", "name": "ACME SA"},
		"normalization":  {"siren": "552100554", "name": "acme   sa"},
	})
	assert.Empty(t, conflicts, "normalized names and equal identifiers must not conflict")
}

func TestDetector_IdentifierConflictIsCritical(t *testing.T) {
	d := NewDetector()

	conflicts := d.Detect(map[string]map[string]interface{}{
		"identification": {"siren": "552100554"},
		"website":        {"siren": "123456789"},
	})
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, "siren", c.Field)
	assert.Equal(t, SeverityCritical, c.Severity)
	assert.Equal(t, "identification", c.Source1)
	assert.Equal(t, "website", c.Source2)
}

func TestDetector_Symmetry(t *testing.T) {
	d := NewDetector()

	// Same data under swapped source names: the conflict must come out
	// identically, sources in lexicographic order, and exactly once.
	a := map[string]map[string]interface{}{
		"alpha": {"siren": "1"},
		"beta":  {"siren": "2"},
	}
	b := map[string]map[string]interface{}{
		"beta":  {"siren": "2"},
		"alpha": {"siren": "1"},
	}

	ca, cb := d.Detect(a), d.Detect(b)
	require.Len(t, ca, 1)
	require.Len(t, cb, 1)
	assert.Equal(t, ca[0], cb[0])
	assert.Equal(t, "alpha", ca[0].Source1)
}

func TestDetector_URLNormalization(t *testing.T) {
	d := NewDetector()

	conflicts := d.Detect(map[string]map[string]interface{}{
		"website":       {"url": "https://www.acme.fr/"},
		"normalization": {"url": "http://acme.fr"},
	})
	assert.Empty(t, conflicts, "scheme and www must not matter")

	conflicts = d.Detect(map[string]map[string]interface{}{
		"website":       {"url": "https://acme.fr"},
		"normalization": {"url": "https://acme.com"},
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, SeverityHigh, conflicts[0].Severity)
}

func TestDetector_IgnoresAnnotationsAndDisjointFields(t *testing.T) {
	d := NewDetector()

	conflicts := d.Detect(map[string]map[string]interface{}{
		"identification": {"siren": "552100554", "_source": "registry"},
		"website":        {"url": "https://acme.fr", "_source": "web"},
	})
	assert.Empty(t, conflicts, "annotations and non-shared fields are never compared")
}

func TestDetector_GenericFieldsAreLowSeverity(t *testing.T) {
	d := NewDetector()

	conflicts := d.Detect(map[string]map[string]interface{}{
		"a": {"employee_count": 120},
		"b": {"employee_count": 140},
	})
	require.Len(t, conflicts, 1)
	assert.Equal(t, SeverityLow, conflicts[0].Severity)
}

func TestDetector_ThreeSourcesPairwise(t *testing.T) {
	d := NewDetector()

	conflicts := d.Detect(map[string]map[string]interface{}{
		"a": {"siren": "1"},
		"b": {"siren": "2"},
		"c": {"siren": "1"},
	})
	// a/b and b/c disagree, a/c agree.
	assert.Len(t, conflicts, 2)
}
