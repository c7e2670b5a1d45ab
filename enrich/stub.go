package enrich

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// StaticRegistry is a deterministic in-memory RegistrySearcher backed by a
// fixture table. Lookups match on normalized-name containment, the way a
// registry's fuzzy search behaves for well-known companies. Keys are probed
// in sorted order, so overlapping fixtures always resolve the same way.
type StaticRegistry struct {
	records map[string]RegistryRecord
	keys    []string
}

// NewStaticRegistry creates a StaticRegistry. Keys are matched
// case-insensitively as substrings of the searched name.
func NewStaticRegistry(records map[string]RegistryRecord) *StaticRegistry {
	upper := make(map[string]RegistryRecord, len(records))
	keys := make([]string, 0, len(records))
	for name, rec := range records {
		key := strings.ToUpper(name)
		upper[key] = rec
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &StaticRegistry{records: upper, keys: keys}
}

// SearchIdentifier returns the first fixture (in key order) whose key
// appears in the name, ErrNoMatch otherwise.
func (r *StaticRegistry) SearchIdentifier(_ context.Context, name string) (RegistryRecord, error) {
	upper := strings.ToUpper(name)
	for _, key := range r.keys {
		if strings.Contains(upper, key) {
			return r.records[key], nil
		}
	}
	return RegistryRecord{}, ErrNoMatch
}

// StaticWebsiteLocator is a deterministic in-memory WebsiteLocator. Names
// absent from the fixture table get a synthesized https URL with low
// confidence, so downstream conflict handling always has a value to weigh.
type StaticWebsiteLocator struct {
	sites map[string]WebsiteRecord
	keys  []string
}

// NewStaticWebsiteLocator creates a StaticWebsiteLocator over a fixture
// table keyed case-insensitively by name substring, probed in sorted order.
func NewStaticWebsiteLocator(sites map[string]WebsiteRecord) *StaticWebsiteLocator {
	upper := make(map[string]WebsiteRecord, len(sites))
	keys := make([]string, 0, len(sites))
	for name, rec := range sites {
		key := strings.ToUpper(name)
		upper[key] = rec
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return &StaticWebsiteLocator{sites: upper, keys: keys}
}

// Locate returns the fixture for the name, or a synthesized fallback URL.
func (l *StaticWebsiteLocator) Locate(_ context.Context, name, _ string) (WebsiteRecord, error) {
	upper := strings.ToUpper(name)
	for _, key := range l.keys {
		if strings.Contains(upper, key) {
			return l.sites[key], nil
		}
	}

	clean := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if clean == "" {
		return WebsiteRecord{}, ErrNoMatch
	}
	return WebsiteRecord{
		URL:        fmt.Sprintf("https://www.%s.com", clean),
		Method:     "generated",
		Confidence: 0.5,
	}, nil
}
