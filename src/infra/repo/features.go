package repo

import (
	"slices"
	"strings"

	"eventlisting/src/core/domain"
)

// sortedByKey returns fs with one entry per FeatureKey (first occurrence
// wins), ordered by key. Inserting in this order gives every unit of work
// the same lock order on the features unique index.
func sortedByKey(fs []domain.Feature) []domain.Feature {
	seen := make(map[string]bool, len(fs))
	out := make([]domain.Feature, 0, len(fs))
	for _, f := range fs {
		key := domain.FeatureKey(f.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	slices.SortStableFunc(out, func(a, b domain.Feature) int {
		return strings.Compare(domain.FeatureKey(a.Name), domain.FeatureKey(b.Name))
	})
	return out
}
