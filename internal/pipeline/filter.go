package pipeline

import t "refactorgen/internal/types"

// DefaultThreshold is the confidence a cluster needs to be synthesized.
const DefaultThreshold = 0.7

// Select returns the clusters whose confidence is at least threshold, in
// input order. It never mutates clusters.
func Select(clusters []t.ResponsibilityCluster, threshold float64) []t.ResponsibilityCluster {
	out := make([]t.ResponsibilityCluster, 0, len(clusters))
	for _, c := range clusters {
		if c.Confidence >= threshold {
			out = append(out, c)
		}
	}
	return out
}
