// Package ranking orders currency pair observations by signal probability.
// Every function is pure: inputs are never reordered or modified.
package ranking

import (
	"sort"

	"pocketdesk/internal/domain"
)

// DefaultBestSignals is the size of the best signals view
const DefaultBestSignals = 4

// TopSignal returns the observation with the highest probability.
// Ties go to the observation that comes first in obs.
func TopSignal(obs []domain.Observation) (domain.Observation, bool) {
	if len(obs) == 0 {
		return domain.Observation{}, false
	}
	best := 0
	for i := 1; i < len(obs); i++ {
		if obs[i].Probability > obs[best].Probability {
			best = i
		}
	}
	return obs[best], true
}

// TopN returns the k most probable observations, highest first, keeping the
// input order among equal probabilities.
func TopN(obs []domain.Observation, k int) []domain.Observation {
	if k <= 0 || len(obs) == 0 {
		return []domain.Observation{}
	}
	sorted := append([]domain.Observation(nil), obs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Probability > sorted[j].Probability
	})
	if k < len(sorted) {
		sorted = sorted[:k]
	}
	return sorted
}
