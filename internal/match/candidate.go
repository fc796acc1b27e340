package match

import (
	"sort"
)

// DefaultSuggestThreshold is the minimum similarity for a name to be suggested.
const DefaultSuggestThreshold = 0.6

// Candidate is a known name scored against a missing one.
type Candidate struct {
	Name  string
	Score float64 // Normalized Levenshtein similarity (0-1)
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every known name against target and returns those
// at or above threshold, best first. Ties are broken by name so the result
// is stable.
func RankCandidates(target string, known []string, threshold float64) CandidateList {
	var candidates CandidateList

	for _, name := range known {
		if name == target {
			continue
		}

		score := NormalizedLevenshteinScore(target, name)
		if score < threshold {
			continue
		}

		candidates = append(candidates, Candidate{Name: name, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}

		return candidates[i].Name < candidates[j].Name
	})

	return candidates
}

// Names returns up to limit candidate names (all when limit <= 0).
func (c CandidateList) Names(limit int) []string {
	if limit <= 0 || limit > len(c) {
		limit = len(c)
	}

	names := make([]string, 0, limit)
	for _, cand := range c[:limit] {
		names = append(names, cand.Name)
	}

	return names
}
