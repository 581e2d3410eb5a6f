package scoring

import (
	"sort"

	"github.com/mkravets/reposcout/internal/domain/models"
)

// Rank orders scored candidates by score descending, breaking ties by star
// count descending and then full name ascending, so identical inputs always
// produce the same order. Candidates whose full name appears in seen are
// dropped before truncation; pass nil to disable the history check (rescan).
func Rank(scored []models.ScoredCandidate, preference models.Preference, seen map[string]struct{}) []models.ScoredCandidate {

	ranked := make([]models.ScoredCandidate, 0, len(scored))
	for _, candidate := range scored {
		if seen != nil {
			if _, found := seen[candidate.Candidate.FullName]; found {
				continue
			}
		}
		ranked = append(ranked, candidate)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Candidate.Stars != ranked[j].Candidate.Stars {
			return ranked[i].Candidate.Stars > ranked[j].Candidate.Stars
		}
		return ranked[i].Candidate.FullName < ranked[j].Candidate.FullName
	})

	if len(ranked) > preference.MaxRecommendations {
		ranked = ranked[:preference.MaxRecommendations]
	}
	return ranked
}
