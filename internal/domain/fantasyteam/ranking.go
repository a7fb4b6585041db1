package fantasyteam

import (
	"math"
	"sort"
)

// Rank orders teams for a leaderboard and assigns standard competition ranks
// (1, 2, 2, 4). Ties share a rank; within a tie earlier submissions come first,
// then team ID, so the returned order is total and stable across calls.
func Rank(teams []Team) []Team {
	out := make([]Team, len(teams))
	copy(out, teams)

	sort.SliceStable(out, func(i, j int) bool {
		if cmp := out[i].TotalPoints.Cmp(out[j].TotalPoints); cmp != 0 {
			return cmp > 0
		}
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})

	for i := range out {
		if i > 0 && out[i].TotalPoints.Equal(out[i-1].TotalPoints) {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}

// Percentile is round((total - rank) / (total - 1) * 100), or 100 for a single entry.
func Percentile(rank, total int) int {
	if total <= 1 {
		return 100
	}
	return int(math.Round(float64(total-rank) / float64(total-1) * 100))
}
