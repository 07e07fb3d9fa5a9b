package recommend

import "sort"

// DefaultLimit is the number of recommendations shown to a user.
const DefaultLimit = 5

// Recommendation pairs an eligible card with its reward estimate and the
// checks that made it eligible.
type Recommendation struct {
	Card        CardRecord
	Reward      RewardEstimate
	Eligibility Eligibility
}

// Rank orders recommendations by descending monthly reward. The sort is
// stable, so equal rewards keep catalog order.
func Rank(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Reward.Monthly.GreaterThan(recs[j].Reward.Monthly)
	})
}

// Top returns at most limit recommendations. A limit <= 0 keeps all of them.
func Top(recs []Recommendation, limit int) []Recommendation {
	if limit <= 0 || len(recs) <= limit {
		return recs
	}
	return recs[:limit]
}
