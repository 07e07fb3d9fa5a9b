package recommend

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterEligible(t *testing.T) {
	tests := []struct {
		name     string
		profile  func() UserProfile
		catalog  []CardRecord
		expected []string
	}{
		{
			name:     "empty catalog yields empty result",
			profile:  standardProfile,
			catalog:  nil,
			expected: []string{},
		},
		{
			name:     "income and score satisfied",
			profile:  standardProfile,
			catalog:  []CardRecord{card("a", 500000, Some(700), "Cashback")},
			expected: []string{"a"},
		},
		{
			name:     "income above annualized income is excluded",
			profile:  standardProfile,
			catalog:  []CardRecord{card("a", 1000000, Some(700), "Cashback")},
			expected: []string{},
		},
		{
			name:     "income boundary is inclusive",
			profile:  standardProfile,
			catalog:  []CardRecord{card("a", 600000, None[int](), "Cashback")},
			expected: []string{"a"},
		},
		{
			name:     "score below minimum is excluded",
			profile:  standardProfile,
			catalog:  []CardRecord{card("a", 0, Some(751), "Points")},
			expected: []string{},
		},
		{
			name:     "absent minimum score means no minimum",
			profile:  func() UserProfile { p := standardProfile(); p.CreditScore = 0; return p },
			catalog:  []CardRecord{card("a", 0, None[int](), "Points")},
			expected: []string{"a"},
		},
		{
			name:     "score zero is a real score",
			profile:  func() UserProfile { p := standardProfile(); p.CreditScore = 0; return p },
			catalog:  []CardRecord{card("a", 0, Some(0), "Points"), card("b", 0, Some(1), "Points")},
			expected: []string{"a"},
		},
		{
			name: "reward type contains match is case insensitive",
			profile: func() UserProfile {
				p := standardProfile()
				p.PreferredRewardType = "Cashback"
				return p
			},
			catalog: []CardRecord{
				card("plus", 0, None[int](), "Cashback Plus"),
				card("points", 0, None[int](), "Points"),
				card("lower", 0, None[int](), "cashback"),
			},
			expected: []string{"plus", "lower"},
		},
		{
			name: "partial preference matches",
			profile: func() UserProfile {
				p := standardProfile()
				p.PreferredRewardType = "cash"
				return p
			},
			catalog:  []CardRecord{card("a", 0, None[int](), "Cashback")},
			expected: []string{"a"},
		},
		{
			name:    "catalog order is preserved",
			profile: standardProfile,
			catalog: []CardRecord{
				card("z", 100, None[int](), "Points"),
				card("x", 9999999, None[int](), "Points"),
				card("a", 200, Some(300), "Cashback"),
				card("m", 300, None[int](), "Points"),
			},
			expected: []string{"z", "a", "m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := FilterEligible(tt.profile(), tt.catalog)
			assert.Equal(t, tt.expected, ids(res.Eligible))
			assert.Empty(t, res.Skipped)
		})
	}
}

func TestFilterEligible_DataQualityFaults(t *testing.T) {
	missingIncome := card("no-income", 0, None[int](), "Cashback")
	missingIncome.MinIncome = decimal.NullDecimal{}

	negativeScore := card("neg-score", 0, Some(-5), "Cashback")

	badRate := card("bad-rate", 0, None[int](), "Cashback")
	badRate.RewardRates[CategoryDining] = d(150)

	good := card("good", 0, None[int](), "Cashback")

	res := FilterEligible(standardProfile(), []CardRecord{missingIncome, good, negativeScore, badRate})

	assert.Equal(t, []string{"good"}, ids(res.Eligible))
	require.Len(t, res.Skipped, 3)
	assert.Equal(t, "no-income", res.Skipped[0].CardID)
	assert.Equal(t, "min_income", res.Skipped[0].Field)
	assert.Equal(t, "neg-score", res.Skipped[1].CardID)
	assert.Equal(t, "min_credit_score", res.Skipped[1].Field)
	assert.Equal(t, "bad-rate", res.Skipped[2].CardID)
	assert.Equal(t, "reward_rates.dining", res.Skipped[2].Field)
}

func TestFilterEligible_Subsequence(t *testing.T) {
	catalog := randomCatalog(42, 200)
	profiles := []UserProfile{standardProfile()}
	for _, income := range []int64{0, 10000, 80000, 200000} {
		p := standardProfile()
		p.MonthlyIncome = d(income)
		p.CreditScore = int(income % 901)
		p.PreferredRewardType = "points"
		profiles = append(profiles, p)
	}

	for _, p := range profiles {
		res := FilterEligible(p, catalog)
		// every output element appears in the catalog, in order, once
		j := 0
		for _, c := range res.Eligible {
			for j < len(catalog) && catalog[j].ID != c.ID {
				j++
			}
			require.Less(t, j, len(catalog), "card %s out of order or not in catalog", c.ID)
			j++
		}
	}
}

func TestFilterEligible_IncomeMonotonic(t *testing.T) {
	catalog := randomCatalog(7, 150)
	p := standardProfile()
	p.CreditScore = 900

	prev := map[string]bool{}
	for income := int64(0); income <= 200000; income += 5000 {
		p.MonthlyIncome = d(income)
		current := map[string]bool{}
		for _, c := range FilterEligible(p, catalog).Eligible {
			current[c.ID] = true
		}
		for id := range prev {
			assert.True(t, current[id], "card %s dropped when income rose to %d", id, income)
		}
		prev = current
	}
}

func TestFilterEligible_ScoreMonotonic(t *testing.T) {
	catalog := randomCatalog(11, 150)
	p := standardProfile()
	p.MonthlyIncome = d(1000000)

	prev := map[string]bool{}
	for score := 0; score <= 900; score += 25 {
		p.CreditScore = score
		current := map[string]bool{}
		for _, c := range FilterEligible(p, catalog).Eligible {
			current[c.ID] = true
		}
		for id := range prev {
			assert.True(t, current[id], "card %s dropped when score rose to %d", id, score)
		}
		prev = current
	}
}

func TestFilterEligible_AllSentinel(t *testing.T) {
	catalog := randomCatalog(3, 100)

	withAll := standardProfile()
	withAll.PreferredRewardType = "All"
	lower := standardProfile()
	lower.PreferredRewardType = "all"
	none := standardProfile()
	none.PreferredRewardType = ""

	expected := ids(FilterEligible(none, catalog).Eligible)
	assert.Equal(t, expected, ids(FilterEligible(withAll, catalog).Eligible))
	assert.Equal(t, expected, ids(FilterEligible(lower, catalog).Eligible))
}

func TestFilterEligible_Idempotent(t *testing.T) {
	catalog := randomCatalog(99, 120)
	p := standardProfile()

	first := FilterEligible(p, catalog)
	second := FilterEligible(p, catalog)
	assert.Equal(t, first, second)
}

func TestFilterEligible_DoesNotMutateCatalog(t *testing.T) {
	catalog := randomCatalog(5, 20)
	snapshot := ids(catalog)
	FilterEligible(standardProfile(), catalog)
	assert.Equal(t, snapshot, ids(catalog))
}

func TestExplain(t *testing.T) {
	p := standardProfile()
	e := Explain(p, card("a", 500000, Some(700), "Cashback"))

	assert.True(t, e.Eligible())
	assert.True(t, e.AnnualIncome.Equal(d(600000)))
	assert.True(t, e.MinIncome.Equal(d(500000)))
	score, ok := e.MinCreditScore.Get()
	assert.True(t, ok)
	assert.Equal(t, 700, score)

	e = Explain(p, card("b", 1000000, None[int](), "Points"))
	assert.False(t, e.IncomeOK)
	assert.True(t, e.CreditScoreOK)
	assert.False(t, e.Eligible())
}

func TestFilterEligible_MalformedFields(t *testing.T) {
	c := card("garbled", 0, None[int](), "Cashback")
	c.MalformedFields = []string{"reward_rates.fuel"}

	res := FilterEligible(standardProfile(), []CardRecord{c})

	assert.Empty(t, res.Eligible)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "reward_rates.fuel", res.Skipped[0].Field)
	assert.Equal(t, "is not numeric", res.Skipped[0].Reason)
}
