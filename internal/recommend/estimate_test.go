package recommend

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEstimateReward_ReferenceScenario(t *testing.T) {
	c := card("ref", 500000, Some(700), "Cashback")
	c.RewardRates = rates(5, 2, 1, 3)

	est := EstimateReward(standardProfile(), c)

	assert.True(t, est.Breakdown[CategoryFuel].Equal(d(100)))
	assert.True(t, est.Breakdown[CategoryTravel].Equal(d(20)))
	assert.True(t, est.Breakdown[CategoryGroceries].Equal(d(30)))
	assert.True(t, est.Breakdown[CategoryDining].Equal(d(30)))
	assert.True(t, est.Monthly.Equal(d(180)), "monthly = %s", est.Monthly)
	assert.True(t, est.Yearly.Equal(d(2160)), "yearly = %s", est.Yearly)
}

func TestEstimateReward_ZeroSpend(t *testing.T) {
	p := standardProfile()
	for cat := range p.CategorySpend {
		p.CategorySpend[cat] = decimal.Zero
	}
	c := card("rich", 0, None[int](), "Cashback")
	c.RewardRates = rates(100, 50, 25, 10)

	est := EstimateReward(p, c)

	assert.True(t, est.Monthly.IsZero())
	assert.True(t, est.Yearly.IsZero())
	assert.Len(t, est.Breakdown, 4)
}

func TestEstimateReward_BreakdownPolicy(t *testing.T) {
	p := standardProfile()
	p.CategorySpend = map[Category]decimal.Decimal{
		CategoryFuel: d(1000),
		"streaming":  d(500),
	}
	c := card("c", 0, None[int](), "Points")
	c.RewardRates = map[Category]decimal.Decimal{
		CategoryFuel:   d(4),
		CategoryDining: d(10),
	}

	est := EstimateReward(p, c)

	// profile categories always appear, card-only categories never do
	assert.Len(t, est.Breakdown, 2)
	assert.True(t, est.Breakdown[CategoryFuel].Equal(d(40)))
	assert.True(t, est.Breakdown["streaming"].IsZero())
	_, hasDining := est.Breakdown[CategoryDining]
	assert.False(t, hasDining)
}

func TestEstimateReward_SumAndYearlyExact(t *testing.T) {
	p := standardProfile()
	p.CategorySpend[CategoryFuel] = decimal.RequireFromString("1234.57")
	p.CategorySpend[CategoryDining] = decimal.RequireFromString("0.01")

	for _, c := range randomCatalog(21, 50) {
		c.RewardRates[CategoryTravel] = decimal.RequireFromString("1.5")
		est := EstimateReward(p, c)

		sum := decimal.Zero
		for _, v := range est.Breakdown {
			assert.False(t, v.IsNegative())
			sum = sum.Add(v)
		}
		assert.True(t, sum.Equal(est.Monthly), "card %s: sum %s != monthly %s", c.ID, sum, est.Monthly)
		assert.True(t, est.Yearly.Equal(est.Monthly.Mul(d(12))), "card %s yearly", c.ID)
	}
}

func TestEstimateReward_NoInternalRounding(t *testing.T) {
	p := UserProfile{
		CategorySpend: map[Category]decimal.Decimal{CategoryGroceries: decimal.RequireFromString("333.33")},
	}
	c := card("c", 0, None[int](), "Cashback")
	c.RewardRates = map[Category]decimal.Decimal{CategoryGroceries: d(3)}

	est := EstimateReward(p, c)

	assert.Equal(t, "9.9999", est.Monthly.String())
	assert.Equal(t, "119.9988", est.Yearly.String())
}
