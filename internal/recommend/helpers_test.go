package recommend

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func nd(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// standardProfile is the reference profile: 50000 a month, score 750.
func standardProfile() UserProfile {
	return UserProfile{
		MonthlyIncome: d(50000),
		CreditScore:   750,
		CategorySpend: map[Category]decimal.Decimal{
			CategoryFuel:      d(2000),
			CategoryTravel:    d(1000),
			CategoryGroceries: d(3000),
			CategoryDining:    d(1000),
		},
		PreferredRewardType: NoRewardFilter,
	}
}

func rates(fuel, travel, groceries, dining int64) map[Category]decimal.Decimal {
	return map[Category]decimal.Decimal{
		CategoryFuel:      d(fuel),
		CategoryTravel:    d(travel),
		CategoryGroceries: d(groceries),
		CategoryDining:    d(dining),
	}
}

func card(id string, minIncome int64, minScore Optional[int], rewardType string) CardRecord {
	return CardRecord{
		ID:             id,
		Name:           "Card " + id,
		Issuer:         "Test Bank",
		MinIncome:      nd(minIncome),
		MinCreditScore: minScore,
		RewardType:     rewardType,
		RewardRates:    rates(1, 1, 1, 1),
	}
}

// randomCatalog builds a deterministic mixed catalog for property checks.
func randomCatalog(seed int64, n int) []CardRecord {
	r := rand.New(rand.NewSource(seed))
	types := []string{"Cashback", "Points", "Cashback Plus", "Travel Points", "cashback"}
	out := make([]CardRecord, n)
	for i := range out {
		score := None[int]()
		if r.Intn(3) > 0 {
			score = Some(r.Intn(901))
		}
		out[i] = CardRecord{
			ID:             fmt.Sprintf("card-%03d", i),
			Name:           fmt.Sprintf("Card %d", i),
			MinIncome:      nd(int64(r.Intn(2000000))),
			MinCreditScore: score,
			RewardType:     types[r.Intn(len(types))],
			RewardRates:    rates(int64(r.Intn(6)), int64(r.Intn(6)), int64(r.Intn(6)), int64(r.Intn(6))),
		}
	}
	return out
}

func ids(cards []CardRecord) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
