package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ajharbinger/card-recommender/internal/models"
	"github.com/ajharbinger/card-recommender/internal/recommend"
)

// parseSpend reads "category=amount" pairs separated by commas
func parseSpend(value string) (map[recommend.Category]decimal.Decimal, error) {
	spend := make(map[recommend.Category]decimal.Decimal)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, amount, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("spend %q must look like category=amount", pair)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		d, err := decimal.NewFromString(strings.TrimSpace(amount))
		if err != nil {
			return nil, fmt.Errorf("spend for %s is not a number: %q", name, amount)
		}
		spend[recommend.Category(name)] = d
	}
	return spend, nil
}

// render prints ranked recommendations with amounts to two decimal places
func render(w io.Writer, result *recommend.Result) {
	fmt.Fprintf(w, "Annual income: %s\n", result.AnnualIncome.StringFixed(2))
	fmt.Fprintf(w, "Eligible cards: %d\n", result.EligibleCount)

	if len(result.Recommendations) == 0 {
		fmt.Fprintln(w, "\nNo cards match your profile.")
	}

	for i, rec := range result.Recommendations {
		fmt.Fprintf(w, "\n%d. %s (%s)\n", i+1, rec.Card.Name, rec.Card.Issuer)
		fmt.Fprintf(w, "   Reward type:    %s\n", rec.Card.RewardType)
		fmt.Fprintf(w, "   Monthly reward: %s\n", rec.Reward.Monthly.StringFixed(2))
		fmt.Fprintf(w, "   Yearly reward:  %s\n", rec.Reward.Yearly.StringFixed(2))
		fmt.Fprintf(w, "   Annual fee:     %s\n", rec.Card.AnnualFee.StringFixed(2))
		for _, cat := range sortedBreakdown(rec.Reward.Breakdown) {
			fmt.Fprintf(w, "     %-10s %s\n", cat, rec.Reward.Breakdown[cat].StringFixed(2))
		}
		for _, reason := range models.Why(rec.Eligibility) {
			fmt.Fprintf(w, "   - %s\n", reason)
		}
		if len(rec.Card.SpecialPerks) > 0 {
			fmt.Fprintf(w, "   Perks: %s\n", strings.Join(rec.Card.SpecialPerks, ", "))
		}
		if rec.Card.ApplyLink != "" {
			fmt.Fprintf(w, "   Apply: %s\n", rec.Card.ApplyLink)
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d catalog record(s) with bad data\n", len(result.Skipped))
	}
}

func sortedBreakdown(breakdown map[recommend.Category]decimal.Decimal) []recommend.Category {
	cats := make([]recommend.Category, 0, len(breakdown))
	for cat := range breakdown {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
