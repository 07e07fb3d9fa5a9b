package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseCatalogPage(t *testing.T) {
	parser := NewParser(testCategories)
	rows := parser.ParseCatalogPage(loadDoc(t, catalogPage))

	require.Len(t, rows, 4, "the fees table has no card name column")

	first := rows[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "Everyday Cashback", first.Name)
	assert.Equal(t, "₹3,00,000", first.MinIncome)
	assert.Equal(t, "650", first.MinCreditScore)
	assert.Equal(t, "Cashback", first.RewardType)
	assert.Equal(t, map[string]string{"fuel": "5%", "travel": "1%", "groceries": "2.5%", "dining": "1%"}, first.Rates)
	assert.Equal(t, []string{"Fuel surcharge waiver", "Welcome voucher"}, first.SpecialPerks)
	assert.Equal(t, "https://bank.example/apply/everyday", first.ApplyLink)
	assert.Equal(t, "https://bank.example/img/everyday.png", first.ImageURL)

	second := rows[1]
	assert.Equal(t, "N/A", second.MinCreditScore)
	assert.Equal(t, []string{"Lounge access", "Air miles"}, second.SpecialPerks)
	assert.Empty(t, second.ApplyLink)
}

func TestParser_Classify(t *testing.T) {
	parser := NewParser(testCategories)

	tests := []struct {
		header string
		want   column
	}{
		{header: "Card", want: column{field: fieldName}},
		{header: "Minimum Income", want: column{field: fieldMinIncome}},
		{header: "Fuel", want: column{field: fieldRate, category: "fuel"}},
		{header: "Dining %", want: column{field: fieldRate, category: "dining"}},
		{header: "Travel Rewards", want: column{field: fieldRate, category: "travel"}},
		{header: "Rent %", want: column{}},
		{header: "Something else", want: column{}},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.classify(tt.header))
		})
	}
}

func TestParser_NoCardTable(t *testing.T) {
	parser := NewParser(testCategories)
	rows := parser.ParseCatalogPage(loadDoc(t, `<html><body><p>Coming soon</p></body></html>`))
	assert.Empty(t, rows)
}

func TestParser_HeaderRowWithoutThead(t *testing.T) {
	html := `<table>
		<tr><th>Name</th><th>Income</th><th>Rewards</th></tr>
		<tr><td>Simple Card</td><td>50000</td><td>Points</td></tr>
	</table>`
	rows := NewParser(testCategories).ParseCatalogPage(loadDoc(t, html))
	require.Len(t, rows, 1)
	assert.Equal(t, "Simple Card", rows[0].Name)
	assert.Equal(t, "50000", rows[0].MinIncome)
	assert.Equal(t, "Points", rows[0].RewardType)
}
