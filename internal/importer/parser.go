package importer

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawCard is one table row as text, before any numeric interpretation
type RawCard struct {
	Row            int
	Name           string
	Issuer         string
	MinIncome      string
	MinCreditScore string
	RewardType     string
	AnnualFee      string
	// Rates maps a lower-case category name to the cell text
	Rates        map[string]string
	SpecialPerks []string
	ApplyLink    string
	ImageURL     string
}

// column identifies what a table column holds
type column struct {
	field    string
	category string
}

const (
	fieldName      = "name"
	fieldIssuer    = "issuer"
	fieldMinIncome = "min_income"
	fieldMinScore  = "min_credit_score"
	fieldReward    = "reward_type"
	fieldFee       = "annual_fee"
	fieldPerks     = "special_perks"
	fieldApply     = "apply_link"
	fieldImage     = "image_url"
	fieldRate      = "rate"
)

var headerAliases = map[string]string{
	"card":                 fieldName,
	"card name":            fieldName,
	"name":                 fieldName,
	"issuer":               fieldIssuer,
	"bank":                 fieldIssuer,
	"min income":           fieldMinIncome,
	"minimum income":       fieldMinIncome,
	"min annual income":    fieldMinIncome,
	"income":               fieldMinIncome,
	"min credit score":     fieldMinScore,
	"minimum credit score": fieldMinScore,
	"credit score":         fieldMinScore,
	"reward type":          fieldReward,
	"rewards":              fieldReward,
	"reward":               fieldReward,
	"annual fee":           fieldFee,
	"fee":                  fieldFee,
	"perks":                fieldPerks,
	"special perks":        fieldPerks,
	"benefits":             fieldPerks,
	"apply":                fieldApply,
	"apply link":           fieldApply,
	"image":                fieldImage,
}

var (
	spacePattern = regexp.MustCompile(`\s+`)
	// "Fuel %", "Fuel rate", "Fuel (%)", "Fuel reward"
	rateHeaderPattern = regexp.MustCompile(`(?i)^([a-z][a-z ]*?)\s*(?:\(%\)|%|rate|reward|rewards)$`)
)

// Parser extracts card rows from issuer catalog pages
type Parser struct {
	categories map[string]bool
}

// NewParser creates a parser. A header equal to one of categories, or a
// category followed by "%" or "rate", is read as that category's rate.
func NewParser(categories []string) *Parser {
	p := &Parser{categories: make(map[string]bool, len(categories))}
	for _, c := range categories {
		p.categories[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return p
}

// ParseCatalogPage returns every row of every table that has a card name
// column, in document order
func (p *Parser) ParseCatalogPage(doc *goquery.Document) []RawCard {
	var cards []RawCard
	row := 0

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		columns := p.columns(table)
		if !hasField(columns, fieldName) {
			return
		}

		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			row++
			card := RawCard{Row: row, Rates: make(map[string]string)}
			cells.Each(func(i int, td *goquery.Selection) {
				if i >= len(columns) {
					return
				}
				p.assign(&card, columns[i], td)
			})
			if card.Name != "" {
				cards = append(cards, card)
			}
		})
	})

	return cards
}

func (p *Parser) columns(table *goquery.Selection) []column {
	headers := table.Find("thead th")
	if headers.Length() == 0 {
		headers = table.Find("tr").First().Find("th")
	}

	columns := make([]column, headers.Length())
	headers.Each(func(i int, th *goquery.Selection) {
		columns[i] = p.classify(cleanText(th.Text()))
	})
	return columns
}

func (p *Parser) classify(header string) column {
	h := strings.ToLower(header)
	if field, ok := headerAliases[h]; ok {
		return column{field: field}
	}
	if p.categories[h] {
		return column{field: fieldRate, category: h}
	}
	if m := rateHeaderPattern.FindStringSubmatch(h); len(m) > 1 {
		if cat := strings.TrimSpace(m[1]); p.categories[cat] {
			return column{field: fieldRate, category: cat}
		}
	}
	return column{}
}

func (p *Parser) assign(card *RawCard, col column, td *goquery.Selection) {
	text := cleanText(td.Text())

	switch col.field {
	case fieldName:
		card.Name = text
	case fieldIssuer:
		card.Issuer = text
	case fieldMinIncome:
		card.MinIncome = text
	case fieldMinScore:
		card.MinCreditScore = text
	case fieldReward:
		card.RewardType = text
	case fieldFee:
		card.AnnualFee = text
	case fieldRate:
		card.Rates[col.category] = text
	case fieldPerks:
		card.SpecialPerks = parsePerks(td)
	case fieldApply:
		if href, ok := td.Find("a[href]").First().Attr("href"); ok {
			card.ApplyLink = strings.TrimSpace(href)
		} else {
			card.ApplyLink = text
		}
	case fieldImage:
		if src, ok := td.Find("img[src]").First().Attr("src"); ok {
			card.ImageURL = strings.TrimSpace(src)
		} else {
			card.ImageURL = text
		}
	}
}

// parsePerks reads list items when present, otherwise splits on ";"
func parsePerks(td *goquery.Selection) []string {
	var perks []string
	if items := td.Find("li"); items.Length() > 0 {
		items.Each(func(_ int, li *goquery.Selection) {
			if perk := cleanText(li.Text()); perk != "" {
				perks = append(perks, perk)
			}
		})
		return perks
	}
	for _, part := range strings.Split(td.Text(), ";") {
		if perk := cleanText(part); perk != "" {
			perks = append(perks, perk)
		}
	}
	return perks
}

func hasField(columns []column, field string) bool {
	for _, c := range columns {
		if c.field == field {
			return true
		}
	}
	return false
}

func cleanText(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
