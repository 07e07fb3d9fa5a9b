package importer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const catalogPage = `<!DOCTYPE html>
<html>
<head><title>Our Credit Cards</title></head>
<body>
  <table class="fees">
    <tr><th>Service</th><th>Charge</th></tr>
    <tr><td>Card replacement</td><td>100</td></tr>
  </table>
  <table id="cards">
    <thead>
      <tr>
        <th>Card Name</th><th>Min Income</th><th>Credit Score</th><th>Reward Type</th>
        <th>Fuel %</th><th>Travel (%)</th><th>Groceries rate</th><th>Dining</th>
        <th>Annual Fee</th><th>Perks</th><th>Apply</th><th>Image</th>
      </tr>
    </thead>
    <tbody>
      <tr>
        <td> Everyday
             Cashback </td><td>₹3,00,000</td><td>650</td><td>Cashback</td>
        <td>5%</td><td>1%</td><td>2.5%</td><td>1%</td>
        <td>₹499</td>
        <td><ul><li>Fuel surcharge waiver</li><li>Welcome voucher</li></ul></td>
        <td><a href="https://bank.example/apply/everyday">Apply now</a></td>
        <td><img src="https://bank.example/img/everyday.png"></td>
      </tr>
      <tr>
        <td>Travel Elite</td><td>12,00,000</td><td>N/A</td><td>Travel Points</td>
        <td>1</td><td>6</td><td>1</td><td>2</td>
        <td>Lifetime Free</td>
        <td>Lounge access; Air miles</td>
        <td></td><td></td>
      </tr>
      <tr>
        <td>Mystery Card</td><td>on request</td><td>700</td><td>Cashback</td>
        <td>five</td><td>1</td><td>1</td><td>1</td>
        <td>0</td><td></td><td></td><td></td>
      </tr>
      <tr>
        <td>Over Generous</td><td>100000</td><td>600</td><td>Cashback</td>
        <td>150</td><td>1</td><td>1</td><td>1</td>
        <td>0</td><td></td><td></td><td></td>
      </tr>
    </tbody>
  </table>
</body>
</html>`

var testCategories = []string{"fuel", "travel", "groceries", "dining"}

func loadDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// fakeFetcher serves fixed documents by URL
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls int
}

func (f *fakeFetcher) Get(ctx context.Context, url string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	html, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("unexpected status code: 404")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
