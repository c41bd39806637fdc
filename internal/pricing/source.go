package pricing

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Source looks up the current shelf price of a product.
type Source interface {
	Name() string
	// Lookup returns the price per 100 g, or 0 when the product was not
	// found or is only sold per unit.
	Lookup(ctx context.Context, product string) (float64, error)
}

// HTMLSource reads prices from a supermarket search results page.
type HTMLSource struct {
	SourceName string
	// SearchURL holds a single %s for the query-escaped product name.
	SearchURL string

	ItemSelector string
	// UnitPriceSelector, when it matches, holds a complete label such as
	// "12.90 ₪ ל-1 ק"ג" and wins over PriceSelector/UnitSelector.
	UnitPriceSelector string
	PriceSelector     string
	UnitSelector      string

	Client *http.Client
}

// Name returns the price source name.
func (s *HTMLSource) Name() string {
	return s.SourceName
}

// Lookup fetches the search page for product and converts the first item
// not sold per unit.
func (s *HTMLSource) Lookup(ctx context.Context, product string) (float64, error) {
	doc, err := s.fetch(ctx, fmt.Sprintf(s.SearchURL, url.QueryEscape(product)))
	if err != nil {
		return 0, fmt.Errorf("%s: failed to fetch results for %q: %w", s.SourceName, product, err)
	}

	items := doc.Find(s.ItemSelector)
	if items.Length() == 0 {
		return 0, nil
	}

	label, perUnit := s.extract(items.Eq(0))
	if perUnit && items.Length() > 1 {
		if second, secondPerUnit := s.extract(items.Eq(1)); !secondPerUnit && second != "" {
			label = second
		}
	}
	return PerHundredGrams(label), nil
}

func (s *HTMLSource) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; menu-optimizer)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// extract returns the price label of an item and whether it is priced per unit.
func (s *HTMLSource) extract(item *goquery.Selection) (string, bool) {
	if s.UnitPriceSelector != "" {
		if text := strings.TrimSpace(item.Find(s.UnitPriceSelector).First().Text()); text != "" {
			return text, isPerUnit(text)
		}
	}

	number := strings.TrimSpace(item.Find(s.PriceSelector).First().Text())
	if number == "" {
		return "", false
	}
	unit := ""
	if s.UnitSelector != "" {
		unit = strings.TrimSpace(item.Find(s.UnitSelector).First().Text())
	}
	return strings.TrimSpace(number + " " + unit), isPerUnit(unit)
}

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

var (
	perKiloMarkers    = []string{`ק"ג`, "קג", "kg", "1 יחידה", "1 unit"}
	perHundredMarkers = []string{"100 גרם", `100 מ"ל`, "100 ג", "100g", "100 g", "100ml", "100 ml"}
)

// PerHundredGrams converts a price label to a price per 100 g. Per-kilo and
// single-unit labels divide by 1000 grams, per-100 labels by 100, and bare
// numbers are taken as per kilo. Unparseable labels give 0.
func PerHundredGrams(label string) float64 {
	m := numberPattern.FindString(label)
	if m == "" {
		return 0
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil || price <= 0 {
		return 0
	}

	lower := strings.ToLower(label)
	perGram := price / 1000
	switch {
	case containsAny(lower, perKiloMarkers):
	case containsAny(lower, perHundredMarkers):
		perGram = price / 100
	}
	return math.Round(perGram*1e4) / 1e4 * 100
}

func isPerUnit(text string) bool {
	return strings.Contains(text, "יח") || strings.Contains(strings.ToLower(text), "unit")
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
