package pricing

import (
	"log"

	"menu-optimizer/internal/catalog"
)

// KnownSources returns the supermarket search pages prices are read from.
// The selectors match the server-rendered result lists.
func KnownSources() map[string]*HTMLSource {
	return map[string]*HTMLSource{
		"shufersal": {
			SourceName:        "shufersal",
			SearchURL:         "https://www.shufersal.co.il/online/he/search?text=%s",
			ItemSelector:      "li[data-product-code]",
			UnitPriceSelector: "div.smallText.pricePerUnit",
			PriceSelector:     "span.number",
			UnitSelector:      "span.priceUnit",
		},
		"victory": {
			SourceName:        "victory",
			SearchURL:         "https://www.victoryonline.co.il/search/%s",
			ItemSelector:      "div.product",
			UnitPriceSelector: "span.normalize-price",
			PriceSelector:     "span.price",
		},
		"rami_levy": {
			SourceName:        "rami_levy",
			SearchURL:         "https://www.rami-levy.co.il/he/online/search?q=%s",
			ItemSelector:      "div[role='list'] div.product-flex",
			UnitPriceSelector: "span.gray-dark.xs-text.font-weight-light",
			PriceSelector:     "span.price",
			UnitSelector:      "span.xs-text.mr-1.weight-500",
		},
	}
}

// SourcesByName resolves configured source names to scrapers. The manual
// source has no scraper and unknown names are logged and skipped.
func SourcesByName(names []string) []Source {
	known := KnownSources()
	var out []Source
	for _, name := range names {
		if name == catalog.ManualSource {
			continue
		}
		s, ok := known[name]
		if !ok {
			log.Printf("No price scraper for source %s, skipping", name)
			continue
		}
		out = append(out, s)
	}
	return out
}
