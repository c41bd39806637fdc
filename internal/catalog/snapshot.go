package catalog

import "sort"

// ManualSource is the price source for hand-entered prices. It never takes
// part in the cross-source fallback mean.
const ManualSource = "manual"

// ForSource builds the record snapshot used for one price source. Each food
// is priced from source when available, otherwise from the mean of the other
// non-manual sources. Foods with neither are dropped. The input is not modified.
func ForSource(records []RawFood, source string) []RawFood {
	out := make([]RawFood, 0, len(records))
	for _, r := range records {
		prices := r.Prices
		if len(prices) == 0 && r.Price != nil {
			prices = map[string]float64{ManualSource: *r.Price}
		}

		price, ok := sourcePrice(prices, source)
		if !ok {
			continue
		}

		cp := r
		cp.AllowedMeals = append([]string(nil), r.AllowedMeals...)
		cp.Prices = map[string]float64{source: price}
		cp.ActivePriceSource = source
		cp.Price = &price
		out = append(out, cp)
	}
	return out
}

func sourcePrice(prices map[string]float64, source string) (float64, bool) {
	if p, ok := prices[source]; ok && p >= 0 {
		return p, true
	}

	names := make([]string, 0, len(prices))
	for name := range prices {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	var n int
	for _, name := range names {
		p := prices[name]
		if name == ManualSource || name == source || p < 0 {
			continue
		}
		sum += p
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
