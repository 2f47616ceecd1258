package domain

import "math"

// CalculateOrderTotal sums quantity * price across a booking's clothing items.
// Malformed entries (negative or NaN quantity/price) contribute 0 instead of
// poisoning the total: a booking with one corrupt line item must still show a
// usable total. The result is always a non-negative, finite number.
func CalculateOrderTotal(items []ClothingItem) float64 {
	var total float64
	for _, item := range items {
		q := float64(item.Quantity)
		p := item.Price
		if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
			continue
		}
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		total += q * p
	}
	if total < 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return total
}

// ResolveDisplayTotal picks the amount shown to the customer: the precomputed
// total when one is present and sane, otherwise the sum derived from the line
// items. Every screen that shows a price resolves it through here so there is
// exactly one summation rule.
func ResolveDisplayTotal(precomputed *float64, items []ClothingItem) float64 {
	if precomputed != nil && *precomputed >= 0 && !math.IsNaN(*precomputed) && !math.IsInf(*precomputed, 0) {
		return *precomputed
	}
	return CalculateOrderTotal(items)
}
