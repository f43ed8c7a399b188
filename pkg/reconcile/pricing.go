package reconcile

import "math"

// DefaultRoundDigits is how many decimals prices are rounded to after
// commission adjustment.
const DefaultRoundDigits = 2

// PriceWithoutCommission removes the marketplace commission from a listed
// price: listed = net * (1 + rate/100), so net = listed / (1 + rate/100).
// A rate of 0 returns the price unchanged (still rounded). Non-positive
// prices are returned as 0.
func PriceWithoutCommission(price, commissionRate float64, digits int) float64 {
	if price <= 0 {
		return 0
	}
	net := price / (1 + commissionRate/100)
	return roundTo(net, digits)
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, digits int) float64 {
	if digits < 0 {
		return v
	}
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}
