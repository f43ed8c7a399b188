package reconcile

import (
	"math"
	"sort"

	"github.com/lucab3/ml-tn-sync/pkg/catalog"
)

// Options configures the planner.
type Options struct {
	// Tolerance is the fractional price-difference threshold. A matched
	// pair whose relative delta exceeds it becomes a MatchedUpdate; a delta
	// exactly at the tolerance does not.
	Tolerance float64

	// AbsoluteFloor is the absolute delta threshold used instead of the
	// relative one when the adjusted source price is zero.
	AbsoluteFloor float64

	// CommissionRate is the marketplace commission percentage included in
	// source prices. The target converges to the price net of commission.
	CommissionRate float64

	// RoundDigits is the rounding applied to the adjusted price.
	// Values below zero disable rounding; zero means DefaultRoundDigits.
	RoundDigits int
}

func (o Options) roundDigits() int {
	if o.RoundDigits == 0 {
		return DefaultRoundDigits
	}
	return o.RoundDigits
}

// Plan joins the two indices by SKU and produces one decision per SKU in
// the union, in lexical SKU order. The source platform is authoritative:
// a MatchedUpdate always moves the target price toward the adjusted source
// price. Plan is a pure function of its inputs; it performs no I/O.
func Plan(source, target *catalog.Index, opts Options) []Decision {
	union := make(map[string]struct{}, source.Len()+target.Len())
	for _, sku := range source.SKUs() {
		union[sku] = struct{}{}
	}
	for _, sku := range target.SKUs() {
		union[sku] = struct{}{}
	}

	skus := make([]string, 0, len(union))
	for sku := range union {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	decisions := make([]Decision, 0, len(skus))
	for _, sku := range skus {
		src, inSource := source.Get(sku)
		tgt, inTarget := target.Get(sku)

		switch {
		case inSource && !inTarget:
			decisions = append(decisions, Decision{Kind: SourceOnly, SKU: sku, Source: src})
		case !inSource && inTarget:
			decisions = append(decisions, Decision{Kind: TargetOnly, SKU: sku, Target: tgt})
		default:
			decisions = append(decisions, match(sku, src, tgt, opts))
		}
	}

	return decisions
}

// match decides between MatchedNoop and MatchedUpdate for one pair.
func match(sku string, src, tgt catalog.Product, opts Options) Decision {
	want := PriceWithoutCommission(src.Price, opts.CommissionRate, opts.roundDigits())

	d := Decision{
		SKU:      sku,
		Source:   src,
		Target:   tgt,
		NewPrice: want,
	}

	if want == 0 {
		// Degenerate case: relative delta would divide by zero.
		d.Delta = math.Abs(want - tgt.Price)
		if d.Delta > opts.AbsoluteFloor {
			d.Kind = MatchedUpdate
		} else {
			d.Kind = MatchedNoop
		}
		return d
	}

	d.Delta = math.Abs(want-tgt.Price) / want
	if d.Delta > opts.Tolerance {
		d.Kind = MatchedUpdate
	} else {
		d.Kind = MatchedNoop
	}
	return d
}
