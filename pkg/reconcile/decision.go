// Package reconcile implements the catalog reconciliation engine: joining
// two SKU indices, deciding per matched pair whether a price update is
// warranted, and applying updates with per-item failure isolation.
package reconcile

import "github.com/lucab3/ml-tn-sync/pkg/catalog"

// DecisionKind classifies the outcome for one SKU.
type DecisionKind string

const (
	// MatchedNoop means the pair is within tolerance; nothing to do.
	MatchedNoop DecisionKind = "matched_noop"
	// MatchedUpdate means the target price should be set to the source price.
	MatchedUpdate DecisionKind = "matched_update"
	// SourceOnly means the SKU exists only in the source catalog.
	SourceOnly DecisionKind = "source_only"
	// TargetOnly means the SKU exists only in the target catalog.
	TargetOnly DecisionKind = "target_only"
)

// Decision is the planner's verdict for one SKU present in at least one
// catalog. Decisions are run-scoped: created by Plan, consumed by the
// Executor, discarded once the report is emitted.
type Decision struct {
	Kind DecisionKind `json:"kind"`
	SKU  string       `json:"sku"`

	// Source and Target are the matched records; the zero Product when the
	// SKU is absent from that side.
	Source catalog.Product `json:"source,omitempty"`
	Target catalog.Product `json:"target,omitempty"`

	// NewPrice is the commission-adjusted source price the target should
	// converge to. Set for matched decisions.
	NewPrice float64 `json:"new_price,omitempty"`

	// Delta is the price difference that drove the decision: relative to
	// the adjusted source price, or absolute when that price is zero.
	Delta float64 `json:"delta,omitempty"`
}
