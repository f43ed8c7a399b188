package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucab3/ml-tn-sync/pkg/catalog"
	"github.com/lucab3/ml-tn-sync/pkg/reconcile"
)

func indexOf(t *testing.T, platform catalog.Platform, products ...catalog.Product) *catalog.Index {
	t.Helper()
	return catalog.BuildIndex(platform, products)
}

func TestPlanUnionAndOrder(t *testing.T) {
	source := indexOf(t, catalog.PlatformMercadoLibre,
		catalog.Product{SKU: "b", NativeID: "mlb", Price: 100},
		catalog.Product{SKU: "d", NativeID: "mld", Price: 50},
	)
	target := indexOf(t, catalog.PlatformTiendaNube,
		catalog.Product{SKU: "a", NativeID: "tna", Price: 10},
		catalog.Product{SKU: "b", NativeID: "tnb", Price: 100},
	)

	decisions := reconcile.Plan(source, target, reconcile.Options{Tolerance: 0.01})

	require.Len(t, decisions, 3)
	assert.Equal(t, "a", decisions[0].SKU)
	assert.Equal(t, reconcile.TargetOnly, decisions[0].Kind)
	assert.Equal(t, "b", decisions[1].SKU)
	assert.Equal(t, reconcile.MatchedNoop, decisions[1].Kind)
	assert.Equal(t, "d", decisions[2].SKU)
	assert.Equal(t, reconcile.SourceOnly, decisions[2].Kind)
}

func TestPlanDeterminism(t *testing.T) {
	source := indexOf(t, catalog.PlatformMercadoLibre,
		catalog.Product{SKU: "x", Price: 100},
		catalog.Product{SKU: "y", Price: 200},
		catalog.Product{SKU: "z", Price: 300},
	)
	target := indexOf(t, catalog.PlatformTiendaNube,
		catalog.Product{SKU: "x", Price: 90},
		catalog.Product{SKU: "y", Price: 200},
		catalog.Product{SKU: "w", Price: 10},
	)
	opts := reconcile.Options{Tolerance: 0.01}

	first := reconcile.Plan(source, target, opts)
	second := reconcile.Plan(source, target, opts)

	assert.Equal(t, first, second)
}

func TestPlanToleranceBoundary(t *testing.T) {
	// Source 100, tolerance 10%: target 90 is exactly at the boundary.
	opts := reconcile.Options{Tolerance: 0.10}

	t.Run("exactly at tolerance is a noop", func(t *testing.T) {
		source := indexOf(t, catalog.PlatformMercadoLibre, catalog.Product{SKU: "x", Price: 100})
		target := indexOf(t, catalog.PlatformTiendaNube, catalog.Product{SKU: "x", Price: 90})

		decisions := reconcile.Plan(source, target, opts)
		require.Len(t, decisions, 1)
		assert.Equal(t, reconcile.MatchedNoop, decisions[0].Kind)
		assert.InDelta(t, 0.10, decisions[0].Delta, 1e-9)
	})

	t.Run("above tolerance updates", func(t *testing.T) {
		source := indexOf(t, catalog.PlatformMercadoLibre, catalog.Product{SKU: "x", Price: 100})
		target := indexOf(t, catalog.PlatformTiendaNube, catalog.Product{SKU: "x", Price: 89.99})

		decisions := reconcile.Plan(source, target, opts)
		require.Len(t, decisions, 1)
		assert.Equal(t, reconcile.MatchedUpdate, decisions[0].Kind)
		assert.Equal(t, 100.0, decisions[0].NewPrice)
	})
}

func TestPlanZeroSourcePriceUsesAbsoluteFloor(t *testing.T) {
	opts := reconcile.Options{Tolerance: 0.01, AbsoluteFloor: 1.0}

	t.Run("below floor", func(t *testing.T) {
		source := indexOf(t, catalog.PlatformMercadoLibre, catalog.Product{SKU: "x", Price: 0})
		target := indexOf(t, catalog.PlatformTiendaNube, catalog.Product{SKU: "x", Price: 0.5})

		decisions := reconcile.Plan(source, target, opts)
		require.Len(t, decisions, 1)
		assert.Equal(t, reconcile.MatchedNoop, decisions[0].Kind)
	})

	t.Run("above floor", func(t *testing.T) {
		source := indexOf(t, catalog.PlatformMercadoLibre, catalog.Product{SKU: "x", Price: 0})
		target := indexOf(t, catalog.PlatformTiendaNube, catalog.Product{SKU: "x", Price: 5})

		decisions := reconcile.Plan(source, target, opts)
		require.Len(t, decisions, 1)
		assert.Equal(t, reconcile.MatchedUpdate, decisions[0].Kind)
		assert.Equal(t, 0.0, decisions[0].NewPrice)
		assert.Equal(t, 5.0, decisions[0].Delta)
	})
}

func TestPlanCommissionAdjustment(t *testing.T) {
	// Listed 113 with 13% commission nets 100; target already at 100.
	source := indexOf(t, catalog.PlatformMercadoLibre, catalog.Product{SKU: "x", Price: 113})
	target := indexOf(t, catalog.PlatformTiendaNube, catalog.Product{SKU: "x", Price: 100})

	decisions := reconcile.Plan(source, target, reconcile.Options{
		Tolerance:      0.01,
		CommissionRate: 13,
	})

	require.Len(t, decisions, 1)
	assert.Equal(t, reconcile.MatchedNoop, decisions[0].Kind)
	assert.Equal(t, 100.0, decisions[0].NewPrice)
}

func TestPlanIdempotence(t *testing.T) {
	source := indexOf(t, catalog.PlatformMercadoLibre,
		catalog.Product{SKU: "a", Price: 100},
		catalog.Product{SKU: "b", Price: 250},
	)
	target := indexOf(t, catalog.PlatformTiendaNube,
		catalog.Product{SKU: "a", NativeID: "1", Price: 80},
		catalog.Product{SKU: "b", NativeID: "2", Price: 200},
	)
	opts := reconcile.Options{Tolerance: 0.01}

	first := reconcile.Plan(source, target, opts)

	// Apply the planned updates to a rebuilt target catalog.
	applied := make(map[string]float64)
	for _, d := range first {
		require.Equal(t, reconcile.MatchedUpdate, d.Kind)
		applied[d.SKU] = d.NewPrice
	}
	converged := indexOf(t, catalog.PlatformTiendaNube,
		catalog.Product{SKU: "a", NativeID: "1", Price: applied["a"]},
		catalog.Product{SKU: "b", NativeID: "2", Price: applied["b"]},
	)

	second := reconcile.Plan(source, converged, opts)
	for _, d := range second {
		assert.Equal(t, reconcile.MatchedNoop, d.Kind, "sku %s should be converged", d.SKU)
	}
}

func TestPlanMatchesNormalizedSKUs(t *testing.T) {
	source := indexOf(t, catalog.PlatformMercadoLibre, catalog.Product{SKU: "ABC-1 ", Price: 100})
	target := indexOf(t, catalog.PlatformTiendaNube, catalog.Product{SKU: " abc-1", Price: 100})

	decisions := reconcile.Plan(source, target, reconcile.Options{Tolerance: 0.01})

	require.Len(t, decisions, 1)
	assert.Equal(t, "abc-1", decisions[0].SKU)
	assert.Equal(t, reconcile.MatchedNoop, decisions[0].Kind)
}
