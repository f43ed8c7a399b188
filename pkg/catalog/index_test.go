package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucab3/ml-tn-sync/pkg/catalog"
)

func TestNormalizeSKU(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  ABC-1  ", "abc-1"},
		{"case folds", "Abc-DEF", "abc-def"},
		{"already normalized", "abc-1", "abc-1"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"unicode fold", "STRASSE", "strasse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.NormalizeSKU(tt.in))
		})
	}
}

func TestBuildIndex(t *testing.T) {
	records := []catalog.Product{
		{SKU: "ABC-1", NativeID: "100", Name: "Mate", Price: 10},
		{SKU: " def-2 ", NativeID: "101", Name: "Bombilla", Price: 20},
	}

	idx := catalog.BuildIndex(catalog.PlatformTiendaNube, records)

	assert.Equal(t, catalog.PlatformTiendaNube, idx.Platform())
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"abc-1", "def-2"}, idx.SKUs())

	p, ok := idx.Get("ABC-1")
	require.True(t, ok)
	assert.Equal(t, "100", p.NativeID)
	assert.Equal(t, "abc-1", p.SKU)

	_, ok = idx.Get("nope")
	assert.False(t, ok)
}

func TestBuildIndexDuplicateFirstSeenWins(t *testing.T) {
	records := []catalog.Product{
		{SKU: "X", NativeID: "1", Price: 10},
		{SKU: "X", NativeID: "2", Price: 20},
	}

	idx := catalog.BuildIndex(catalog.PlatformMercadoLibre, records)

	require.Equal(t, 1, idx.Len())
	p, ok := idx.Get("x")
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Price)

	dups := idx.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, "x", dups[0].SKU)
	assert.Equal(t, 10.0, dups[0].Kept.Price)
	assert.Equal(t, 20.0, dups[0].Discarded.Price)
}

func TestBuildIndexDuplicateAfterNormalization(t *testing.T) {
	// Same business key spelled differently still collides.
	records := []catalog.Product{
		{SKU: "abc-1", NativeID: "1", Price: 10},
		{SKU: " ABC-1", NativeID: "2", Price: 30},
	}

	idx := catalog.BuildIndex(catalog.PlatformTiendaNube, records)

	assert.Equal(t, 1, idx.Len())
	assert.Len(t, idx.Duplicates(), 1)
}

func TestBuildIndexMissingSKU(t *testing.T) {
	records := []catalog.Product{
		{SKU: "", NativeID: "1", Price: 10},
		{SKU: "ok", NativeID: "2", Price: 20},
		{SKU: "   ", NativeID: "3", Price: 30},
	}

	idx := catalog.BuildIndex(catalog.PlatformMercadoLibre, records)

	assert.Equal(t, 1, idx.Len())
	require.Len(t, idx.MissingSKU(), 2)
	assert.Equal(t, "1", idx.MissingSKU()[0].NativeID)
	assert.Equal(t, "3", idx.MissingSKU()[1].NativeID)
}

func TestBuildIndexCopiesRecords(t *testing.T) {
	records := []catalog.Product{{SKU: "a", NativeID: "1", Price: 10}}
	idx := catalog.BuildIndex(catalog.PlatformTiendaNube, records)

	// Mutating the fetcher's slice must not reach into the index.
	records[0].Price = 999

	p, ok := idx.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Price)
}

func TestIsVariant(t *testing.T) {
	assert.False(t, catalog.Product{NativeID: "1"}.IsVariant())
	assert.True(t, catalog.Product{NativeID: "1", VariantID: "9"}.IsVariant())
}
