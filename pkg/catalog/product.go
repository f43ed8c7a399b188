// Package catalog defines the platform-agnostic product model and the
// SKU index used to match items across platforms.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// Platform identifies an e-commerce platform.
type Platform string

// Known platforms.
const (
	PlatformMercadoLibre Platform = "mercadolibre"
	PlatformTiendaNube   Platform = "tiendanube"
)

// Product is the platform-agnostic view of one catalog item. Platform
// clients map their native JSON shapes into this struct at the fetch
// boundary; everything downstream is platform-agnostic.
//
// Variant-bearing products are flattened by the fetcher into one Product
// per variant, carrying the variant's own SKU and price. VariantID is set
// only on those records and is needed, together with NativeID, to route
// the update call.
type Product struct {
	SKU       string  `json:"sku"`
	NativeID  string  `json:"native_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency,omitempty"`
}

// IsVariant reports whether the record was flattened from a product variant.
func (p Product) IsVariant() bool {
	return p.VariantID != ""
}

// skuFolder is used for case-insensitive SKU normalization. Unicode case
// folding rather than ToLower, so keys like "STRASSE"/"straße" compare equal.
var skuFolder = cases.Fold()

// NormalizeSKU trims surrounding whitespace and case-folds a SKU so that
// the same business key always lands on the same index slot.
func NormalizeSKU(sku string) string {
	return skuFolder.String(strings.TrimSpace(sku))
}
