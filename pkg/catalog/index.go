package catalog

import "sort"

// Duplicate records a SKU that appeared more than once in a catalog.
// The first occurrence is kept; later occurrences are discarded.
type Duplicate struct {
	SKU       string  `json:"sku"`
	Kept      Product `json:"kept"`
	Discarded Product `json:"discarded"`
}

// Index maps normalized SKUs to product records for one platform's catalog.
// It is built once per run and immutable afterwards.
type Index struct {
	platform   Platform
	products   map[string]Product
	duplicates []Duplicate
	missing    []Product
}

// BuildIndex consumes a fetched record sequence and builds the SKU lookup.
// SKUs are normalized before insertion. A repeated SKU is recorded as a
// duplicate diagnostic, first occurrence wins. Records without a SKU cannot
// participate in matching and are collected separately for reporting.
func BuildIndex(platform Platform, records []Product) *Index {
	idx := &Index{
		platform: platform,
		products: make(map[string]Product, len(records)),
	}

	for _, rec := range records {
		sku := NormalizeSKU(rec.SKU)
		if sku == "" {
			idx.missing = append(idx.missing, rec)
			continue
		}
		rec.SKU = sku
		if kept, ok := idx.products[sku]; ok {
			idx.duplicates = append(idx.duplicates, Duplicate{
				SKU:       sku,
				Kept:      kept,
				Discarded: rec,
			})
			continue
		}
		idx.products[sku] = rec
	}

	return idx
}

// Platform returns the platform this index was built from.
func (i *Index) Platform() Platform {
	return i.platform
}

// Len returns the number of indexed records.
func (i *Index) Len() int {
	return len(i.products)
}

// Get returns the record for a SKU. The key is normalized before lookup.
func (i *Index) Get(sku string) (Product, bool) {
	p, ok := i.products[NormalizeSKU(sku)]
	return p, ok
}

// SKUs returns all indexed SKUs in lexical order.
func (i *Index) SKUs() []string {
	skus := make([]string, 0, len(i.products))
	for sku := range i.products {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return skus
}

// Duplicates returns the duplicate-SKU diagnostics recorded during indexing.
func (i *Index) Duplicates() []Duplicate {
	return i.duplicates
}

// MissingSKU returns the records that had no usable SKU.
func (i *Index) MissingSKU() []Product {
	return i.missing
}
