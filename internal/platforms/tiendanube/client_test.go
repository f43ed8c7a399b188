package tiendanube_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucab3/ml-tn-sync/internal/platforms/tiendanube"
	"github.com/lucab3/ml-tn-sync/pkg/catalog"
	"github.com/lucab3/ml-tn-sync/pkg/errors"
)

func testConfig(baseURL string) tiendanube.Config {
	return tiendanube.Config{
		AccessToken: "tn-token",
		StoreID:     "12345",
		BaseURL:     baseURL,
		PerPage:     2,
	}
}

// pagedServer serves the given pages of raw product JSON under the store
// products listing, then empty pages.
func pagedServer(t *testing.T, pages []string, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/12345/products", func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		assert.Equal(t, "bearer tn-token", r.Header.Get("Authentication"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 || page > len(pages) {
			//nolint:errcheck
			w.Write([]byte("[]"))
			return
		}
		//nolint:errcheck
		w.Write([]byte(pages[page-1]))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchCatalog(t *testing.T) {
	pages := []string{
		`[
			{"id": 1, "name": {"es": "Mate", "en": "Gourd"}, "sku": "MATE-1", "price": "100.00", "variants": []},
			{"id": 2, "name": {"es": "Termo"}, "sku": "TER-1", "price": 200.5, "variants": []}
		]`,
		`[
			{"id": 3, "name": {"es": "Remera"}, "variants": [
				{"id": 31, "sku": "REM-S", "price": "50.00"},
				{"id": 32, "sku": "REM-M", "price": "55.00"},
				{"id": 33, "sku": "REM-L", "price": null}
			]}
		]`,
	}
	var calls atomic.Int32
	server := pagedServer(t, pages, &calls)

	client, err := tiendanube.New(testConfig(server.URL))
	require.NoError(t, err)
	assert.Equal(t, catalog.PlatformTiendaNube, client.Platform())

	products, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)

	// Two simple products plus three flattened variants.
	require.Len(t, products, 5)
	assert.Equal(t, catalog.Product{
		SKU:      "MATE-1",
		NativeID: "1",
		Name:     "Mate",
		Price:    100,
	}, products[0])
	assert.Equal(t, 200.5, products[1].Price)

	variant := products[2]
	assert.Equal(t, "REM-S", variant.SKU)
	assert.Equal(t, "3", variant.NativeID)
	assert.Equal(t, "31", variant.VariantID)
	assert.Equal(t, "Remera", variant.Name)
	assert.True(t, variant.IsVariant())

	// A null price decodes to zero rather than failing the fetch.
	assert.Equal(t, 0.0, products[4].Price)

	// Two data pages plus the terminating empty page.
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchCatalogPaginationTermination(t *testing.T) {
	pages := []string{
		`[{"id": 1, "sku": "A", "price": 1}, {"id": 2, "sku": "B", "price": 2}]`,
		`[{"id": 3, "sku": "C", "price": 3}, {"id": 4, "sku": "D", "price": 4}]`,
		`[{"id": 5, "sku": "E", "price": 5}, {"id": 6, "sku": "F", "price": 6}]`,
	}
	var calls atomic.Int32
	server := pagedServer(t, pages, &calls)

	client, err := tiendanube.New(testConfig(server.URL))
	require.NoError(t, err)

	products, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)

	assert.Len(t, products, 6)
	assert.Equal(t, int32(4), calls.Load())
}

func TestFetchCatalogInvalidPageSize(t *testing.T) {
	cfg := testConfig("http://unused.invalid")
	cfg.PerPage = -1

	client, err := tiendanube.New(cfg)
	require.NoError(t, err)

	_, err = client.FetchCatalog(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsFetchFailed(err))
}

func TestFetchCatalogOversizedPage(t *testing.T) {
	pages := []string{
		`[{"id": 1, "sku": "A", "price": 1}, {"id": 2, "sku": "B", "price": 2}, {"id": 3, "sku": "C", "price": 3}]`,
	}
	server := pagedServer(t, pages, nil)

	client, err := tiendanube.New(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.FetchCatalog(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsFetchFailed(err))
	assert.Contains(t, err.Error(), "page size")
}

func TestFetchCatalogAbortsOnPageFailure(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/12345/products", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		//nolint:errcheck
		w.Write([]byte(`[{"id": 1, "sku": "A", "price": 1}, {"id": 2, "sku": "B", "price": 2}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := tiendanube.New(testConfig(server.URL))
	require.NoError(t, err)

	products, err := client.FetchCatalog(context.Background())

	// Page one succeeded but its records must not leak out.
	require.Error(t, err)
	assert.Nil(t, products)
	assert.True(t, errors.IsFetchFailed(err))

	var fetchErr *errors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 2, fetchErr.Page)
	assert.True(t, errors.IsPlatformUnavailable(err))
}

func TestUpdatePrice(t *testing.T) {
	type call struct {
		path string
		body map[string]float64
	}
	var calls []call

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "bearer tn-token", r.Header.Get("Authentication"))

		var body map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		calls = append(calls, call{path: r.URL.Path, body: body})
		//nolint:errcheck
		w.Write([]byte(`{}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := tiendanube.New(testConfig(server.URL))
	require.NoError(t, err)

	simple := catalog.Product{SKU: "MATE-1", NativeID: "1"}
	require.NoError(t, client.UpdatePrice(context.Background(), simple, 110.5))

	variant := catalog.Product{SKU: "REM-S", NativeID: "3", VariantID: "31"}
	require.NoError(t, client.UpdatePrice(context.Background(), variant, 52))

	require.Len(t, calls, 2)
	assert.Equal(t, "/12345/products/1", calls[0].path)
	assert.Equal(t, map[string]float64{"price": 110.5}, calls[0].body)
	assert.Equal(t, "/12345/products/3/variants/31", calls[1].path)
	assert.Equal(t, map[string]float64{"price": 52}, calls[1].body)
}

func TestUpdatePriceFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "not found"}`, http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := tiendanube.New(testConfig(server.URL))
	require.NoError(t, err)

	err = client.UpdatePrice(context.Background(), catalog.Product{SKU: "X", NativeID: "9"}, 10)
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestConfigValidate(t *testing.T) {
	t.Run("missing access_token", func(t *testing.T) {
		cfg := testConfig("http://unused.invalid")
		cfg.AccessToken = ""
		_, err := tiendanube.New(cfg)
		require.Error(t, err)
		assert.True(t, errors.IsConfigInvalid(err))
	})

	t.Run("missing store_id", func(t *testing.T) {
		cfg := testConfig("http://unused.invalid")
		cfg.StoreID = ""
		_, err := tiendanube.New(cfg)
		require.Error(t, err)
		assert.True(t, errors.IsConfigInvalid(err))
	})
}
