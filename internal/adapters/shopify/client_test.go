package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

// nopLogger глушит логирование в тестах
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})                           {}
func (nopLogger) Info(string, ...interface{})                            {}
func (nopLogger) Warn(string, ...interface{})                            {}
func (nopLogger) Error(string, ...interface{})                           {}
func (nopLogger) Fatal(string, ...interface{})                           {}
func (nopLogger) DebugWithContext(context.Context, string, ...interface{}) {}
func (nopLogger) InfoWithContext(context.Context, string, ...interface{})  {}
func (nopLogger) WarnWithContext(context.Context, string, ...interface{})  {}
func (nopLogger) ErrorWithContext(context.Context, string, ...interface{}) {}
func (n nopLogger) WithFields(...interfaces.LogField) interfaces.LoggerPort { return n }
func (n nopLogger) WithField(string, interface{}) interfaces.LoggerPort     { return n }
func (n nopLogger) WithSyncID(string) interfaces.LoggerPort                 { return n }
func (nopLogger) Sync() error                                               { return nil }

// testClient направляет клиент на тестовый TLS-сервер
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	client := NewClient(u.Host, "test-token", "2024-01", 0, nopLogger{})
	client.httpClient = server.Client()
	return client
}

func TestCheckConnection(t *testing.T) {
	var gotToken, gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotPath = r.URL.Path
		w.Write([]byte(`{"shop":{"id":77,"name":"Omishonin","domain":"omishonin.example","email":"shop@example.com"}}`))
	}))

	shop, err := client.CheckConnection(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "/admin/api/2024-01/shop.json", gotPath)
	assert.Equal(t, int64(77), shop.ID)
	assert.Equal(t, "Omishonin", shop.Name)
}

func TestCheckConnectionWithoutToken(t *testing.T) {
	client := NewClient("shop.example", "", "2024-01", 0, nopLogger{})

	_, err := client.CheckConnection(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token is not configured")
}

func TestGetReportsStatusAndBody(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":"Invalid API key"}`))
	}))

	_, err := client.CheckConnection(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestCollectionsMergesCustomAndSmart(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/custom_collections.json"):
			w.Write([]byte(`{"custom_collections":[{"id":1,"title":"Manual","handle":"manual","products_count":2}]}`))
		case strings.HasSuffix(r.URL.Path, "/smart_collections.json"):
			w.Write([]byte(`{"smart_collections":[{"id":2,"title":"Auto","handle":"auto","products_count":5}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	collections, err := client.Collections(context.Background())

	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, "custom", collections[0].Kind)
	assert.Equal(t, "Manual", collections[0].Title)
	assert.Equal(t, "smart", collections[1].Kind)
	assert.Equal(t, 5, collections[1].ProductsCount)
}

func TestCollectionsToleratesOneFailingSource(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/custom_collections.json"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.HasSuffix(r.URL.Path, "/smart_collections.json"):
			w.Write([]byte(`{"smart_collections":[{"id":2,"title":"Auto","handle":"auto","products_count":5}]}`))
		}
	}))

	collections, err := client.Collections(context.Background())

	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "smart", collections[0].Kind)
}

func TestCollectionsFailsWhenBothSourcesFail(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Collections(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collections fetch failed")
}

func TestProductsInCollection(t *testing.T) {
	var gotQuery url.Values
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"products":[{
			"id": 501,
			"title": "抹茶クッキー",
			"body_html": "<p>desc</p>",
			"vendor": "Omishonin",
			"options": [{"name":"Size","position":1,"values":["S","M"]}],
			"variants": [{
				"id": 9001,
				"title": "S",
				"option1": "S",
				"price": "1200.00",
				"weight": 0.45,
				"weight_unit": "kg",
				"inventory_quantity": 3
			}],
			"images": [{"id":1,"position":1,"src":"https://cdn.example/1.jpg"}]
		}]}`))
	}))

	products, err := client.ProductsInCollection(context.Background(), 42, 50)

	require.NoError(t, err)
	assert.Equal(t, "42", gotQuery.Get("collection_id"))
	assert.Equal(t, "50", gotQuery.Get("limit"))

	require.Len(t, products, 1)
	product := products[0]
	assert.Equal(t, int64(501), product.ID)
	require.Len(t, product.Variants, 1)

	// Вес приходит числом JSON и переносится строкой без потери точности
	assert.Equal(t, "0.45", product.Variants[0].Weight)
	assert.Equal(t, "1200.00", product.Variants[0].Price)
	require.NotNil(t, product.Variants[0].InventoryQuantity)
	assert.Equal(t, 3, *product.Variants[0].InventoryQuantity)

	require.Len(t, product.Images, 1)
	assert.Equal(t, "https://cdn.example/1.jpg", product.Images[0].URL)
}

func TestProductsInCollectionOmitsNonPositiveLimit(t *testing.T) {
	var gotQuery url.Values
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"products":[]}`))
	}))

	// Нулевой лимит означает отсутствие ограничения и не передается
	_, err := client.ProductsInCollection(context.Background(), 42, 0)

	require.NoError(t, err)
	assert.Equal(t, "42", gotQuery.Get("collection_id"))
	assert.False(t, gotQuery.Has("limit"))
}

func TestAllProducts(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"products":[
			{"id": 501, "title": "A"},
			{"id": 502, "title": "B"}
		]}`))
	}))

	products, err := client.AllProducts(context.Background(), 25)

	require.NoError(t, err)
	assert.Equal(t, "/admin/api/2024-01/products.json", gotPath)
	assert.Equal(t, "25", gotQuery.Get("limit"))
	assert.False(t, gotQuery.Has("collection_id"))
	require.Len(t, products, 2)
	assert.Equal(t, int64(502), products[1].ID)
}
