package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/storage"
	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
	"github.com/omishoninjp-sys/gotoshopee/internal/domain/services"
	apperrors "github.com/omishoninjp-sys/gotoshopee/pkg/errors"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
	"github.com/omishoninjp-sys/gotoshopee/pkg/utils"
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

type fakeSource struct {
	shop     *models.ShopInfo
	shopErr  error
	products []models.SourceProduct
}

func (f *fakeSource) CheckConnection(ctx context.Context) (*models.ShopInfo, error) {
	return f.shop, f.shopErr
}

func (f *fakeSource) Collections(ctx context.Context) ([]models.SourceCollection, error) {
	return nil, nil
}

func (f *fakeSource) ProductsInCollection(ctx context.Context, collectionID int64, limit int) ([]models.SourceProduct, error) {
	return f.products, nil
}

func (f *fakeSource) AllProducts(ctx context.Context, limit int) ([]models.SourceProduct, error) {
	return f.products, nil
}

type fakeDestination struct {
	categories []models.Category
}

func (f *fakeDestination) Categories(ctx context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeDestination) AttributeSchema(ctx context.Context, categoryID int64) (*models.AttributeSchema, error) {
	return &models.AttributeSchema{CategoryID: categoryID}, nil
}

func (f *fakeDestination) Logistics(ctx context.Context) ([]models.LogisticsChannel, error) {
	return []models.LogisticsChannel{{ChannelID: 70022, Name: "7-ELEVEN", Enabled: true}}, nil
}

func (f *fakeDestination) ShopInfo(ctx context.Context) (*models.ShopProfile, error) {
	return &models.ShopProfile{ShopName: "bridge-shop", Region: "TW"}, nil
}

func (f *fakeDestination) UploadImage(ctx context.Context, sourceURL string) (*models.MediaHandle, error) {
	return &models.MediaHandle{ImageID: "img-1"}, nil
}

func (f *fakeDestination) CreateListing(ctx context.Context, listing *models.DestinationListing) (int64, error) {
	return 555, nil
}

type fakeTokens struct {
	record *interfaces.TokenRecord
}

func (f *fakeTokens) Get(ctx context.Context) (*interfaces.TokenRecord, error) {
	if f.record == nil {
		return nil, apperrors.ErrTokenNotFound
	}
	return f.record, nil
}

func (f *fakeTokens) Put(ctx context.Context, record *interfaces.TokenRecord) error {
	f.record = record
	return nil
}

func (f *fakeTokens) Delete(ctx context.Context) error {
	f.record = nil
	return nil
}

type fakeRunStore struct {
	runs map[string]*models.CollectionSyncSummary
}

func (f *fakeRunStore) SaveRun(ctx context.Context, run *models.CollectionSyncSummary) error {
	if f.runs == nil {
		f.runs = map[string]*models.CollectionSyncSummary{}
	}
	f.runs[run.RunID] = run
	return nil
}

func (f *fakeRunStore) GetRun(ctx context.Context, runID string) (*models.CollectionSyncSummary, error) {
	run, ok := f.runs[runID]
	if !ok {
		return nil, storage.ErrRunNotFound
	}
	return run, nil
}

func (f *fakeRunStore) ListRuns(ctx context.Context, pagination *utils.Pagination) ([]models.CollectionSyncSummary, error) {
	out := make([]models.CollectionSyncSummary, 0, len(f.runs))
	for _, run := range f.runs {
		out = append(out, *run)
	}
	pagination.SetTotal(int64(len(out)))
	return out, nil
}

type fakeBroker struct {
	published []interfaces.Message
	err       error
}

func (f *fakeBroker) Publish(ctx context.Context, message interfaces.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, message)
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	return func() error { return nil }, nil
}

func (f *fakeBroker) SubscribeWithConfig(ctx context.Context, topic string, handler interfaces.MessageHandler, config interfaces.ConsumerConfig) (func() error, error) {
	return func() error { return nil }, nil
}

func (f *fakeBroker) Close() error { return nil }

func authorizedTokens() *fakeTokens {
	return &fakeTokens{record: &interfaces.TokenRecord{
		AccessToken: "token",
		ShopID:      98765,
		ExpireIn:    14400,
		ObtainedAt:  time.Now().UTC(),
	}}
}

func sampleProduct() models.SourceProduct {
	qty := 5
	option := "Default Title"
	return models.SourceProduct{
		ID:    1,
		Title: "A",
		Variants: []models.SourceVariant{
			{Option1: &option, Price: "1000", Weight: "500", WeightUnit: "g", InventoryQuantity: &qty},
		},
		Images: []models.SourceImage{{ID: 1, Position: 1, URL: "u1"}},
	}
}

func testDefaults() services.SyncDefaults {
	return services.SyncDefaults{
		CategoryID:           100656,
		LogisticIDs:          []int64{70022},
		ExchangeRate:         0.21,
		MarkupRate:           1.05,
		DaysToShip:           2,
		InterCollectionDelay: time.Millisecond,
	}
}

func newSyncRouter(service *services.SyncService, broker interfaces.MessagingPort) *chi.Mux {
	handler := NewSyncHandler(service, broker, nopLogger{})
	r := chi.NewRouter()
	r.Get("/api/v1/sync/preview", handler.Preview)
	r.Post("/api/v1/sync/run", handler.SyncAll)
	r.Post("/api/v1/sync/collections/{collectionID}", handler.SyncCollection)
	r.Get("/api/v1/sync/runs", handler.ListRuns)
	r.Get("/api/v1/sync/runs/{runID}", handler.GetRun)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSyncCollectionEndpoint(t *testing.T) {
	source := &fakeSource{products: []models.SourceProduct{sampleProduct()}}
	service := services.NewSyncService(source, &fakeDestination{}, authorizedTokens(), nil, nil, nil, nopLogger{}, testDefaults())
	router := newSyncRouter(service, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/collections/42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["collection_id"])
	assert.Equal(t, true, data["success"])
}

func TestSyncCollectionEndpointInvalidID(t *testing.T) {
	service := services.NewSyncService(&fakeSource{}, &fakeDestination{}, authorizedTokens(), nil, nil, nil, nopLogger{}, testDefaults())
	router := newSyncRouter(service, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/collections/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncCollectionEndpointUnauthorized(t *testing.T) {
	service := services.NewSyncService(&fakeSource{}, &fakeDestination{}, &fakeTokens{}, nil, nil, nil, nopLogger{}, testDefaults())
	router := newSyncRouter(service, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/collections/42", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["error"])
}

func TestSyncCollectionEndpointBodyOverridesDefaults(t *testing.T) {
	source := &fakeSource{products: []models.SourceProduct{sampleProduct()}}
	service := services.NewSyncService(source, &fakeDestination{}, authorizedTokens(), nil, nil, nil, nopLogger{}, testDefaults())
	router := newSyncRouter(service, nil)

	payload := strings.NewReader(`{"markup_rate": 1.2, "category_id": 200100}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/collections/42", payload))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSyncAllAsyncWithoutBroker(t *testing.T) {
	service := services.NewSyncService(&fakeSource{}, &fakeDestination{}, authorizedTokens(), nil, nil, nil, nopLogger{}, testDefaults())
	router := newSyncRouter(service, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/run?async=true", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSyncAllAsyncPublishesCommand(t *testing.T) {
	broker := &fakeBroker{}
	service := services.NewSyncService(&fakeSource{}, &fakeDestination{}, authorizedTokens(), nil, nil, broker, nopLogger{}, testDefaults())
	router := newSyncRouter(service, broker)

	payload := strings.NewReader(`{"limit": 10}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync/run?async=true", payload))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, broker.published, 1)
	assert.Equal(t, "sync-commands", broker.published[0].Topic)

	var command map[string]interface{}
	require.NoError(t, json.Unmarshal(broker.published[0].Value, &command))
	assert.Equal(t, "sync_all", command["command_type"])
	assert.Equal(t, float64(10), command["limit"])
}

func TestGetRunEndpoint(t *testing.T) {
	store := &fakeRunStore{runs: map[string]*models.CollectionSyncSummary{
		"run-1": {RunID: "run-1", CollectionID: 42, Success: true},
	}}
	service := services.NewSyncService(&fakeSource{}, &fakeDestination{}, authorizedTokens(), store, nil, nil, nopLogger{}, testDefaults())
	router := newSyncRouter(service, nil)

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs/run-1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, "run-1", data["run_id"])
	})

	t.Run("not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs/missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListRunsEndpoint(t *testing.T) {
	store := &fakeRunStore{runs: map[string]*models.CollectionSyncSummary{
		"run-1": {RunID: "run-1"},
		"run-2": {RunID: "run-2"},
	}}
	service := services.NewSyncService(&fakeSource{}, &fakeDestination{}, authorizedTokens(), store, nil, nil, nopLogger{}, testDefaults())
	router := newSyncRouter(service, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/runs?page=1&page_size=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Len(t, data["items"], 2)

	pagination := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["total_items"])
	assert.Equal(t, float64(1), pagination["page"])
}

func TestPreviewEndpoint(t *testing.T) {
	source := &fakeSource{shop: &models.ShopInfo{Name: "My Shop"}}
	dest := &fakeDestination{categories: []models.Category{{CategoryID: 100656}}}
	service := services.NewSyncService(source, dest, authorizedTokens(), nil, nil, nil, nopLogger{}, testDefaults())
	router := newSyncRouter(service, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sync/preview", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, true, data["source_connected"])
	assert.Equal(t, true, data["destination_connected"])
}

func TestCatalogEndpoints(t *testing.T) {
	handler := NewCatalogHandler(
		&fakeSource{shop: &models.ShopInfo{ID: 77, Name: "My Shop"}},
		&fakeDestination{categories: []models.Category{{CategoryID: 100656}}},
		nopLogger{},
	)

	r := chi.NewRouter()
	r.Get("/api/v1/source/status", handler.SourceStatus)
	r.Get("/api/v1/destination/categories", handler.DestinationCategories)
	r.Get("/api/v1/destination/logistics", handler.DestinationLogistics)
	r.Get("/api/v1/destination/shop", handler.DestinationShop)

	t.Run("source status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/source/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, "My Shop", data["name"])
	})

	t.Run("destination categories", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/destination/categories", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("destination shop", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/destination/shop", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, "bridge-shop", data["shop_name"])
	})
}

func TestCatalogSourceFailure(t *testing.T) {
	handler := NewCatalogHandler(&fakeSource{shopErr: errors.New("dns failure")}, &fakeDestination{}, nopLogger{})

	r := chi.NewRouter()
	r.Get("/api/v1/source/status", handler.SourceStatus)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/source/status", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAuthStatusEndpoints(t *testing.T) {
	t.Run("not authorized", func(t *testing.T) {
		handler := NewAuthHandler(nil, &fakeTokens{}, "https://bridge.test/callback", nopLogger{})

		rec := httptest.NewRecorder()
		handler.Status(rec, httptest.NewRequest(http.MethodGet, "/auth/shopee/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, false, data["authorized"])
	})

	t.Run("authorized", func(t *testing.T) {
		handler := NewAuthHandler(nil, authorizedTokens(), "https://bridge.test/callback", nopLogger{})

		rec := httptest.NewRecorder()
		handler.Status(rec, httptest.NewRequest(http.MethodGet, "/auth/shopee/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, true, data["authorized"])
		assert.Equal(t, false, data["expired"])
	})

	t.Run("logout", func(t *testing.T) {
		tokens := authorizedTokens()
		handler := NewAuthHandler(nil, tokens, "https://bridge.test/callback", nopLogger{})

		rec := httptest.NewRecorder()
		handler.Logout(rec, httptest.NewRequest(http.MethodDelete, "/auth/shopee", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, tokens.record)
	})
}

func TestAuthCallbackValidation(t *testing.T) {
	handler := NewAuthHandler(nil, &fakeTokens{}, "https://bridge.test/callback", nopLogger{})

	t.Run("missing code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/shopee/callback?shop_id=1", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing shop id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.Callback(rec, httptest.NewRequest(http.MethodGet, "/auth/shopee/callback?code=abc", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
