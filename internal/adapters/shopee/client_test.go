package shopee

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
	apperrors "github.com/omishoninjp-sys/gotoshopee/pkg/errors"
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

func authorizedTokens() *fakeTokens {
	return &fakeTokens{record: &interfaces.TokenRecord{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ShopID:       98765,
		ExpireIn:     14400,
		ObtainedAt:   time.Now().UTC(),
	}}
}

func testShopeeClient(t *testing.T, tokens interfaces.TokenRepositoryPort, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(2005001, "partner-secret", server.URL, 0, 0, tokens, nopLogger{})
}

func TestCategories(t *testing.T) {
	var gotQuery map[string][]string
	client := testShopeeClient(t, authorizedTokens(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"error":"","message":"","request_id":"r1","response":{"category_list":[
			{"category_id":100656,"parent_category_id":100017,"original_category_name":"Gift Sets","has_children":false}
		]}}`))
	}))

	categories, err := client.Categories(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, int64(100656), categories[0].CategoryID)

	// Запрос подписан от имени магазина и несет язык каталога
	assert.Equal(t, "access-token", gotQuery["access_token"][0])
	assert.Equal(t, "98765", gotQuery["shop_id"][0])
	assert.Equal(t, "zh-Hant", gotQuery["language"][0])
	assert.NotEmpty(t, gotQuery["sign"][0])
}

func TestCategoriesWithoutAuthorization(t *testing.T) {
	client := testShopeeClient(t, &fakeTokens{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("запрос не должен выполняться без авторизации")
	}))

	_, err := client.Categories(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestAPIErrorFromEnvelope(t *testing.T) {
	client := testShopeeClient(t, authorizedTokens(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"error_auth","message":"Invalid access_token","request_id":"r2"}`))
	}))

	_, err := client.Categories(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "error_auth", apiErr.Code)
	assert.Equal(t, "Invalid access_token", apiErr.Message)
}

func TestAttributeSchema(t *testing.T) {
	client := testShopeeClient(t, authorizedTokens(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100656", r.URL.Query().Get("category_id"))
		w.Write([]byte(`{"error":"","response":{"attribute_list":[
			{"attribute_id":102384,"original_attribute_name":"Region of Origin","attribute_value_list":[
				{"value_id":17007,"original_value_name":"Japan"}
			]}
		]}}`))
	}))

	schema, err := client.AttributeSchema(context.Background(), 100656)

	require.NoError(t, err)
	assert.Equal(t, int64(100656), schema.CategoryID)
	require.Len(t, schema.Attributes, 1)
	require.Len(t, schema.Attributes[0].Values, 1)
	assert.Equal(t, int64(17007), schema.Attributes[0].Values[0].ValueID)
}

func TestExchangeCodeStoresToken(t *testing.T) {
	tokens := &fakeTokens{}
	client := testShopeeClient(t, tokens, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathTokenGet, r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "auth-code", payload["code"])
		assert.Equal(t, float64(98765), payload["shop_id"])

		w.Write([]byte(`{"request_id":"r3","access_token":"new-access","refresh_token":"new-refresh","expire_in":14400}`))
	}))

	record, err := client.ExchangeCode(context.Background(), "auth-code", 98765)

	require.NoError(t, err)
	assert.Equal(t, "new-access", record.AccessToken)
	assert.Equal(t, "new-refresh", record.RefreshToken)
	assert.Equal(t, int64(98765), record.ShopID)
	assert.False(t, record.ObtainedAt.IsZero())

	stored, err := tokens.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-access", stored.AccessToken)
}

func TestExchangeCodeRejectsErrorResponse(t *testing.T) {
	tokens := &fakeTokens{}
	client := testShopeeClient(t, tokens, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"error_auth","message":"Invalid code","request_id":"r4"}`))
	}))

	_, err := client.ExchangeCode(context.Background(), "bad-code", 98765)

	require.Error(t, err)
	assert.Nil(t, tokens.record)
}

func TestRefreshTokenReplacesStoredPair(t *testing.T) {
	tokens := authorizedTokens()
	client := testShopeeClient(t, tokens, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathTokenRefresh, r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "refresh-token", payload["refresh_token"])

		w.Write([]byte(`{"request_id":"r5","access_token":"rotated-access","refresh_token":"rotated-refresh","expire_in":14400}`))
	}))

	record, err := client.RefreshToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "rotated-access", record.AccessToken)
	assert.Equal(t, int64(98765), record.ShopID)
	assert.Equal(t, "rotated-access", tokens.record.AccessToken)
}

func TestRefreshTokenWithoutStoredToken(t *testing.T) {
	client := testShopeeClient(t, &fakeTokens{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("запрос не должен выполняться без сохраненного токена")
	}))

	_, err := client.RefreshToken(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestUploadImage(t *testing.T) {
	var uploadContentType string
	mux := http.NewServeMux()
	mux.HandleFunc("/image.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	})
	mux.HandleFunc(pathUploadImage, func(w http.ResponseWriter, r *http.Request) {
		uploadContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("image")
		require.NoError(t, err)
		assert.Equal(t, "image.jpg", header.Filename)

		w.Write([]byte(`{"error":"","response":{"image_info":{
			"image_id":"shopee-img-1",
			"image_url_list":[{"image_url":"https://cf.shopee.tw/img/1"}]
		}}}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := NewClient(2005001, "partner-secret", server.URL, 0, 0, authorizedTokens(), nopLogger{})

	handle, err := client.UploadImage(context.Background(), server.URL+"/image.jpg")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uploadContentType, "multipart/form-data"))
	assert.Equal(t, "shopee-img-1", handle.ImageID)
	assert.Equal(t, "https://cf.shopee.tw/img/1", handle.URL)
}

func TestUploadImageFailsOnBrokenDownload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/missing.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc(pathUploadImage, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("изображение не должно загружаться после неудачного скачивания")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := NewClient(2005001, "partner-secret", server.URL, 0, 0, authorizedTokens(), nopLogger{})

	_, err := client.UploadImage(context.Background(), server.URL+"/missing.jpg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestCreateListing(t *testing.T) {
	client := testShopeeClient(t, authorizedTokens(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathAddItem, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var listing map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &listing))
		assert.Equal(t, "【日本直送】抹茶クッキー", listing["item_name"])

		w.Write([]byte(`{"error":"","response":{"item_id":123456789}}`))
	}))

	itemID, err := client.CreateListing(context.Background(), &models.DestinationListing{
		ItemName:   "【日本直送】抹茶クッキー",
		CategoryID: 100656,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(123456789), itemID)
}

func TestCreateListingWithoutItemID(t *testing.T) {
	client := testShopeeClient(t, authorizedTokens(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"","response":{}}`))
	}))

	_, err := client.CreateListing(context.Background(), &models.DestinationListing{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no item id")
}
