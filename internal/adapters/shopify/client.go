package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

const (
	defaultAPIVersion = "2024-01"
	defaultTimeout    = 30 * time.Second

	collectionsPageLimit = 250

	// Ограничение размера тела ответа, попадающего в текст ошибки
	maxErrorBodyBytes = 512
)

// Client адаптер Admin REST API исходной платформы.
// Реализует services.SourceCatalogPort
type Client struct {
	store       string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      interfaces.LoggerPort
}

// NewClient создает клиент исходного каталога
func NewClient(store, accessToken, apiVersion string, timeout time.Duration, logger interfaces.LoggerPort) *Client {
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		store:       store,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := fmt.Sprintf("https://%s/admin/api/%s%s", c.store, c.apiVersion, path)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// get выполняет запрос и декодирует ответ. Ошибки несут URL, статус
// и фрагмент тела ответа для диагностики без повторного запроса
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.accessToken == "" {
		return fmt.Errorf("shopify: access token is not configured")
	}

	endpoint := c.endpoint(path, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("shopify: build request %s: %w", endpoint, err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("shopify: GET %s: read body: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shopify: GET %s: status %d: %s", endpoint, resp.StatusCode, truncateBody(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("shopify: GET %s: decode response: %w", endpoint, err)
	}
	return nil
}

// CheckConnection проверяет доступность магазина через /shop.json
func (c *Client) CheckConnection(ctx context.Context) (*models.ShopInfo, error) {
	var envelope shopEnvelope
	if err := c.get(ctx, "/shop.json", nil, &envelope); err != nil {
		return nil, err
	}
	return &models.ShopInfo{
		ID:     envelope.Shop.ID,
		Name:   envelope.Shop.Name,
		Domain: envelope.Shop.Domain,
		Email:  envelope.Shop.Email,
	}, nil
}

// Collections возвращает объединение ручных и автоматических коллекций.
// Отказ одного из двух запросов не скрывает результаты другого
func (c *Client) Collections(ctx context.Context) ([]models.SourceCollection, error) {
	params := url.Values{"limit": []string{strconv.Itoa(collectionsPageLimit)}}
	collections := make([]models.SourceCollection, 0)

	var custom customCollectionsEnvelope
	customErr := c.get(ctx, "/custom_collections.json", params, &custom)
	if customErr != nil {
		c.logger.WarnWithContext(ctx, "custom collections fetch failed", "error", customErr)
	} else {
		for _, wc := range custom.CustomCollections {
			collections = append(collections, wc.toModel("custom"))
		}
	}

	var smart smartCollectionsEnvelope
	smartErr := c.get(ctx, "/smart_collections.json", params, &smart)
	if smartErr != nil {
		c.logger.WarnWithContext(ctx, "smart collections fetch failed", "error", smartErr)
	} else {
		for _, wc := range smart.SmartCollections {
			collections = append(collections, wc.toModel("smart"))
		}
	}

	if customErr != nil && smartErr != nil {
		return nil, fmt.Errorf("shopify: collections fetch failed: %v; %v", customErr, smartErr)
	}
	return collections, nil
}

// ProductsInCollection возвращает товары коллекции с полными вариантами.
// Неположительный limit означает отсутствие ограничения, параметр тогда не передается
func (c *Client) ProductsInCollection(ctx context.Context, collectionID int64, limit int) ([]models.SourceProduct, error) {
	params := url.Values{
		"collection_id": []string{strconv.FormatInt(collectionID, 10)},
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var envelope productsEnvelope
	if err := c.get(ctx, "/products.json", params, &envelope); err != nil {
		return nil, err
	}

	products := make([]models.SourceProduct, 0, len(envelope.Products))
	for _, wp := range envelope.Products {
		products = append(products, wp.toModel())
	}
	return products, nil
}

// AllProducts возвращает товары магазина без фильтра по коллекции.
// Используется, когда в магазине нет ни одной коллекции
func (c *Client) AllProducts(ctx context.Context, limit int) ([]models.SourceProduct, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var envelope productsEnvelope
	if err := c.get(ctx, "/products.json", params, &envelope); err != nil {
		return nil, err
	}

	products := make([]models.SourceProduct, 0, len(envelope.Products))
	for _, wp := range envelope.Products {
		products = append(products, wp.toModel())
	}
	return products, nil
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return string(body)
}
