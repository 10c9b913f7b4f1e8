package shopee

import (
	"bytes"
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
	defaultTimeout      = 30 * time.Second
	defaultMediaTimeout = 60 * time.Second

	defaultLanguage = "zh-Hant"

	maxErrorBodyBytes = 512
)

// APIError описывает отказ Partner V2 API с контекстом для диагностики
type APIError struct {
	Path    string
	Status  int
	Code    string
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("shopee: %s: status %d: %s: %s", e.Path, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("shopee: %s: status %d: %s", e.Path, e.Status, e.Body)
}

// apiEnvelope общий конверт ответов Partner V2 API
type apiEnvelope struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Response  json.RawMessage `json:"response"`
}

// Client адаптер Partner V2 API целевого маркетплейса.
// Реализует services.DestinationPort. Запросы от имени магазина берут
// токен из хранилища на каждый вызов, клиент токены не мутирует
// (кроме операций авторизации в auth.go)
type Client struct {
	signer      *Signer
	httpClient  *http.Client // запросы метаданных
	mediaClient *http.Client // загрузка изображений и публикация карточек
	tokens      interfaces.TokenRepositoryPort
	logger      interfaces.LoggerPort
	language    string
}

// NewClient создает клиент целевого маркетплейса
func NewClient(partnerID int64, partnerKey, host string, timeout, mediaTimeout time.Duration, tokens interfaces.TokenRepositoryPort, logger interfaces.LoggerPort) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if mediaTimeout <= 0 {
		mediaTimeout = defaultMediaTimeout
	}
	return &Client{
		signer:      NewSigner(partnerID, partnerKey, host),
		httpClient:  &http.Client{Timeout: timeout},
		mediaClient: &http.Client{Timeout: mediaTimeout},
		tokens:      tokens,
		logger:      logger,
		language:    defaultLanguage,
	}
}

// Signer возвращает построитель подписанных URL (нужен слою авторизации)
func (c *Client) Signer() *Signer {
	return c.signer
}

func (c *Client) currentToken(ctx context.Context) (*interfaces.TokenRecord, error) {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("shopee: no active authorization: %w", err)
	}
	return token, nil
}

// do выполняет запрос и разбирает конверт ответа.
// Ненулевой код error в конверте трактуется как отказ
func (c *Client) do(ctx context.Context, client *http.Client, method, path, rawURL string, body io.Reader, contentType string) (*apiEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("shopee: %s: build request: %w", path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopee: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("shopee: %s: read body: %w", path, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &APIError{Path: path, Status: resp.StatusCode, Body: truncateBody(raw)}
	}

	if envelope.Error != "" {
		return nil, &APIError{
			Path:    path,
			Status:  resp.StatusCode,
			Code:    envelope.Error,
			Message: envelope.Message,
			Body:    truncateBody(raw),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Path: path, Status: resp.StatusCode, Body: truncateBody(raw)}
	}
	return &envelope, nil
}

// shopGet выполняет подписанный GET от имени магазина
func (c *Client) shopGet(ctx context.Context, path string, extra url.Values, out interface{}) error {
	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}

	signedURL := c.signer.ShopURL(path, token.AccessToken, token.ShopID, extra)
	envelope, err := c.do(ctx, c.httpClient, http.MethodGet, path, signedURL, nil, "")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Response, out); err != nil {
		return fmt.Errorf("shopee: %s: decode response: %w", path, err)
	}
	return nil
}

// shopPostJSON выполняет подписанный POST с JSON-телом от имени магазина
func (c *Client) shopPostJSON(ctx context.Context, client *http.Client, path string, payload interface{}, out interface{}) error {
	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("shopee: %s: encode payload: %w", path, err)
	}

	signedURL := c.signer.ShopURL(path, token.AccessToken, token.ShopID, nil)
	envelope, err := c.do(ctx, client, http.MethodPost, path, signedURL, bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Response, out); err != nil {
		return fmt.Errorf("shopee: %s: decode response: %w", path, err)
	}
	return nil
}

// Categories возвращает дерево категорий маркетплейса
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	extra := url.Values{}
	extra.Set("language", c.language)

	var response struct {
		CategoryList []models.Category `json:"category_list"`
	}
	if err := c.shopGet(ctx, pathCategories, extra, &response); err != nil {
		return nil, err
	}
	return response.CategoryList, nil
}

// AttributeSchema возвращает схему атрибутов категории
func (c *Client) AttributeSchema(ctx context.Context, categoryID int64) (*models.AttributeSchema, error) {
	extra := url.Values{}
	extra.Set("category_id", strconv.FormatInt(categoryID, 10))
	extra.Set("language", c.language)

	var response struct {
		AttributeList []models.Attribute `json:"attribute_list"`
	}
	if err := c.shopGet(ctx, pathAttributes, extra, &response); err != nil {
		return nil, err
	}
	return &models.AttributeSchema{
		CategoryID: categoryID,
		Attributes: response.AttributeList,
	}, nil
}

// Logistics возвращает доступные магазину каналы доставки
func (c *Client) Logistics(ctx context.Context) ([]models.LogisticsChannel, error) {
	var response struct {
		LogisticsChannelList []models.LogisticsChannel `json:"logistics_channel_list"`
	}
	if err := c.shopGet(ctx, pathLogistics, nil, &response); err != nil {
		return nil, err
	}
	return response.LogisticsChannelList, nil
}

// ShopInfo возвращает сведения о магазине на маркетплейсе
func (c *Client) ShopInfo(ctx context.Context) (*models.ShopProfile, error) {
	var response models.ShopProfile
	if err := c.shopGet(ctx, pathShopInfo, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return string(body)
}
