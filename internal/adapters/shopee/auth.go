package shopee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

// tokenResponse ответ эндпоинтов обмена и обновления токена.
// В отличие от остальных ответов API, поля токена лежат на верхнем уровне
type tokenResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	RequestID    string `json:"request_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireIn     int    `json:"expire_in"`
}

func (c *Client) postToken(ctx context.Context, path, signedURL string, payload interface{}) (*tokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("shopee: %s: encode payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signedURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shopee: %s: build request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopee: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("shopee: %s: read body: %w", path, err)
	}

	var token tokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, &APIError{Path: path, Status: resp.StatusCode, Body: truncateBody(raw)}
	}
	if token.Error != "" {
		return nil, &APIError{
			Path:    path,
			Status:  resp.StatusCode,
			Code:    token.Error,
			Message: token.Message,
			Body:    truncateBody(raw),
		}
	}
	if token.AccessToken == "" {
		return nil, &APIError{Path: path, Status: resp.StatusCode, Body: truncateBody(raw)}
	}
	return &token, nil
}

// ExchangeCode меняет код авторизации на пару токенов и сохраняет ее
// в хранилище, замещая предыдущую
func (c *Client) ExchangeCode(ctx context.Context, code string, shopID int64) (*interfaces.TokenRecord, error) {
	payload := map[string]interface{}{
		"code":       code,
		"shop_id":    shopID,
		"partner_id": c.signer.partnerID,
	}

	token, err := c.postToken(ctx, pathTokenGet, c.signer.PublicURL(pathTokenGet, nil), payload)
	if err != nil {
		return nil, err
	}

	record := &interfaces.TokenRecord{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ShopID:       shopID,
		ExpireIn:     token.ExpireIn,
		ObtainedAt:   time.Now().UTC(),
	}
	if err := c.tokens.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("shopee: store token: %w", err)
	}

	c.logger.InfoWithContext(ctx, "shop authorization completed",
		"shop_id", shopID, "expire_in", token.ExpireIn)
	return record, nil
}

// RefreshToken обновляет пару токенов по сохраненному refresh-токену
func (c *Client) RefreshToken(ctx context.Context) (*interfaces.TokenRecord, error) {
	current, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("shopee: no token to refresh: %w", err)
	}

	payload := map[string]interface{}{
		"refresh_token": current.RefreshToken,
		"shop_id":       current.ShopID,
		"partner_id":    c.signer.partnerID,
	}

	token, err := c.postToken(ctx, pathTokenRefresh, c.signer.PublicURL(pathTokenRefresh, nil), payload)
	if err != nil {
		return nil, err
	}

	record := &interfaces.TokenRecord{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ShopID:       current.ShopID,
		ExpireIn:     token.ExpireIn,
		ObtainedAt:   time.Now().UTC(),
	}
	if err := c.tokens.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("shopee: store refreshed token: %w", err)
	}

	c.logger.InfoWithContext(ctx, "shop token refreshed",
		"shop_id", current.ShopID, "expire_in", token.ExpireIn)
	return record, nil
}
