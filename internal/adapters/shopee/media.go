package shopee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
)

// UploadImage скачивает изображение по исходному URL и загружает его
// в медиахранилище маркетплейса, возвращая непрозрачный идентификатор
func (c *Client) UploadImage(ctx context.Context, sourceURL string) (*models.MediaHandle, error) {
	data, err := c.downloadImage(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	token, err := c.currentToken(ctx)
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("shopee: %s: build multipart: %w", pathUploadImage, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("shopee: %s: build multipart: %w", pathUploadImage, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("shopee: %s: build multipart: %w", pathUploadImage, err)
	}

	signedURL := c.signer.ShopURL(pathUploadImage, token.AccessToken, token.ShopID, nil)
	envelope, err := c.do(ctx, c.mediaClient, http.MethodPost, pathUploadImage, signedURL, body, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var response struct {
		ImageInfo struct {
			ImageID      string `json:"image_id"`
			ImageURLList []struct {
				ImageURL string `json:"image_url"`
			} `json:"image_url_list"`
		} `json:"image_info"`
	}
	if err := json.Unmarshal(envelope.Response, &response); err != nil {
		return nil, fmt.Errorf("shopee: %s: decode response: %w", pathUploadImage, err)
	}
	if response.ImageInfo.ImageID == "" {
		return nil, fmt.Errorf("shopee: %s: response carries no image id", pathUploadImage)
	}

	handle := &models.MediaHandle{ImageID: response.ImageInfo.ImageID}
	if len(response.ImageInfo.ImageURLList) > 0 {
		handle.URL = response.ImageInfo.ImageURLList[0].ImageURL
	}
	return handle, nil
}

func (c *Client) downloadImage(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("shopee: download image %s: %w", sourceURL, err)
	}

	resp, err := c.mediaClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopee: download image %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopee: download image %s: status %d", sourceURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("shopee: download image %s: read body: %w", sourceURL, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("shopee: download image %s: empty body", sourceURL)
	}
	return data, nil
}
