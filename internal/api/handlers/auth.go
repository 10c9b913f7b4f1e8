package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/shopee"
	apperrors "github.com/omishoninjp-sys/gotoshopee/pkg/errors"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

// AuthHandler обрабатывает авторизацию магазина на маркетплейсе
type AuthHandler struct {
	client      *shopee.Client
	tokens      interfaces.TokenRepositoryPort
	redirectURL string
	logger      interfaces.LoggerPort
}

// NewAuthHandler создает обработчик авторизации
func NewAuthHandler(client *shopee.Client, tokens interfaces.TokenRepositoryPort, redirectURL string, logger interfaces.LoggerPort) *AuthHandler {
	return &AuthHandler{
		client:      client,
		tokens:      tokens,
		redirectURL: redirectURL,
		logger:      logger,
	}
}

// Login godoc
// @Summary Ссылка на страницу авторизации магазина
// @Tags auth
// @Produce json
// @Success 200 {object} response
// @Router /auth/shopee [get]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	renderData(w, r, http.StatusOK, map[string]string{
		"auth_url": h.client.Signer().AuthURL(h.redirectURL),
	})
}

// Callback godoc
// @Summary Колбэк авторизации маркетплейса
// @Description Меняет код авторизации на пару токенов и сохраняет ее
// @Tags auth
// @Produce json
// @Param code query string true "Код авторизации"
// @Param shop_id query int true "ID магазина"
// @Success 200 {object} response
// @Failure 400 {object} errorResponse
// @Router /auth/shopee/callback [get]
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		renderError(w, r, http.StatusBadRequest, "code query parameter is required")
		return
	}

	shopID, err := strconv.ParseInt(r.URL.Query().Get("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		renderError(w, r, http.StatusBadRequest, "shop_id query parameter is required")
		return
	}

	record, err := h.client.ExchangeCode(r.Context(), code, shopID)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "authorization code exchange failed", "error", err)
		renderError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	renderData(w, r, http.StatusOK, map[string]interface{}{
		"shop_id":    record.ShopID,
		"expire_in":  record.ExpireIn,
		"expires_at": record.ExpiresAt().UTC(),
	})
}

// Refresh godoc
// @Summary Обновление пары токенов
// @Tags auth
// @Produce json
// @Success 200 {object} response
// @Failure 401 {object} errorResponse
// @Router /auth/shopee/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	record, err := h.client.RefreshToken(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			renderError(w, r, http.StatusUnauthorized, "shop is not authorized")
			return
		}
		renderError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	renderData(w, r, http.StatusOK, map[string]interface{}{
		"shop_id":    record.ShopID,
		"expire_in":  record.ExpireIn,
		"expires_at": record.ExpiresAt().UTC(),
	})
}

// Status godoc
// @Summary Состояние авторизации магазина
// @Tags auth
// @Produce json
// @Success 200 {object} response
// @Router /auth/shopee/status [get]
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	record, err := h.tokens.Get(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			renderData(w, r, http.StatusOK, map[string]interface{}{"authorized": false})
			return
		}
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	renderData(w, r, http.StatusOK, map[string]interface{}{
		"authorized": true,
		"shop_id":    record.ShopID,
		"expires_at": record.ExpiresAt().UTC(),
		"expired":    record.Expired(time.Now()),
	})
}

// Logout godoc
// @Summary Удаление сохраненной авторизации
// @Tags auth
// @Produce json
// @Success 200 {object} response
// @Router /auth/shopee [delete]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Delete(r.Context()); err != nil {
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, map[string]interface{}{"authorized": false})
}
