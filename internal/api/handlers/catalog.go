package handlers

import (
	"net/http"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/services"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

// CatalogHandler отдает справочные данные обеих платформ
type CatalogHandler struct {
	source      services.SourceCatalogPort
	destination services.DestinationPort
	logger      interfaces.LoggerPort
}

// NewCatalogHandler создает обработчик справочных данных
func NewCatalogHandler(source services.SourceCatalogPort, destination services.DestinationPort, logger interfaces.LoggerPort) *CatalogHandler {
	return &CatalogHandler{source: source, destination: destination, logger: logger}
}

// SourceStatus godoc
// @Summary Проверка подключения к исходному магазину
// @Tags catalog
// @Produce json
// @Success 200 {object} response
// @Router /api/v1/source/status [get]
func (h *CatalogHandler) SourceStatus(w http.ResponseWriter, r *http.Request) {
	shop, err := h.source.CheckConnection(r.Context())
	if err != nil {
		renderError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, shop)
}

// SourceCollections godoc
// @Summary Коллекции исходного магазина
// @Tags catalog
// @Produce json
// @Success 200 {object} response
// @Router /api/v1/source/collections [get]
func (h *CatalogHandler) SourceCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.source.Collections(r.Context())
	if err != nil {
		renderError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, collections)
}

// DestinationCategories godoc
// @Summary Категории целевого маркетплейса
// @Tags catalog
// @Produce json
// @Success 200 {object} response
// @Router /api/v1/destination/categories [get]
func (h *CatalogHandler) DestinationCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.destination.Categories(r.Context())
	if err != nil {
		renderError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, categories)
}

// DestinationLogistics godoc
// @Summary Каналы доставки целевого маркетплейса
// @Tags catalog
// @Produce json
// @Success 200 {object} response
// @Router /api/v1/destination/logistics [get]
func (h *CatalogHandler) DestinationLogistics(w http.ResponseWriter, r *http.Request) {
	channels, err := h.destination.Logistics(r.Context())
	if err != nil {
		renderError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, channels)
}

// DestinationShop godoc
// @Summary Сведения о магазине на маркетплейсе
// @Tags catalog
// @Produce json
// @Success 200 {object} response
// @Router /api/v1/destination/shop [get]
func (h *CatalogHandler) DestinationShop(w http.ResponseWriter, r *http.Request) {
	profile, err := h.destination.ShopInfo(r.Context())
	if err != nil {
		renderError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, profile)
}
