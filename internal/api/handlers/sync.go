package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/messaging"
	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/storage"
	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
	"github.com/omishoninjp-sys/gotoshopee/internal/domain/services"
	apperrors "github.com/omishoninjp-sys/gotoshopee/pkg/errors"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
	"github.com/omishoninjp-sys/gotoshopee/pkg/utils"
)

// SyncHandler обрабатывает запросы синхронизации каталога
type SyncHandler struct {
	service *services.SyncService
	broker  interfaces.MessagingPort // может быть nil, асинхронный запуск тогда недоступен
	logger  interfaces.LoggerPort
}

// NewSyncHandler создает обработчик синхронизации
func NewSyncHandler(service *services.SyncService, broker interfaces.MessagingPort, logger interfaces.LoggerPort) *SyncHandler {
	return &SyncHandler{service: service, broker: broker, logger: logger}
}

// decodeRequest разбирает необязательное JSON-тело запроса синхронизации
func decodeRequest(r *http.Request) (*models.SyncRequest, error) {
	var req models.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &req, nil
}

// Preview godoc
// @Summary Предпросмотр синхронизации
// @Description Проверяет готовность обеих платформ без публикации
// @Tags sync
// @Produce json
// @Success 200 {object} response
// @Router /api/v1/sync/preview [get]
func (h *SyncHandler) Preview(w http.ResponseWriter, r *http.Request) {
	preview, err := h.service.PreviewSync(r.Context())
	if err != nil {
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, preview)
}

// SyncCollection godoc
// @Summary Синхронизация одной коллекции
// @Tags sync
// @Accept json
// @Produce json
// @Param collectionID path int true "ID коллекции"
// @Success 200 {object} response
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /api/v1/sync/collections/{collectionID} [post]
func (h *SyncHandler) SyncCollection(w http.ResponseWriter, r *http.Request) {
	collectionID, err := strconv.ParseInt(chi.URLParam(r, "collectionID"), 10, 64)
	if err != nil || collectionID <= 0 {
		renderError(w, r, http.StatusBadRequest, "invalid collection id")
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.CollectionID = collectionID

	summary, err := h.service.SyncCollection(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAuthorized) {
			renderError(w, r, http.StatusUnauthorized, summary.Error)
			return
		}
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, summary)
}

// SyncAll godoc
// @Summary Синхронизация всех коллекций
// @Description Запускает перенос всех коллекций. С параметром async=true
// @Description команда публикуется в брокер и выполняется воркером
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} response
// @Success 202 {object} response
// @Router /api/v1/sync/run [post]
func (h *SyncHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if r.URL.Query().Get("async") == "true" {
		if h.broker == nil {
			renderError(w, r, http.StatusServiceUnavailable, "async mode requires a message broker")
			return
		}

		command := messaging.SyncCommand{
			CommandType:  messaging.CommandSyncAll,
			CategoryID:   req.CategoryID,
			LogisticIDs:  req.LogisticIDs,
			ExchangeRate: req.ExchangeRate,
			MarkupRate:   req.MarkupRate,
			Limit:        req.Limit,
		}
		payload, err := json.Marshal(command)
		if err != nil {
			renderError(w, r, http.StatusInternalServerError, err.Error())
			return
		}

		err = h.broker.Publish(r.Context(), interfaces.Message{
			Topic:     messaging.SyncCommandsTopic,
			Value:     payload,
			Timestamp: time.Now().UTC(),
		})
		if err != nil {
			renderError(w, r, http.StatusInternalServerError, "failed to enqueue sync command: "+err.Error())
			return
		}
		renderData(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}

	summaries, err := h.service.SyncAll(r.Context(), *req)
	if err != nil {
		renderError(w, r, http.StatusBadGateway, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, summaries)
}

// ListRuns godoc
// @Summary История запусков синхронизации
// @Tags sync
// @Produce json
// @Param page query int false "Номер страницы"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} response
// @Router /api/v1/sync/runs [get]
func (h *SyncHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	pagination := utils.NewPagination(page, pageSize)

	runs, err := h.service.ListRuns(r.Context(), pagination)
	if err != nil {
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, utils.NewPagedResult(runs, pagination))
}

// GetRun godoc
// @Summary Запуск синхронизации по идентификатору
// @Tags sync
// @Produce json
// @Param runID path string true "ID запуска"
// @Success 200 {object} response
// @Failure 404 {object} errorResponse
// @Router /api/v1/sync/runs/{runID} [get]
func (h *SyncHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if runID == "" {
		renderError(w, r, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := h.service.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			renderError(w, r, http.StatusNotFound, "sync run not found")
			return
		}
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	renderData(w, r, http.StatusOK, run)
}
