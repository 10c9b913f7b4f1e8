package services

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/omishoninjp-sys/gotoshopee/internal/adapters/messaging"
	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
	apperrors "github.com/omishoninjp-sys/gotoshopee/pkg/errors"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
	"github.com/omishoninjp-sys/gotoshopee/pkg/utils"
)

const (
	// Ключ и время жизни кэша предпросмотра
	previewCacheKey = "sync:preview"
	previewCacheTTL = time.Minute
)

// SyncDefaults значения по умолчанию для запросов синхронизации
type SyncDefaults struct {
	CategoryID           int64
	LogisticIDs          []int64
	ExchangeRate         float64
	MarkupRate           float64
	Limit                int
	PreOrder             bool
	DaysToShip           int
	InterCollectionDelay time.Duration
}

// SyncService оркестрирует перенос товаров из исходного каталога на маркетплейс.
// Товары и изображения обрабатываются строго последовательно в исходном
// порядке, отказ одного товара не прерывает обработку остальных
type SyncService struct {
	source      SourceCatalogPort
	destination DestinationPort
	tokens      interfaces.TokenRepositoryPort
	store       SyncRunStorePort         // может быть nil, история тогда не ведется
	cache       interfaces.CachePort     // может быть nil, предпросмотр тогда не кэшируется
	broker      interfaces.MessagingPort // может быть nil, события тогда не публикуются
	logger      interfaces.LoggerPort
	defaults    SyncDefaults
}

// NewSyncService создает сервис синхронизации
func NewSyncService(
	source SourceCatalogPort,
	destination DestinationPort,
	tokens interfaces.TokenRepositoryPort,
	store SyncRunStorePort,
	cache interfaces.CachePort,
	broker interfaces.MessagingPort,
	logger interfaces.LoggerPort,
	defaults SyncDefaults,
) *SyncService {
	if defaults.InterCollectionDelay <= 0 {
		defaults.InterCollectionDelay = time.Second
	}
	return &SyncService{
		source:      source,
		destination: destination,
		tokens:      tokens,
		store:       store,
		cache:       cache,
		broker:      broker,
		logger:      logger,
		defaults:    defaults,
	}
}

// applyDefaults заполняет незаданные поля запроса значениями по умолчанию
func (s *SyncService) applyDefaults(req *models.SyncRequest) {
	if req.CategoryID == 0 {
		req.CategoryID = s.defaults.CategoryID
	}
	if len(req.LogisticIDs) == 0 {
		req.LogisticIDs = s.defaults.LogisticIDs
	}
	if req.ExchangeRate <= 0 {
		req.ExchangeRate = s.defaults.ExchangeRate
	}
	if req.MarkupRate <= 0 {
		req.MarkupRate = s.defaults.MarkupRate
	}
	if req.Limit <= 0 {
		req.Limit = s.defaults.Limit
	}
	if req.DaysToShip <= 0 {
		req.DaysToShip = s.defaults.DaysToShip
	}
	if !req.PreOrder {
		req.PreOrder = s.defaults.PreOrder
	}
}

// SyncCollection синхронизирует одну коллекцию.
// Возвращаемый итог заполнен всегда, в том числе при полном отказе.
// Отказ получения схемы атрибутов не фатален, отказ получения товаров
// (или их отсутствие) фатален для всей коллекции
func (s *SyncService) SyncCollection(ctx context.Context, req *models.SyncRequest) (*models.CollectionSyncSummary, error) {
	s.applyDefaults(req)

	summary := &models.CollectionSyncSummary{
		RunID:           uuid.NewString(),
		CollectionID:    req.CollectionID,
		CollectionTitle: req.CollectionTitle,
		Results:         []models.SyncResult{},
		StartedAt:       time.Now().UTC(),
	}

	log := s.logger.WithSyncID(summary.RunID)
	log.InfoWithContext(ctx, "collection sync started",
		"collection_id", req.CollectionID, "category_id", req.CategoryID)

	defer func() {
		summary.FinishedAt = time.Now().UTC()
		s.persistRun(ctx, summary, log)
		s.publishCompleted(ctx, summary, log)
		s.invalidatePreview(ctx, log)
	}()

	// Синхронизация возможна только при действующей авторизации магазина
	if _, err := s.tokens.Get(ctx); err != nil {
		summary.Error = "shop is not authorized, complete the authorization flow first"
		log.WarnWithContext(ctx, "collection sync rejected: no authorization", "error", err)
		return summary, apperrors.ErrNotAuthorized
	}

	// Схема атрибутов нужна только для поиска атрибута страны происхождения,
	// ее отсутствие не мешает публикации
	var origin *models.ResolvedAttribute
	schema, err := s.destination.AttributeSchema(ctx, req.CategoryID)
	if err != nil {
		summary.Steps = append(summary.Steps, models.StepTrace{
			Step:   models.StepFetchAttributes,
			Status: models.StepStatusWarning,
			Detail: map[string]interface{}{"error": err.Error(), "category_id": req.CategoryID},
		})
		log.WarnWithContext(ctx, "attribute schema fetch failed, continuing without origin attribute", "error", err)
	} else {
		summary.Steps = append(summary.Steps, models.StepTrace{
			Step:   models.StepFetchAttributes,
			Status: models.StepStatusSuccess,
			Detail: map[string]interface{}{"attributes_count": len(schema.Attributes)},
		})

		origin = FindOriginAttribute(schema.Attributes)
		status := models.StepStatusSuccess
		detail := map[string]interface{}{}
		if origin != nil {
			detail["attribute_id"] = origin.AttributeID
			detail["value_id"] = origin.ValueID
		} else {
			status = models.StepStatusSkipped
			detail["reason"] = "origin attribute not present in schema"
		}
		summary.Steps = append(summary.Steps, models.StepTrace{
			Step:   models.StepResolveOrigin,
			Status: status,
			Detail: detail,
		})
	}

	// Нулевой идентификатор коллекции означает перенос всего каталога
	var products []models.SourceProduct
	if req.CollectionID == 0 {
		products, err = s.source.AllProducts(ctx, req.Limit)
	} else {
		products, err = s.source.ProductsInCollection(ctx, req.CollectionID, req.Limit)
	}
	if err != nil {
		summary.Error = fmt.Sprintf("failed to fetch products: %v", err)
		summary.Steps = append(summary.Steps, models.StepTrace{
			Step:   models.StepFetchProducts,
			Status: models.StepStatusFailed,
			Detail: map[string]interface{}{"error": err.Error()},
		})
		log.ErrorWithContext(ctx, "product fetch failed", "error", err)
		return summary, nil
	}
	if len(products) == 0 {
		summary.Error = "collection has no products"
		summary.Steps = append(summary.Steps, models.StepTrace{
			Step:   models.StepFetchProducts,
			Status: models.StepStatusFailed,
			Detail: map[string]interface{}{"error": "empty collection"},
		})
		return summary, nil
	}
	summary.Steps = append(summary.Steps, models.StepTrace{
		Step:   models.StepFetchProducts,
		Status: models.StepStatusSuccess,
		Detail: map[string]interface{}{"products_count": len(products)},
	})

	for i := range products {
		result := s.syncProduct(ctx, &products[i], req, origin, log)
		summary.Results = append(summary.Results, *result)
		if result.Success {
			summary.Summary.Success++
		} else {
			summary.Summary.Failed++
		}
	}

	summary.Summary.Total = len(summary.Results)
	summary.Success = summary.Summary.Success > 0
	summary.Steps = append(summary.Steps, models.StepTrace{
		Step:   models.StepSummarize,
		Status: models.StepStatusSuccess,
		Detail: map[string]interface{}{
			"total":   summary.Summary.Total,
			"success": summary.Summary.Success,
			"failed":  summary.Summary.Failed,
		},
	})

	log.InfoWithContext(ctx, "collection sync finished",
		"total", summary.Summary.Total,
		"success", summary.Summary.Success,
		"failed", summary.Summary.Failed)
	return summary, nil
}

// syncProduct обрабатывает один товар: проверка изображений, перенос
// изображений, конвертация, публикация. Любой неожиданный сбой перехватывается
// и записывается в результат товара, не прерывая обработку остальных
func (s *SyncService) syncProduct(ctx context.Context, product *models.SourceProduct, req *models.SyncRequest, origin *models.ResolvedAttribute, log interfaces.LoggerPort) (result *models.SyncResult) {
	result = &models.SyncResult{
		SourceID:    product.ID,
		SourceTitle: product.Title,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.DestinationID = 0
			result.Error = fmt.Sprintf("internal fault: %v", r)
			result.Debug = append(result.Debug, models.StepTrace{
				Step:   models.StepRecover,
				Status: models.StepStatusFailed,
				Detail: map[string]interface{}{
					"panic": fmt.Sprint(r),
					"stack": string(debug.Stack()),
				},
			})
			log.ErrorWithContext(ctx, "product sync panicked",
				"product_id", product.ID, "panic", fmt.Sprint(r))
		}
	}()

	if len(product.Images) == 0 {
		result.Error = "no images"
		result.Debug = append(result.Debug, models.StepTrace{
			Step:   models.StepCheckImages,
			Status: models.StepStatusFailed,
			Detail: map[string]interface{}{"error": "product has no images"},
		})
		return result
	}
	result.Debug = append(result.Debug, models.StepTrace{
		Step:   models.StepCheckImages,
		Status: models.StepStatusSuccess,
		Detail: map[string]interface{}{"images_count": len(product.Images)},
	})

	// Загружается не более девяти изображений, каждое независимо:
	// частичный успех допустим, полный отказ останавливает товар
	var handles []models.MediaHandle
	var uploadErrors []string
	for i, image := range product.Images {
		if i >= maxImagesPerListing {
			break
		}
		handle, err := s.destination.UploadImage(ctx, image.URL)
		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("%s: %v", image.URL, err))
			continue
		}
		handles = append(handles, *handle)
	}

	uploadDetail := map[string]interface{}{
		"uploaded": len(handles),
		"failed":   len(uploadErrors),
	}
	if len(uploadErrors) > 0 {
		uploadDetail["errors"] = uploadErrors
	}

	if len(handles) == 0 {
		result.Error = "no images uploaded"
		result.Debug = append(result.Debug, models.StepTrace{
			Step:   models.StepUploadImages,
			Status: models.StepStatusFailed,
			Detail: uploadDetail,
		})
		return result
	}
	result.Debug = append(result.Debug, models.StepTrace{
		Step:   models.StepUploadImages,
		Status: models.StepStatusSuccess,
		Detail: uploadDetail,
	})

	listing := Convert(product, ConvertParams{
		CategoryID:      req.CategoryID,
		MediaHandles:    handles,
		CollectionTitle: req.CollectionTitle,
		OriginAttribute: origin,
		ExchangeRate:    req.ExchangeRate,
		MarkupRate:      req.MarkupRate,
		PreOrder:        req.PreOrder,
		DaysToShip:      req.DaysToShip,
	})
	listing.LogisticInfo = logisticChannels(req.LogisticIDs)
	result.Debug = append(result.Debug, models.StepTrace{
		Step:   models.StepConvert,
		Status: models.StepStatusSuccess,
		Detail: map[string]interface{}{
			"item_name":     listing.ItemName,
			"price":         listing.OriginalPrice,
			"weight":        listing.Weight,
			"multi_variant": listing.MultiVariant(),
			"models_count":  len(listing.Model),
		},
	})

	itemID, err := s.destination.CreateListing(ctx, listing)
	if err != nil {
		result.Error = fmt.Sprintf("listing creation failed: %v", err)
		result.Debug = append(result.Debug, models.StepTrace{
			Step:   models.StepPublish,
			Status: models.StepStatusFailed,
			Detail: map[string]interface{}{"error": err.Error()},
		})
		return result
	}

	result.Success = true
	result.DestinationID = itemID
	result.Debug = append(result.Debug, models.StepTrace{
		Step:   models.StepPublish,
		Status: models.StepStatusSuccess,
		Detail: map[string]interface{}{"item_id": itemID},
	})
	return result
}

// SyncCollections синхронизирует коллекции последовательно с фиксированной
// паузой между ними. Отмена контекста проверяется только на границах коллекций
func (s *SyncService) SyncCollections(ctx context.Context, reqs []models.SyncRequest) []*models.CollectionSyncSummary {
	summaries := make([]*models.CollectionSyncSummary, 0, len(reqs))
	for i := range reqs {
		if ctx.Err() != nil {
			s.logger.WarnWithContext(ctx, "multi-collection sync interrupted",
				"processed", len(summaries), "remaining", len(reqs)-len(summaries))
			break
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return summaries
			case <-time.After(s.defaults.InterCollectionDelay):
			}
		}
		summary, _ := s.SyncCollection(ctx, &reqs[i])
		summaries = append(summaries, summary)
	}
	return summaries
}

// SyncAll синхронизирует все коллекции исходного магазина
func (s *SyncService) SyncAll(ctx context.Context, base models.SyncRequest) ([]*models.CollectionSyncSummary, error) {
	collections, err := s.source.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source collections: %w", err)
	}

	// Магазин без коллекций переносится целиком одним запуском
	if len(collections) == 0 {
		req := base
		req.CollectionID = 0
		req.CollectionTitle = "all products"
		return s.SyncCollections(ctx, []models.SyncRequest{req}), nil
	}

	reqs := make([]models.SyncRequest, 0, len(collections))
	for _, c := range collections {
		req := base
		req.CollectionID = c.ID
		req.CollectionTitle = c.Title
		reqs = append(reqs, req)
	}
	return s.SyncCollections(ctx, reqs), nil
}

// PreviewSync собирает картину готовности обеих платформ без записи:
// доступность исходного магазина, список коллекций, число категорий.
// Результат кэшируется на минуту
func (s *SyncService) PreviewSync(ctx context.Context) (*models.SyncPreview, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, previewCacheKey); err == nil {
			var preview models.SyncPreview
			if err := json.Unmarshal(cached, &preview); err == nil {
				return &preview, nil
			}
		}
	}

	preview := &models.SyncPreview{
		Collections: []models.CollectionPreview{},
		GeneratedAt: time.Now().UTC(),
	}

	shop, err := s.source.CheckConnection(ctx)
	if err != nil {
		preview.Errors = append(preview.Errors, fmt.Sprintf("source: %v", err))
	} else {
		preview.SourceConnected = true
		preview.SourceShopName = shop.Name
	}

	if preview.SourceConnected {
		collections, err := s.source.Collections(ctx)
		if err != nil {
			preview.Errors = append(preview.Errors, fmt.Sprintf("source collections: %v", err))
		} else {
			for _, c := range collections {
				cp := models.CollectionPreview{
					ID:            c.ID,
					Title:         c.Title,
					ProductsCount: c.ProductsCount,
				}
				// Первый товар коллекции показывается в предпросмотре
				if items, err := s.source.ProductsInCollection(ctx, c.ID, 1); err == nil && len(items) > 0 {
					cp.FirstProduct = items[0].Title
				}
				preview.Collections = append(preview.Collections, cp)
			}
		}
	}

	if _, err := s.tokens.Get(ctx); err != nil {
		preview.Errors = append(preview.Errors, "destination: shop is not authorized")
	} else {
		categories, err := s.destination.Categories(ctx)
		if err != nil {
			preview.Errors = append(preview.Errors, fmt.Sprintf("destination: %v", err))
		} else {
			preview.DestinationConnected = true
			preview.CategoriesCount = len(categories)
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(preview); err == nil {
			_ = s.cache.Set(ctx, previewCacheKey, payload, previewCacheTTL)
		}
	}
	return preview, nil
}

// GetRun возвращает сохраненный запуск синхронизации
func (s *SyncService) GetRun(ctx context.Context, runID string) (*models.CollectionSyncSummary, error) {
	if s.store == nil {
		return nil, fmt.Errorf("sync run history is not configured")
	}
	return s.store.GetRun(ctx, runID)
}

// ListRuns возвращает страницу истории запусков
func (s *SyncService) ListRuns(ctx context.Context, pagination *utils.Pagination) ([]models.CollectionSyncSummary, error) {
	if s.store == nil {
		return nil, fmt.Errorf("sync run history is not configured")
	}
	return s.store.ListRuns(ctx, pagination)
}

func (s *SyncService) persistRun(ctx context.Context, summary *models.CollectionSyncSummary, log interfaces.LoggerPort) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveRun(ctx, summary); err != nil {
		log.ErrorWithContext(ctx, "failed to persist sync run", "error", err)
	}
}

// invalidatePreview сбрасывает кэш предпросмотра после завершенного запуска,
// чтобы следующий предпросмотр не отдавал устаревшую картину
func (s *SyncService) invalidatePreview(ctx context.Context, log interfaces.LoggerPort) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, previewCacheKey+"*"); err != nil {
		log.WarnWithContext(ctx, "preview cache invalidation failed", "error", err)
	}
}

func (s *SyncService) publishCompleted(ctx context.Context, summary *models.CollectionSyncSummary, log interfaces.LoggerPort) {
	if s.broker == nil {
		return
	}

	event := messaging.SyncCompletedEvent{
		RunID:        summary.RunID,
		CollectionID: summary.CollectionID,
		Success:      summary.Success,
		Total:        summary.Summary.Total,
		SuccessCount: summary.Summary.Success,
		FailedCount:  summary.Summary.Failed,
		Error:        summary.Error,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	err = s.broker.Publish(ctx, interfaces.Message{
		Topic:     messaging.SyncEventsTopic,
		Key:       summary.RunID,
		Value:     payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.WarnWithContext(ctx, "failed to publish sync event", "error", err)
	}
}

func logisticChannels(ids []int64) []models.LogisticChannel {
	channels := make([]models.LogisticChannel, 0, len(ids))
	for _, id := range ids {
		channels = append(channels, models.LogisticChannel{LogisticID: id, Enabled: true})
	}
	return channels
}
