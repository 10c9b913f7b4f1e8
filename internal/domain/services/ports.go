package services

import (
	"context"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
	"github.com/omishoninjp-sys/gotoshopee/pkg/utils"
)

// SourceCatalogPort определяет операции чтения исходного каталога
type SourceCatalogPort interface {
	// CheckConnection проверяет доступность исходного магазина
	CheckConnection(ctx context.Context) (*models.ShopInfo, error)

	// Collections возвращает все коллекции магазина (ручные и автоматические)
	Collections(ctx context.Context) ([]models.SourceCollection, error)

	// ProductsInCollection возвращает товары коллекции, не более limit
	ProductsInCollection(ctx context.Context, collectionID int64, limit int) ([]models.SourceProduct, error)

	// AllProducts возвращает товары магазина без фильтра по коллекции,
	// не более limit
	AllProducts(ctx context.Context, limit int) ([]models.SourceProduct, error)
}

// DestinationPort определяет операции целевого маркетплейса
type DestinationPort interface {
	// Categories возвращает дерево категорий маркетплейса
	Categories(ctx context.Context) ([]models.Category, error)

	// AttributeSchema возвращает схему атрибутов категории
	AttributeSchema(ctx context.Context, categoryID int64) (*models.AttributeSchema, error)

	// Logistics возвращает доступные магазину каналы доставки
	Logistics(ctx context.Context) ([]models.LogisticsChannel, error)

	// ShopInfo возвращает сведения о магазине на маркетплейсе
	ShopInfo(ctx context.Context) (*models.ShopProfile, error)

	// UploadImage скачивает изображение по URL и загружает его
	// в медиахранилище маркетплейса
	UploadImage(ctx context.Context, sourceURL string) (*models.MediaHandle, error)

	// CreateListing публикует карточку и возвращает идентификатор товара
	CreateListing(ctx context.Context, listing *models.DestinationListing) (int64, error)
}

// SyncRunStorePort определяет хранилище истории запусков синхронизации
type SyncRunStorePort interface {
	// SaveRun сохраняет итог запуска вместе с результатами по товарам
	SaveRun(ctx context.Context, run *models.CollectionSyncSummary) error

	// GetRun возвращает запуск по идентификатору
	GetRun(ctx context.Context, runID string) (*models.CollectionSyncSummary, error)

	// ListRuns возвращает страницу истории запусков, новые первыми
	ListRuns(ctx context.Context, pagination *utils.Pagination) ([]models.CollectionSyncSummary, error)
}
