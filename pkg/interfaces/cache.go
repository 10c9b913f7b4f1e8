package interfaces

import (
	"context"
	"time"
)

// CachePort определяет интерфейс для работы с кэшем
type CachePort interface {
	// Get получает значение из кэша по ключу
	// Возвращает errors.ErrCacheMiss, если ключ не найден
	Get(ctx context.Context, key string) ([]byte, error)

	// Set устанавливает значение в кэш с временем жизни
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Delete удаляет значение из кэша
	Delete(ctx context.Context, key string) error

	// DeleteByPattern удаляет все значения, соответствующие шаблону
	DeleteByPattern(ctx context.Context, pattern string) error

	// Close закрывает соединение с кэшем
	Close() error
}
