package interfaces

import (
	"context"
	"time"
)

// TokenRecord представляет авторизационные данные магазина на маркетплейсе
type TokenRecord struct {
	// AccessToken токен доступа к API маркетплейса
	AccessToken string `json:"access_token"`

	// RefreshToken токен для обновления токена доступа
	RefreshToken string `json:"refresh_token"`

	// ShopID идентификатор магазина, к которому привязан токен
	ShopID int64 `json:"shop_id"`

	// ExpireIn время жизни токена доступа в секундах
	ExpireIn int `json:"expire_in"`

	// ObtainedAt момент получения токена
	ObtainedAt time.Time `json:"obtained_at"`
}

// ExpiresAt возвращает момент истечения токена доступа
func (t *TokenRecord) ExpiresAt() time.Time {
	return t.ObtainedAt.Add(time.Duration(t.ExpireIn) * time.Second)
}

// Expired сообщает, истёк ли токен доступа на момент now
func (t *TokenRecord) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt())
}

// TokenRepositoryPort определяет интерфейс хранилища авторизационных данных.
// Реализация может держать токены в памяти процесса или во внешнем кэше
type TokenRepositoryPort interface {
	// Get возвращает текущие авторизационные данные
	// Возвращает errors.ErrTokenNotFound, если авторизация не проводилась
	Get(ctx context.Context) (*TokenRecord, error)

	// Put сохраняет авторизационные данные, замещая предыдущие
	Put(ctx context.Context, record *TokenRecord) error

	// Delete удаляет сохранённые авторизационные данные
	Delete(ctx context.Context) error
}
