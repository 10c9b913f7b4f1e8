package tokenstore

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	apperrors "github.com/omishoninjp-sys/gotoshopee/pkg/errors"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

const tokenKey = "shopee:token"

// MemoryTokenRepository хранит авторизационные данные в памяти процесса.
// Запись переживает только жизнь процесса, для долговечного хранения
// используется CacheTokenRepository
type MemoryTokenRepository struct {
	store *gocache.Cache
}

// NewMemoryTokenRepository создает хранилище токенов в памяти
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{
		store: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Get реализация интерфейса TokenRepositoryPort
func (r *MemoryTokenRepository) Get(_ context.Context) (*interfaces.TokenRecord, error) {
	value, ok := r.store.Get(tokenKey)
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}

	record, ok := value.(interfaces.TokenRecord)
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return &record, nil
}

// Put реализация интерфейса TokenRepositoryPort
func (r *MemoryTokenRepository) Put(_ context.Context, record *interfaces.TokenRecord) error {
	r.store.Set(tokenKey, *record, gocache.NoExpiration)
	return nil
}

// Delete реализация интерфейса TokenRepositoryPort
func (r *MemoryTokenRepository) Delete(_ context.Context) error {
	r.store.Delete(tokenKey)
	return nil
}
