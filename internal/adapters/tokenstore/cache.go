package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/omishoninjp-sys/gotoshopee/pkg/errors"
	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

// CacheTokenRepository хранит авторизационные данные во внешнем кэше,
// запись переживает перезапуски процесса
type CacheTokenRepository struct {
	cache interfaces.CachePort
}

// NewCacheTokenRepository создает хранилище токенов поверх CachePort
func NewCacheTokenRepository(cache interfaces.CachePort) *CacheTokenRepository {
	return &CacheTokenRepository{cache: cache}
}

// Get реализация интерфейса TokenRepositoryPort
func (r *CacheTokenRepository) Get(ctx context.Context) (*interfaces.TokenRecord, error) {
	payload, err := r.cache.Get(ctx, tokenKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrCacheMiss) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("tokenstore: read token: %w", err)
	}

	var record interfaces.TokenRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("tokenstore: decode token: %w", err)
	}
	return &record, nil
}

// Put реализация интерфейса TokenRepositoryPort.
// Токен хранится без TTL: обновление происходит явным refresh
func (r *CacheTokenRepository) Put(ctx context.Context, record *interfaces.TokenRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("tokenstore: encode token: %w", err)
	}
	if err := r.cache.Set(ctx, tokenKey, payload, 0); err != nil {
		return fmt.Errorf("tokenstore: write token: %w", err)
	}
	return nil
}

// Delete реализация интерфейса TokenRepositoryPort
func (r *CacheTokenRepository) Delete(ctx context.Context) error {
	if err := r.cache.Delete(ctx, tokenKey); err != nil {
		return fmt.Errorf("tokenstore: delete token: %w", err)
	}
	return nil
}
