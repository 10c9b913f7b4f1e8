// Package errors содержит общие ошибки, используемые адаптерами и сервисами
package errors

import "errors"

var (
	// ErrCacheMiss возвращается кэшем, если ключ не найден
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrTokenNotFound возвращается хранилищем токенов, если авторизация не проводилась
	ErrTokenNotFound = errors.New("token: not found")

	// ErrNotAuthorized возвращается, когда операция требует действующей авторизации магазина
	ErrNotAuthorized = errors.New("shop is not authorized")
)
