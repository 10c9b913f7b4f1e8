package interfaces

import "context"

// Transaction представляет транзакцию в хранилище
type Transaction interface {
	// Commit фиксирует транзакцию
	Commit(ctx context.Context) error

	// Rollback откатывает транзакцию
	Rollback(ctx context.Context) error
}

// StoragePort определяет базовый интерфейс для работы с хранилищем данных
type StoragePort interface {
	// BeginTx начинает новую транзакцию
	BeginTx(ctx context.Context) (Transaction, error)

	// Close закрывает соединение с хранилищем
	Close() error
}
