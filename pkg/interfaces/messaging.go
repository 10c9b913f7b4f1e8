package interfaces

import (
	"context"
	"time"
)

// Message представляет сообщение для обмена через брокер
type Message struct {
	// Topic определяет тему сообщения
	Topic string

	// Key определяет ключ сообщения (для партиционирования)
	Key string

	// Value содержит полезную нагрузку сообщения
	Value []byte

	// Headers содержит заголовки сообщения
	Headers map[string]string

	// Timestamp время создания сообщения
	Timestamp time.Time
}

// MessageHandler функция обработки сообщений
type MessageHandler func(ctx context.Context, message Message) error

// ConsumerConfig настройки потребителя сообщений
type ConsumerConfig struct {
	// GroupID идентификатор группы потребителей
	GroupID string

	// AutoCommit автоматически фиксировать смещения
	AutoCommit bool

	// MaxPollRecords максимальное количество записей за один poll
	MaxPollRecords int
}

// MessagingPort определяет интерфейс для обмена сообщениями
type MessagingPort interface {
	// Publish публикует сообщение в брокер
	Publish(ctx context.Context, message Message) error

	// Subscribe подписывается на сообщения по теме
	// Возвращает функцию для отмены подписки
	Subscribe(ctx context.Context, topic string, handler MessageHandler) (func() error, error)

	// SubscribeWithConfig подписывается на сообщения с дополнительными настройками
	SubscribeWithConfig(ctx context.Context, topic string, handler MessageHandler, config ConsumerConfig) (func() error, error)

	// Close закрывает соединение с брокером
	Close() error
}
