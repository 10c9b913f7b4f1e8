package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"

	"github.com/omishoninjp-sys/gotoshopee/pkg/interfaces"
)

const defaultPollTimeout = 100 * time.Millisecond

// KafkaMessaging реализация MessagingPort с использованием Kafka
type KafkaMessaging struct {
	producer       *kafka.Producer
	consumers      map[string]*kafka.Consumer
	consumersMutex sync.RWMutex
	brokers        string
	groupID        string
	logger         interfaces.LoggerPort
}

// NewKafkaMessaging создает новый экземпляр KafkaMessaging
func NewKafkaMessaging(brokers []string, groupID string, logger interfaces.LoggerPort) (interfaces.MessagingPort, error) {
	bootstrapServers := strings.Join(brokers, ",")

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            bootstrapServers,
		"client.id":                    "gotoshopee-producer",
		"acks":                         "all", // максимальная надежность
		"retries":                      5,
		"retry.backoff.ms":             500,
		"compression.type":             "snappy",
		"linger.ms":                    10, // небольшая задержка для батчинга
		"batch.size":                   16384,
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 100000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	return &KafkaMessaging{
		producer:  producer,
		consumers: make(map[string]*kafka.Consumer),
		brokers:   bootstrapServers,
		groupID:   groupID,
		logger:    logger,
	}, nil
}

// toKafkaMessage преобразует Message в kafka.Message
func toKafkaMessage(message interfaces.Message) *kafka.Message {
	var headers []kafka.Header
	for k, v := range message.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	// Служебные заголовки
	headers = append(headers,
		kafka.Header{Key: "message_id", Value: []byte(uuid.NewString())},
		kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339Nano))},
	)

	var key []byte
	if message.Key != "" {
		key = []byte(message.Key)
	}

	topic := message.Topic
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message.Value,
		Key:            key,
		Headers:        headers,
	}
}

// fromKafkaMessage преобразует kafka.Message в Message
func fromKafkaMessage(msg *kafka.Message) interfaces.Message {
	headers := make(map[string]string)
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	var key string
	if msg.Key != nil {
		key = string(msg.Key)
	}

	timestamp := time.Now()
	if raw, ok := headers["timestamp"]; ok {
		if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			timestamp = parsed
		}
	}

	return interfaces.Message{
		Topic:     *msg.TopicPartition.Topic,
		Key:       key,
		Value:     msg.Value,
		Headers:   headers,
		Timestamp: timestamp,
	}
}

// Publish публикует сообщение в брокер
func (k *KafkaMessaging) Publish(_ context.Context, message interfaces.Message) error {
	return k.producer.Produce(toKafkaMessage(message), nil)
}

// Subscribe подписывается на указанную тему с настройками по умолчанию
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	config := interfaces.ConsumerConfig{
		GroupID:        k.groupID,
		AutoCommit:     true,
		MaxPollRecords: 500,
	}
	return k.SubscribeWithConfig(ctx, topic, handler, config)
}

// SubscribeWithConfig подписывается на указанную тему с дополнительными настройками
func (k *KafkaMessaging) SubscribeWithConfig(ctx context.Context, topic string, handler interfaces.MessageHandler, config interfaces.ConsumerConfig) (func() error, error) {
	if config.GroupID == "" {
		config.GroupID = k.groupID
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":     k.brokers,
		"group.id":              config.GroupID,
		"auto.offset.reset":     "latest",
		"enable.auto.commit":    config.AutoCommit,
		"session.timeout.ms":    30000,
		"max.poll.interval.ms":  300000,
		"heartbeat.interval.ms": 3000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("ошибка подписки на топик %s: %w", topic, err)
	}

	subscriptionID := uuid.NewString()
	k.consumersMutex.Lock()
	k.consumers[subscriptionID] = consumer
	k.consumersMutex.Unlock()

	// Обработка сообщений в отдельной горутине
	go k.consumeMessages(ctx, consumer, topic, handler, config)

	unsubscribe := func() error {
		k.consumersMutex.Lock()
		consumer, ok := k.consumers[subscriptionID]
		delete(k.consumers, subscriptionID)
		k.consumersMutex.Unlock()

		if ok && consumer != nil {
			return consumer.Close()
		}
		return nil
	}
	return unsubscribe, nil
}

// consumeMessages обрабатывает сообщения из Kafka до отмены контекста
func (k *KafkaMessaging) consumeMessages(ctx context.Context, consumer *kafka.Consumer, topic string, handler interfaces.MessageHandler, config interfaces.ConsumerConfig) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			ev := consumer.Poll(int(defaultPollTimeout.Milliseconds()))
			if ev == nil {
				continue
			}

			switch e := ev.(type) {
			case *kafka.Message:
				msg := fromKafkaMessage(e)
				if err := handler(ctx, msg); err != nil {
					k.logger.ErrorWithContext(ctx, "message handler failed",
						"topic", topic, "error", err)
					continue
				}

				// Подтверждаем обработку сообщения, если ручной режим
				if !config.AutoCommit {
					if _, err := consumer.CommitMessage(e); err != nil {
						k.logger.ErrorWithContext(ctx, "offset commit failed",
							"topic", topic, "error", err)
					}
				}

			case kafka.Error:
				k.logger.ErrorWithContext(ctx, "kafka error",
					"topic", topic, "code", e.Code().String(), "error", e.Error())
				if e.Code() == kafka.ErrAllBrokersDown {
					return
				}

			default:
				// Остальные события брокера не требуют обработки
			}
		}
	}
}

// Close закрывает соединение с брокером
func (k *KafkaMessaging) Close() error {
	k.consumersMutex.Lock()
	for id, consumer := range k.consumers {
		consumer.Close()
		delete(k.consumers, id)
	}
	k.consumersMutex.Unlock()

	// Ждем до 15 секунд для отправки всех сообщений
	k.producer.Flush(15 * 1000)
	k.producer.Close()

	return nil
}
