package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront-system/internal/config"
	"storefront-system/internal/logger"
	"storefront-system/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует события заказов в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронный Kafka producer.
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Successfully connected to Kafka producer")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishOrderCreated публикует событие создания заказа.
func (p *Producer) PublishOrderCreated(order *models.Order) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeOrderCreated,
		Timestamp: time.Now(),
		Data:      models.OrderCreatedData{Order: order},
	}
	return p.publishEvent(p.topics.Orders, event)
}

// PublishOrderStatusChanged публикует событие смены статуса заказа.
func (p *Producer) PublishOrderStatusChanged(orderID int64, oldStatus, newStatus models.OrderStatus) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeOrderStatusChanged,
		Timestamp: time.Now(),
		Data: models.OrderStatusChangedData{
			OrderID:   orderID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	}
	return p.publishEvent(p.topics.Orders, event)
}

// publishEvent сериализует событие и отправляет его в топик.
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"type":      event.Type,
	}).Debug("Event published to Kafka")

	return nil
}
