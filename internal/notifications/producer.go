package notifications

import (
	"context"
	"fmt"
	"time"

	"garagehub/internal/shared/config"
	"garagehub/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher delivers lifecycle messages
type Publisher interface {
	Publish(ctx context.Context, msg *LifecycleMessage) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka lifecycle producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// ProducerConfigFromConfig returns the producer configuration for cfg
func ProducerConfigFromConfig(cfg config.KafkaConfig) *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          cfg.Brokers,
		Topic:            cfg.LifecycleTopic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// NewSaramaConfig builds the sarama producer settings
func NewSaramaConfig(cfg *KafkaProducerConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks
	saramaConfig.Producer.Compression = cfg.CompressionType
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = cfg.Timeout
	saramaConfig.Producer.Idempotent = cfg.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = cfg.MaxMessageBytes

	// Idempotent producers need a single in-flight request
	if cfg.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one vehicle on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	return saramaConfig
}

// KafkaPublisher publishes lifecycle messages to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a sync producer to the configured brokers
func NewKafkaPublisher(cfg *KafkaProducerConfig) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("Kafka lifecycle producer created", "topic", cfg.Topic)
	return NewKafkaPublisherWithProducer(producer, cfg.Topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg *LifecycleMessage) error {
	messageBytes, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle message: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.PartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(msg.Type)},
			{Key: []byte("message_id"), Value: []byte(msg.ID.String())},
		},
		Timestamp: msg.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send lifecycle message to Kafka: %w", err)
	}

	logger.FromContext(ctx).Debug("lifecycle message published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"type", msg.Type,
		"plate", msg.Plate,
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// LogPublisher only logs lifecycle messages. Used when Kafka publishing is
// disabled.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg *LifecycleMessage) error {
	logger.FromContext(ctx).Debug("lifecycle message",
		"type", msg.Type,
		"session_id", msg.SessionID,
		"plate", msg.Plate,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
