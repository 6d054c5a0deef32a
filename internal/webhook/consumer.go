package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"garagehub/internal/sessions"
	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/config"
	"garagehub/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var _ EventConsumer = (*KafkaEventConsumer)(nil)

type EventConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	AutoCommit           bool
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

// ConsumerConfigFromConfig reads brokers, group and topic from the
// application configuration
func ConsumerConfigFromConfig(cfg config.KafkaConfig) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              cfg.Brokers,
		GroupID:              cfg.ConsumerGroupID,
		Topics:               []string{cfg.EventsTopic},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    time.Minute,
		AutoCommit:           true,
		OffsetOldest:         true,
		MaxRetries:           3,
		RetryBackoffDuration: 200 * time.Millisecond,
	}
}

// KafkaEventConsumer feeds the events topic into the same dispatcher as the
// webhook. Messages are keyed by plate so one vehicle's events stay ordered.
type KafkaEventConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	dispatcher    Dispatcher
	topics        []string
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewKafkaEventConsumer(cfg *ConsumerConfig, dispatcher Dispatcher) (*KafkaEventConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(cfg.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(cfg.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(cfg.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = cfg.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true

	if cfg.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if cfg.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &KafkaEventConsumer{
		consumerGroup: consumerGroup,
		config:        cfg,
		dispatcher:    dispatcher,
		topics:        cfg.Topics,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func (kc *KafkaEventConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	log := logger.FromContext(ctx)
	log.Info("starting event consumer workers", "workers", numWorkers, "topics", kc.topics)

	go kc.handleErrors(ctx)

	for i := 0; i < numWorkers; i++ {
		kc.wg.Add(1)
		go func(workerID int) {
			defer kc.wg.Done()
			kc.runWorker(ctx, workerID)
		}(i)
	}

	return nil
}

func (kc *KafkaEventConsumer) runWorker(ctx context.Context, workerID int) {
	handler := newConsumerGroupHandler(kc.dispatcher, kc.config, workerID)
	log := logger.FromContext(ctx).With("worker", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Info("event worker shutting down")
			return
		case <-kc.ctx.Done():
			return
		default:
			if err := kc.consumerGroup.Consume(ctx, kc.topics, handler); err != nil {
				log.Error("error consuming events", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (kc *KafkaEventConsumer) handleErrors(ctx context.Context) {
	for err := range kc.consumerGroup.Errors() {
		logger.FromContext(ctx).Error("consumer group error", "error", err)
	}
}

func (kc *KafkaEventConsumer) Stop() error {
	kc.cancel()

	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	kc.wg.Wait()
	return nil
}

func (kc *KafkaEventConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-kc.ctx.Done():
		return fmt.Errorf("consumer context is cancelled")
	default:
		if kc.dispatcher == nil {
			return fmt.Errorf("event dispatcher not configured")
		}
		return nil
	}
}

type consumerGroupHandler struct {
	dispatcher Dispatcher
	validator  *validator.Validate
	workerID   int
	maxRetries int
	backoff    time.Duration
}

func newConsumerGroupHandler(dispatcher Dispatcher, cfg *ConsumerConfig, workerID int) *consumerGroupHandler {
	return &consumerGroupHandler{
		dispatcher: dispatcher,
		validator:  NewValidator(),
		workerID:   workerID,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoffDuration,
	}
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				// Ending the claim ends the session; the group resumes this
				// partition from the last marked offset, which is before message.
				return fmt.Errorf("event at %s/%d offset %d not applied: %w", message.Topic, message.Partition, message.Offset, err)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// processMessage returns nil when the offset may be committed. Malformed
// events and business rejections are final. Anything else is retried and,
// once the retries are spent, returned so the message is redelivered.
func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	log := logger.GetDefault().WithRequestID(uuid.NewString()).WithFields(map[string]interface{}{
		"worker":    h.workerID,
		"topic":     message.Topic,
		"partition": message.Partition,
		"offset":    message.Offset,
	})
	ctx = logger.IntoContext(ctx, log)

	var req EventRequest
	if err := json.Unmarshal(message.Value, &req); err != nil {
		log.Warn("dropping malformed event", "error", err)
		return nil
	}
	if err := h.validator.Struct(&req); err != nil {
		log.Warn("dropping invalid event", "error", err)
		return nil
	}

	err := h.dispatchWithRetry(ctx, &req)
	if err == nil {
		return nil
	}

	if code, ok := apperror.CodeOf(err); ok && !apperror.IsRetryable(err) {
		log.Info("event rejected", "event_type", req.EventType, "code", code)
		return nil
	}

	log.Error("failed to process event", "event_type", req.EventType, "error", err)
	return err
}

// dispatchWithRetry retries transient conflicts and infrastructure failures
// with exponential backoff. Business rejections stop the loop at once.
func (h *consumerGroupHandler) dispatchWithRetry(ctx context.Context, req *EventRequest) error {
	bo := backoff.NewExponentialBackOff()
	if h.backoff > 0 {
		bo.InitialInterval = h.backoff
		bo.MaxInterval = 8 * h.backoff
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (*sessions.Result, error) {
		attempt++
		res, err := h.dispatcher.Dispatch(ctx, req.ToEvent())
		if err == nil {
			return res, nil
		}
		if _, typed := apperror.CodeOf(err); typed && !apperror.IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		logger.FromContext(ctx).Debug("retrying event", "attempt", attempt, "error", err)
		return nil, err
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(h.maxRetries+1)),
	)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return err
}
