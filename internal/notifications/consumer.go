package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Deliverer sends one parsed notification over a concrete transport.
type Deliverer interface {
	Deliver(ctx context.Context, notification *Notification) error
}

type Consumer interface {
	Start(ctx context.Context, numWorkers int) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           []string{"localhost:9092"},
		GroupID:           "tally-notification-workers",
		Topics:            []string{"tally-notifications"},
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		MaxRetries:        3,
		RetryBackoff:      time.Second,
	}
}

type KafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	email         Deliverer
	sms           Deliverer

	cancel context.CancelFunc
}

func NewKafkaConsumer(config *ConsumerConfig, email, sms Deliverer) (Consumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.HeartbeatInterval
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		email:         email,
		sms:           sms,
	}, nil
}

func (kc *KafkaConsumer) Start(ctx context.Context, numWorkers int) error {
	log.Printf("📥 Starting %d notification consumer workers for topics: %v", numWorkers, kc.config.Topics)

	runCtx, cancel := context.WithCancel(ctx)
	kc.cancel = cancel

	go kc.handleErrors()

	for i := 0; i < numWorkers; i++ {
		go kc.runWorker(runCtx, i)
	}

	return nil
}

func (kc *KafkaConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &groupHandler{
		workerID:     workerID,
		email:        kc.email,
		sms:          kc.sms,
		maxRetries:   kc.config.MaxRetries,
		retryBackoff: kc.config.RetryBackoff,
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("📥 Worker %d shutting down", workerID)
			return
		default:
			// Consume returns on every rebalance, so the loop re-joins
			if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, handler); err != nil {
				log.Printf("📥 Worker %d error consuming messages: %v", workerID, err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (kc *KafkaConsumer) handleErrors() {
	for err := range kc.consumerGroup.Errors() {
		log.Printf("📥 Consumer group error: %v", err)
	}
}

func (kc *KafkaConsumer) Stop() error {
	log.Println("📥 Stopping notification consumer...")
	if kc.cancel != nil {
		kc.cancel()
	}

	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}

	log.Println("📥 Notification consumer stopped")
	return nil
}

// groupHandler processes claims for one worker.
type groupHandler struct {
	workerID     int
	email        Deliverer
	sms          Deliverer
	maxRetries   int
	retryBackoff time.Duration
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Printf("📥 Worker %d: Consumer group session started", h.workerID)
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Printf("📥 Worker %d: Consumer group session ended", h.workerID)
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			if err := h.processMessage(session.Context(), message); err != nil {
				log.Printf("📥 Worker %d: Error processing message: %v", h.workerID, err)
			} else {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification Notification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	deliverer := h.delivererFor(notification.Channel)
	if deliverer == nil {
		log.Printf("📥 Worker %d: Unknown channel %q, skipping notification %s",
			h.workerID, notification.Channel, notification.ID)
		return nil
	}

	if err := h.deliverWithRetry(ctx, deliverer, &notification); err != nil {
		return err
	}

	log.Printf("📥 Worker %d: %s notification delivered to %s", h.workerID, notification.Channel, notification.Recipient)
	return nil
}

func (h *groupHandler) delivererFor(channel NotificationChannel) Deliverer {
	switch channel {
	case ChannelEmail:
		return h.email
	case ChannelSMS:
		return h.sms
	default:
		return nil
	}
}

func (h *groupHandler) deliverWithRetry(ctx context.Context, deliverer Deliverer, notification *Notification) error {
	for attempt := 0; ; attempt++ {
		err := deliverer.Deliver(ctx, notification)
		if err == nil {
			if attempt > 0 {
				log.Printf("📥 Worker %d: Delivered notification after %d retries", h.workerID, attempt)
			}
			return nil
		}

		if attempt == h.maxRetries {
			log.Printf("📥 Worker %d: Giving up on notification %s after %d attempts: %v",
				h.workerID, notification.ID, attempt+1, err)
			return err
		}

		// Exponential backoff
		delay := h.retryBackoff * time.Duration(1<<attempt)
		log.Printf("📥 Worker %d: Retry %d for notification %s after %v", h.workerID, attempt+1, notification.ID, delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
