package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Service is the delivery pipeline facade. Publishing is best-effort: when
// the brokers reject a message the pipeline warns and drops it, and the
// caller's flow continues. Verification codes stay valid in Redis either way,
// so an operator can re-trigger delivery without invalidating anything.
type Service interface {
	PublishVerifyCode(ctx context.Context, channel NotificationChannel, purpose, target, code string) error
	PublishWelcome(ctx context.Context, name, email string) error

	Start(ctx context.Context) error
	Stop() error
}

type ServiceConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	Workers       int
	Email         *SMTPConfig
}

type pipelineService struct {
	config   *ServiceConfig
	producer Producer
	consumer Consumer

	isRunning bool
	mu        sync.Mutex
}

// NewService wires the producer, the consumer and both channel senders.
// Creation fails when the brokers are unreachable or SMTP is unconfigured;
// callers fall back to NewDisabledService in that case.
func NewService(config *ServiceConfig) (Service, error) {
	emailSender, err := NewEmailSender(config.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create email sender: %w", err)
	}
	smsSender := NewSMSSender()

	producerConfig := DefaultProducerConfig()
	producerConfig.Brokers = config.Brokers
	producerConfig.Topic = config.Topic

	producer, err := NewKafkaProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = config.Brokers
	consumerConfig.Topics = []string{config.Topic}
	consumerConfig.GroupID = config.ConsumerGroup

	consumer, err := NewKafkaConsumer(consumerConfig, emailSender, smsSender)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	if config.Workers <= 0 {
		config.Workers = 3
	}

	return &pipelineService{
		config:   config,
		producer: producer,
		consumer: consumer,
	}, nil
}

func (ps *pipelineService) Start(ctx context.Context) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.isRunning {
		return fmt.Errorf("notification service is already running")
	}

	if err := ps.consumer.Start(ctx, ps.config.Workers); err != nil {
		return fmt.Errorf("failed to start consumers: %w", err)
	}

	ps.isRunning = true
	log.Printf("✅ Notification service started (%d workers)", ps.config.Workers)
	return nil
}

func (ps *pipelineService) Stop() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.isRunning {
		return fmt.Errorf("notification service is not running")
	}

	if err := ps.consumer.Stop(); err != nil {
		log.Printf("Error stopping consumer: %v", err)
	}
	if err := ps.producer.Close(); err != nil {
		log.Printf("Error closing producer: %v", err)
	}

	ps.isRunning = false
	log.Printf("✅ Notification service stopped")
	return nil
}

func (ps *pipelineService) PublishVerifyCode(ctx context.Context, channel NotificationChannel, purpose, target, code string) error {
	notification := NewNotificationBuilder().
		WithType(TypeVerifyCode).
		WithChannel(channel).
		WithRecipient(target).
		WithPayload(Payload{Code: code, Purpose: purpose}).
		Build()

	return ps.publish(ctx, notification)
}

func (ps *pipelineService) PublishWelcome(ctx context.Context, name, email string) error {
	notification := NewNotificationBuilder().
		WithType(TypeWelcome).
		WithChannel(ChannelEmail).
		WithRecipient(email).
		WithPayload(Payload{Name: name}).
		Build()

	return ps.publish(ctx, notification)
}

// publish warns and drops on broker failure instead of failing the caller.
func (ps *pipelineService) publish(ctx context.Context, notification *Notification) error {
	if err := ps.producer.Publish(ctx, notification); err != nil {
		log.Printf("⚠️ Dropping %s notification for %s: %v", notification.Type, notification.Recipient, err)
	}
	return nil
}

// disabledService drops everything. It keeps the rest of the application
// running when neither Kafka nor SMTP is available, such as local dev.
type disabledService struct{}

func NewDisabledService() Service {
	return disabledService{}
}

func (disabledService) PublishVerifyCode(ctx context.Context, channel NotificationChannel, purpose, target, code string) error {
	log.Printf("⚠️ Notification pipeline disabled, dropping %s verify code for %s", purpose, target)
	return nil
}

func (disabledService) PublishWelcome(ctx context.Context, name, email string) error {
	log.Printf("⚠️ Notification pipeline disabled, dropping welcome mail for %s", email)
	return nil
}

func (disabledService) Start(ctx context.Context) error { return nil }

func (disabledService) Stop() error { return nil }
