package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/anhtran/folio-api/internal/config"
)

const (
	TopicPortfolioEvents = "portfolio.events"
	TopicMessageEvents   = "message.events"
)

const (
	EventPortfolioUpdated = "portfolio.updated"
	EventMessageReceived  = "message.received"
	EventMessageRead      = "message.read"
)

type PortfolioEventPayload struct {
	EventType string    `json:"event_type"`
	Scopes    []string  `json:"scopes"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

type MessageEventPayload struct {
	EventType string    `json:"event_type"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

type KafkaProducerClient struct {
	PortfolioEventsWriter *kafka.Writer
	MessageEventsWriter   *kafka.Writer
}

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'portfolio.events'
	portfolioWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicPortfolioEvents,
		Balancer: &kafka.LeastBytes{},
	}

	// writer 'message.events'
	messageWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicMessageEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{
		PortfolioEventsWriter: portfolioWriter,
		MessageEventsWriter:   messageWriter,
	}, nil
}

func (c *KafkaProducerClient) PublishPortfolioEvent(ctx context.Context, payload PortfolioEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot marshal portfolio event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(payload.EventType),
		Value: value,
	}
	if err := c.PortfolioEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("cannot publish portfolio event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) PublishMessageEvent(ctx context.Context, payload MessageEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("cannot marshal message event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(payload.MessageID),
		Value: value,
	}
	if err := c.MessageEventsWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("cannot publish message event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.PortfolioEventsWriter != nil {
		c.PortfolioEventsWriter.Close()
	}
	if c.MessageEventsWriter != nil {
		c.MessageEventsWriter.Close()
	}
}
