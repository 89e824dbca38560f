package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"skillexchange-service/internal/models"

	"github.com/rabbitmq/amqp091-go"
)

const ExchangeName = "skillexchange.events"

type Publisher interface {
	PublishProfileEvent(event *models.ProfileEvent) error
	PublishSearchEvent(event *models.SearchEvent) error
	PublishStatsRecompute(event *models.StatsRecomputeEvent) error
	Close() error
}

type EventPublisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	enabled      bool
}

func NewEventPublisher(rabbitURI string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{
			enabled: false,
		}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: ExchangeName,
		enabled:      true,
	}, nil
}

func (p *EventPublisher) publishEvent(ctx context.Context, routingKey string, event any) error {
	// A nil *EventPublisher behind the Publisher interface is treated as disabled.
	if p == nil || !p.enabled {
		log.Printf("Event publishing is disabled, skipping event: %s", routingKey)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s", routingKey)
	return nil
}

func (p *EventPublisher) PublishProfileEvent(event *models.ProfileEvent) error {
	ctx := context.Background()
	return p.publishEvent(ctx, string(event.EventType), event)
}

func (p *EventPublisher) PublishSearchEvent(event *models.SearchEvent) error {
	ctx := context.Background()
	return p.publishEvent(ctx, string(event.EventType), event)
}

func (p *EventPublisher) PublishStatsRecompute(event *models.StatsRecomputeEvent) error {
	ctx := context.Background()
	return p.publishEvent(ctx, string(event.EventType), event)
}

func (p *EventPublisher) Close() error {
	if p == nil || !p.enabled {
		return nil
	}

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}

// MockPublisher collects events in memory for tests.
type MockPublisher struct {
	ProfileEvents  []models.ProfileEvent
	SearchEvents   []models.SearchEvent
	RecomputeAsked []models.StatsRecomputeEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		ProfileEvents:  make([]models.ProfileEvent, 0),
		SearchEvents:   make([]models.SearchEvent, 0),
		RecomputeAsked: make([]models.StatsRecomputeEvent, 0),
	}
}

func (m *MockPublisher) PublishProfileEvent(event *models.ProfileEvent) error {
	m.ProfileEvents = append(m.ProfileEvents, *event)
	return nil
}

func (m *MockPublisher) PublishSearchEvent(event *models.SearchEvent) error {
	m.SearchEvents = append(m.SearchEvents, *event)
	return nil
}

func (m *MockPublisher) PublishStatsRecompute(event *models.StatsRecomputeEvent) error {
	m.RecomputeAsked = append(m.RecomputeAsked, *event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
