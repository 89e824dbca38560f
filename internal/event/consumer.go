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

const defaultQueueName = "skillexchange-service-events"

// StatsKeeper is the service surface the consumer drives: search counting
// and per-skill statistics recomputation.
type StatsKeeper interface {
	RecordSearch(ctx context.Context, query string) error
	RecomputeSkillStats(ctx context.Context, skillName string) (*models.SkillStats, error)
}

// EventConsumer keeps search counters and skill statistics in sync with
// published events: search.performed increments the popular-searches counter,
// skill.stats.recompute and declaration changes rebuild one skill's stats.
type EventConsumer struct {
	conn      *amqp091.Connection
	channel   *amqp091.Channel
	queueName string
	stats     StatsKeeper
	enabled   bool
}

func NewEventConsumer(rabbitURI, queueName string, stats StatsKeeper) (*EventConsumer, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event consumption is disabled")
		return &EventConsumer{
			enabled: false,
		}, nil
	}
	if queueName == "" {
		queueName = defaultQueueName
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

	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	bindings := []string{
		string(models.EventTypeSearchPerformed),
		string(models.EventTypeStatsRecomputeAsked),
		"profile.skill.*",
	}
	for _, routingKey := range bindings {
		err = channel.QueueBind(
			queue.Name,   // queue name
			routingKey,   // routing key
			ExchangeName, // exchange
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue for %s: %w", routingKey, err)
		}
	}

	return &EventConsumer{
		conn:      conn,
		channel:   channel,
		queueName: queue.Name,
		stats:     stats,
		enabled:   true,
	}, nil
}

func (c *EventConsumer) Start() error {
	if !c.enabled {
		log.Println("Event consumption is disabled")
		return nil
	}

	err := c.channel.Qos(
		10,    // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := c.processMessage(msg); err != nil {
				log.Printf("Failed to process message: %v", err)
				msg.Nack(false, true)
			} else {
				msg.Ack(false)
			}
		}
	}()

	log.Println("Event consumer started, waiting for messages...")
	return nil
}

func (c *EventConsumer) processMessage(msg amqp091.Delivery) error {
	log.Printf("Received message with routing key: %s", msg.RoutingKey)

	switch models.EventType(msg.RoutingKey) {
	case models.EventTypeSearchPerformed:
		return c.handleSearchPerformed(msg.Body)
	case models.EventTypeStatsRecomputeAsked:
		return c.handleStatsRecompute(msg.Body)
	case models.EventTypeSkillAdded, models.EventTypeSkillUpdated, models.EventTypeSkillRemoved:
		return c.handleDeclarationChange(msg.Body)
	default:
		log.Printf("Unknown routing key: %s", msg.RoutingKey)
		return nil // don't requeue unknown message types
	}
}

func (c *EventConsumer) handleSearchPerformed(body []byte) error {
	var searchEvent models.SearchEvent
	if err := json.Unmarshal(body, &searchEvent); err != nil {
		return fmt.Errorf("failed to unmarshal search event: %w", err)
	}
	if searchEvent.Query == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return c.stats.RecordSearch(ctx, searchEvent.Query)
}

func (c *EventConsumer) handleStatsRecompute(body []byte) error {
	var recomputeEvent models.StatsRecomputeEvent
	if err := json.Unmarshal(body, &recomputeEvent); err != nil {
		return fmt.Errorf("failed to unmarshal stats recompute event: %w", err)
	}
	if recomputeEvent.SkillName == "" {
		return nil
	}

	return c.recomputeSkill(recomputeEvent.SkillName)
}

func (c *EventConsumer) handleDeclarationChange(body []byte) error {
	var profileEvent models.ProfileEvent
	if err := json.Unmarshal(body, &profileEvent); err != nil {
		return fmt.Errorf("failed to unmarshal profile event: %w", err)
	}
	if profileEvent.SkillName == "" {
		return nil
	}

	return c.recomputeSkill(profileEvent.SkillName)
}

func (c *EventConsumer) recomputeSkill(skillName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	_, err := c.stats.RecomputeSkillStats(ctx, skillName)
	if err == models.ErrNotFound {
		// Declarations referencing skills outside the catalog are expected.
		log.Printf("Skipping stats recompute for unknown skill %q", skillName)
		return nil
	}
	return err
}

func (c *EventConsumer) Close() error {
	if !c.enabled {
		return nil
	}

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}

	return nil
}
