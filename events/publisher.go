// Package events publishes job lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"tradie-match-server/config"
	"tradie-match-server/logger"
)

const DefaultTopic = "job.events"

// JobEvent is the message written for every applied transition.
type JobEvent struct {
	JobID      string    `json:"job_id"`
	Event      string    `json:"event"`
	Actor      string    `json:"actor"`
	ActorID    string    `json:"actor_id,omitempty"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ClientID   string    `json:"client_id"`
	TradieID   string    `json:"tradie_id"`
	InvoiceID  string    `json:"invoice_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishJobEvent(ctx context.Context, ev JobEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes JobEvents keyed by job ID so one job's events stay
// ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	log    logger.Logger
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are
// configured.
func NewPublisher(cfg config.KafkaConfig, log logger.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		log.Info("⚠️ Kafka brokers not configured, job events disabled")
		return NopPublisher{}
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	log.Info("✅ Kafka producer initialized", zap.Strings("brokers", cfg.Brokers), zap.String("topic", topic))
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) PublishJobEvent(ctx context.Context, ev JobEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(ev.JobID),
		Value: value,
		Time:  ev.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("❌ Failed to publish job event", err, zap.String("job_id", ev.JobID), zap.String("event", ev.Event))
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishJobEvent(context.Context, JobEvent) error { return nil }
func (NopPublisher) Close() error                                   { return nil }
