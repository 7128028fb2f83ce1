package auditlog

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	publishTimeout   = 2 * time.Second
	publishAttempts  = 3
	publishBatchWait = 50 * time.Millisecond
)

// Publisher forwards recorded actions to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher writes events to topic, keyed by action. Writes are
// asynchronous; delivery failures are logged, not returned to the caller.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) Publisher {
	return &kafkaPublisher{writer: newKafkaWriter(brokers, topic, logger.Named("auditlog.publisher"))}
}

func newKafkaWriter(brokers []string, topic string, logger *zap.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: publishBatchWait,
		Async:        true,
		MaxAttempts:  publishAttempts,
		WriteTimeout: publishTimeout,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("audit events not delivered", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	// topic metadata is still fetched inline
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Action),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "audit_id", Value: []byte(strconv.FormatUint(uint64(event.ID), 10))},
		},
		Time: event.CreatedAt,
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher is used when no brokers are configured.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                        { return nil }
