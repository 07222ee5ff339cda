package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

// KafkaPublisher publishes resource-created events to a Kafka topic using a
// synchronous producer. The event payload is the decimal resource ID; the
// message key is the same value so events for one resource stay in order
// within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher connects a synchronous producer to the given brokers.
// The producer waits for acknowledgement from all in-sync replicas and
// retries transient send failures internally before reporting an error.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Retry.Backoff = 1 * time.Second
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting Kafka producer: %w", err)
	}

	slog.Info("Kafka publisher initialized", "brokers", brokers, "topic", topic)
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

// Publish sends a resource-created event and returns the partition and
// offset the broker assigned to it.
func (p *KafkaPublisher) Publish(ctx context.Context, resourceID int64) (Ack, error) {
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	id := strconv.FormatInt(resourceID, 10)
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(id),
		Value: sarama.StringEncoder(id),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return Ack{}, fmt.Errorf("publishing resource %d: %w", resourceID, err)
	}
	return Ack{Partition: partition, Offset: offset}, nil
}

// Close shuts down the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// Ensure KafkaPublisher implements Publisher at compile time.
var _ Publisher = (*KafkaPublisher)(nil)
