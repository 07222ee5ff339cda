package process

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/IBM/sarama"
)

// Consumer reads resource-created events from Kafka and feeds them to a
// Processor. It participates in a consumer group so multiple processor
// instances share the topic's partitions.
type Consumer struct {
	group     sarama.ConsumerGroup
	topic     string
	processor *Processor
}

// NewConsumer joins the given consumer group on the given brokers.
func NewConsumer(brokers []string, groupID, topic string, processor *Processor) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("joining consumer group %q: %w", groupID, err)
	}

	slog.Info("Kafka consumer initialized", "brokers", brokers, "group", groupID, "topic", topic)
	return &Consumer{group: group, topic: topic, processor: processor}, nil
}

// Run consumes events until the context is cancelled. Consume returns on
// every group rebalance, so it runs in a loop.
func (c *Consumer) Run(ctx context.Context) error {
	handler := &groupHandler{processor: c.processor}

	go func() {
		for err := range c.group.Errors() {
			slog.Error("consumer group error", "error", err)
		}
	}()

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("consuming topic %q: %w", c.topic, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.group.Close()
}

// groupHandler implements sarama.ConsumerGroupHandler for resource-created
// events.
type groupHandler struct {
	processor *Processor
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim processes messages from one partition claim. Malformed and
// permanently failing events are logged and marked so they never wedge the
// partition.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		id, err := strconv.ParseInt(string(msg.Value), 10, 64)
		if err != nil || id <= 0 {
			slog.Error("discarding malformed event",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset,
				"value", string(msg.Value))
			session.MarkMessage(msg, "")
			continue
		}

		if err := h.processor.Process(session.Context(), id); err != nil {
			slog.Error("processing event failed",
				"id", id, "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}
