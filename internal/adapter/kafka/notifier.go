// Package kafka publishes alert lifecycle events for downstream consumers
// (notification fan-out, dashboards). Publishing is feature-flagged: with
// no brokers configured the pipeline runs without a notifier.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

// Notifier produces alert-created events to a Kafka topic. It implements
// pipeline.AlertNotifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the alert events topic.
func NewNotifier(brokers []string, topic string, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// PublishAlertCreated serializes and publishes one alert event, keyed by
// alert ID so replays of the same alert land in the same partition.
func (n *Notifier) PublishAlertCreated(ctx context.Context, alert domain.Alert) error {
	msg, err := serializeToMessage(alert)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, msg)
}

// Close flushes and closes the underlying writer.
func (n *Notifier) Close() error {
	return n.writer.Close()
}

func serializeToMessage(alert domain.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(alert.Type)},
			{Key: "severity", Value: []byte(alert.Severity)},
			{Key: "created_at", Value: []byte(alert.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
