package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/grievd/internal/metrics"
	"github.com/example/grievd/internal/ports/secondary"
)

// ErrNotifierClosed is returned by Notify after Close.
var ErrNotifierClosed = errors.New("notifier is closed")

// messageWriter is the part of *kafka.Writer the notifier uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications as JSON messages keyed by grievance
// id, so every message about one grievance lands on the same partition.
type KafkaNotifier struct {
	mu     sync.RWMutex
	writer messageWriter
	topic  string
	closed bool
}

// NewKafkaNotifier creates a notifier writing to topic on brokers.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return newKafkaNotifier(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}, topic)
}

func newKafkaNotifier(w messageWriter, topic string) *KafkaNotifier {
	return &KafkaNotifier{writer: w, topic: topic}
}

var _ secondary.Notifier = (*KafkaNotifier)(nil)

// Notify publishes n.
func (k *KafkaNotifier) Notify(ctx context.Context, n secondary.Notification) error {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrNotifierClosed
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification %s: %w", n.ID, err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Topic: k.topic,
		Key:   []byte(n.GrievanceID),
		Value: body,
		Time:  n.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(n.EventType)},
			{Key: "recipient", Value: []byte(n.Recipient)},
		},
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("kafka", "failed").Inc()
		return fmt.Errorf("failed to publish notification %s: %w", n.ID, err)
	}
	metrics.NotificationsTotal.WithLabelValues("kafka", "sent").Inc()
	return nil
}

// Close flushes pending writes and closes the writer.
func (k *KafkaNotifier) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	return k.writer.Close()
}
