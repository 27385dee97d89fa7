package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

// Publisher delivers JSON events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events with acknowledgement from all in-sync replicas.
type KafkaPublisher struct {
	w      messageWriter
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var errPublisherClosed = errors.New("publisher closed")

func NewKafkaPublisher(brokers []string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	logger.Info("notify.kafka.writer_ready", "brokers", brokers)
	return &KafkaPublisher{w: w, logger: logger}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	start := time.Now()
	log := common.LoggerFrom(ctx, p.logger).With("topic", topic)

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errPublisherClosed
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Topic: topic, Key: []byte(key), Value: value}); err != nil {
		log.Error("notify.publish.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("write to %s: %w", topic, err)
	}
	log.Info("notify.publish.ok", "key", key, "bytes", len(value), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// Close flushes pending writes. It waits for in-flight publishes and is safe to call twice.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.w.Close()
}

var _ Publisher = (*KafkaPublisher)(nil)
