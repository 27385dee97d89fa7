package async

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerConfig names the trigger topic and the consumer group.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer turns parse-request messages into queue jobs.
type Consumer struct {
	r      messageReader
	queue  Queue
	topic  string
	logger *slog.Logger
}

func NewConsumer(cfg ConsumerConfig, queue Queue, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if cfg.Topic == "" || cfg.GroupID == "" {
		return nil, errors.New("consumer topic and group id are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        time.Second,
		CommitInterval: 0,
	})
	return &Consumer{r: r, queue: queue, topic: cfg.Topic, logger: logger}, nil
}

// Run consumes until ctx is cancelled. Offsets are committed once a job is
// queued; undecodable messages are logged and committed so they are not redelivered.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", "topic", c.topic)
	defer c.logger.Info("consumer stopped", "topic", c.topic)

	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		id, err := DecodeTrigger(msg.Value)
		if err != nil {
			c.logger.Warn("consumer.message.malformed",
				"partition", msg.Partition, "offset", msg.Offset, "value", string(msg.Value), "error", err)
		} else {
			job := Job{DocumentID: id, SubmittedAt: time.Now(), TraceID: uuid.New().String()}
			if err := c.queue.Enqueue(ctx, job); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("enqueue document %d: %w", id, err)
			}
		}

		if err := c.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// DecodeTrigger reads a document id from {"id": n} or from a bare integer.
func DecodeTrigger(value []byte) (int64, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return 0, errors.New("empty message")
	}

	var id int64
	if value[0] == '{' {
		var req entity.ParseRequested
		if err := json.Unmarshal(value, &req); err != nil {
			return 0, fmt.Errorf("decode trigger: %w", err)
		}
		id = req.ID
	} else {
		n, err := strconv.ParseInt(string(bytes.Trim(value, `"`)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("decode trigger: %w", err)
		}
		id = n
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid document id %d", id)
	}
	return id, nil
}
