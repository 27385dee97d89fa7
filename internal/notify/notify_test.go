package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed int
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed++
	return nil
}

type owners map[int64]int64

func (o owners) OwnerOf(_ context.Context, id int64) (int64, error) {
	if u, ok := o[id]; ok {
		return u, nil
	}
	return 0, common.ErrNotFound
}

func newPublisher(w *fakeWriter) *KafkaPublisher {
	return &KafkaPublisher{w: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestNotifyEmbeddingPayload(t *testing.T) {
	w := &fakeWriter{}
	n := NewNotifier(newPublisher(w), owners{42: 7}, "cv_embedding_generation")

	if err := n.NotifyEmbedding(context.Background(), 42); err != nil {
		t.Fatalf("NotifyEmbedding: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if msg.Topic != "cv_embedding_generation" || string(msg.Key) != "42" {
		t.Fatalf("topic=%q key=%q", msg.Topic, msg.Key)
	}
	var got map[string]int64
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got["id"] != 42 || got["userId"] != 7 {
		t.Fatalf("payload = %s", msg.Value)
	}
}

func TestNotifyEmbeddingFailures(t *testing.T) {
	cases := map[string]*Notifier{
		"unknown owner": NewNotifier(newPublisher(&fakeWriter{}), owners{}, "t"),
		"broker down":   NewNotifier(newPublisher(&fakeWriter{err: errors.New("leader not available")}), owners{1: 2}, "t"),
	}
	for name, n := range cases {
		t.Run(name, func(t *testing.T) {
			err := n.NotifyEmbedding(context.Background(), 1)
			if !errors.Is(err, common.ErrNotification) {
				t.Fatalf("expected ErrNotification, got %v", err)
			}
		})
	}
}

func TestPublisherCloseIsIdempotent(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if w.closed != 1 {
		t.Fatalf("writer closed %d times", w.closed)
	}
	if err := p.Publish(context.Background(), "t", "1", map[string]int{"id": 1}); err == nil {
		t.Fatal("publish after close should fail")
	}
}
