package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"testing"
	"time"
)

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderID int64  `json:"order_id"`
		Status  string `json:"status"`
	}
	raw := json.RawMessage(MustMarshal(payload{OrderID: 7, Status: "ready"}))

	got, err := UnwrapPayload[payload](raw)
	if err != nil {
		t.Fatalf("UnwrapPayload: %v", err)
	}
	if got.OrderID != 7 || got.Status != "ready" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if _, err := UnwrapPayload[payload](json.RawMessage(`{"order_id":"x"}`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestMustMarshalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unsupported value")
		}
	}()
	MustMarshal(make(chan int))
}

func TestProducer_PublishNeverBlocks(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "test.topic", 1, nil)

	p.Publish([]byte("1"), []byte("a"))
	p.Publish([]byte("2"), []byte("b")) // inbox penuh -> dibuang
	if n := len(p.inbox); n != 1 {
		t.Fatalf("expected 1 queued message, got %d", n)
	}

	p.Close()
	p.Close()
	p.Publish([]byte("3"), []byte("c")) // setelah Close -> diabaikan, tidak panic
}

func TestProcess_RetriesUntilSuccess(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), attempts: 5, backoff: time.Millisecond}
	calls := 0
	h := func(context.Context, kafka.Message) error {
		calls++
		if calls < 3 {
			return errors.New("redis down")
		}
		return nil
	}
	if err := c.process(context.Background(), h, kafka.Message{Offset: 9}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestProcess_GivesUpAfterAttempts(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), attempts: 3, backoff: time.Millisecond}
	calls := 0
	boom := errors.New("redis down")
	h := func(context.Context, kafka.Message) error {
		calls++
		return boom
	}
	if err := c.process(context.Background(), h, kafka.Message{}); !errors.Is(err, boom) {
		t.Fatalf("expected last handler error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestProcess_StopsOnCancel(t *testing.T) {
	c := &Consumer{log: zap.NewNop(), attempts: 5, backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	h := func(context.Context, kafka.Message) error {
		calls++
		cancel()
		return errors.New("redis down")
	}
	if err := c.process(ctx, h, kafka.Message{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single call before cancel, got %d", calls)
	}
}
