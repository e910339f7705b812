package kitchen

import (
	"context"
	"encoding/json"
	"fmt"
	kafkax "github.com/ariefcatur/go-restaurant-orders/internal/kafka"
	"github.com/ariefcatur/go-restaurant-orders/internal/orders"
	"github.com/ariefcatur/go-restaurant-orders/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"time"
)

type Deduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Notifier turns order lifecycle events into kitchen ticket log lines.
type Notifier struct {
	Dedup       Deduper
	Log         *zap.Logger
	ServiceName string
}

// HandleOrderEvent dipasang sebagai handler consumer. Pesan rusak dilog lalu
// di-skip (return nil) supaya offset tetap jalan.
func (n *Notifier) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		n.Log.Warn("skip malformed event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}

	// 2) dedup via Redis (pakai event_id)
	if env.EventID != "" {
		first, err := n.Dedup.Claim(ctx, fmt.Sprintf(redisx.KeyDedup, n.ServiceName, env.EventID), redisx.TTLDedup)
		if err != nil {
			return err // belum commit, coba lagi nanti
		}
		if !first {
			return nil
		}
	}

	// 3) decode payload per tipe
	fields := []zap.Field{
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.String("trace_id", env.TraceID),
	}
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			n.Log.Warn("skip malformed payload", append(fields, zap.Error(err))...)
			return nil
		}
		n.Log.Info("new order ticket", append(fields,
			zap.Int64("order_id", p.OrderID),
			zap.String("customer", p.CustomerName),
			zap.Int("people", p.NumberOfPeople),
			zap.Strings("items", ticketLines(p.Items)),
			zap.Time("for", p.Timestamp),
		)...)
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			n.Log.Warn("skip malformed payload", append(fields, zap.Error(err))...)
			return nil
		}
		n.Log.Info("order status changed", append(fields,
			zap.Int64("order_id", p.OrderID), zap.String("status", string(p.Status)))...)
	case orders.EventPaymentVerified:
		p, err := kafkax.UnwrapPayload[orders.PaymentVerifiedPayload](env.Payload)
		if err != nil {
			n.Log.Warn("skip malformed payload", append(fields, zap.Error(err))...)
			return nil
		}
		if p.Verified {
			n.Log.Info("payment verified, start preparing", append(fields, zap.Int64("order_id", p.OrderID))...)
		} else {
			n.Log.Info("payment verification removed", append(fields, zap.Int64("order_id", p.OrderID))...)
		}
	case orders.EventCompletedOrdersPurged:
		p, err := kafkax.UnwrapPayload[orders.CompletedOrdersPurgedPayload](env.Payload)
		if err != nil {
			n.Log.Warn("skip malformed payload", append(fields, zap.Error(err))...)
			return nil
		}
		n.Log.Info("completed orders cleared", append(fields, zap.Int("count", p.Count))...)
	default:
		// ignore
		n.Log.Debug("ignore event", fields...)
	}
	return nil
}

func ticketLines(items []orders.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
	}
	return out
}
