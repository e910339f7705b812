package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	kafkax "github.com/ariefcatur/go-restaurant-orders/internal/kafka"
	"github.com/ariefcatur/go-restaurant-orders/internal/redisx"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"time"
)

type Store interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	Insert(ctx context.Context, o *Order) error
	UpdateStatus(ctx context.Context, id int64, s Status) error
	SetVerified(ctx context.Context, id int64, verified bool) error
	DeleteCompleted(ctx context.Context) ([]int64, error)
}

type Files interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(name string)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store    Store
	Files    Files
	Cache    Cache
	Events   Publisher
	Log      *zap.Logger
	Producer string // nama service di envelope

	Now func() time.Time
}

type CreateInput struct {
	CustomerName    string
	PhoneNumber     string
	NumberOfPeople  string
	Items           string // JSON array
	ReservationTime string
	PaymentProof    *multipart.FileHeader
	TraceID         string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns every order, pending first and newest first within a status.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	list, err := s.Store.List(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		ri, rj := Rank(list[i].Status), Rank(list[j].Status)
		if ri != rj {
			return ri < rj
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.PhoneNumber) == "" || strings.TrimSpace(in.Items) == "" {
		return Order{}, apperr.Validation("Missing required fields")
	}
	items, err := ParseItems(in.Items)
	if err != nil {
		return Order{}, err
	}
	if in.PaymentProof == nil {
		return Order{}, apperr.Validation("Payment proof is required")
	}
	people, err := parsePeople(in.NumberOfPeople)
	if err != nil {
		return Order{}, err
	}
	ts, err := s.effectiveTime(in.ReservationTime)
	if err != nil {
		return Order{}, err
	}

	proof, err := s.Files.Save(in.PaymentProof)
	if err != nil {
		return Order{}, apperr.Storage(err)
	}

	o := Order{
		CustomerName:   in.CustomerName,
		PhoneNumber:    in.PhoneNumber,
		NumberOfPeople: people,
		Items:          items,
		Status:         StatusPending,
		Timestamp:      ts,
		PaymentProof:   proof,
		Verified:       false,
	}
	if err := s.Store.Insert(ctx, &o); err != nil {
		s.Files.Remove(proof)
		return Order{}, apperr.Storage(err)
	}

	s.cacheStatus(ctx, StatusView{ID: o.ID, Status: o.Status, Verified: o.Verified})
	s.publish(EventOrderCreated, PartitionKey(o.ID), o.ID, in.TraceID, OrderCreatedPayload{
		OrderID:        o.ID,
		CustomerName:   o.CustomerName,
		NumberOfPeople: o.NumberOfPeople,
		Items:          o.Items,
		Timestamp:      o.Timestamp,
	})
	return o, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status, traceID string) (Status, error) {
	st, ok := ParseStatus(status)
	if !ok {
		return "", apperr.Validation("Invalid status")
	}
	if err := s.Store.UpdateStatus(ctx, id, st); err != nil {
		return "", s.storeErr(err)
	}
	s.evictStatus(ctx, id)
	s.publish(EventOrderStatusChanged, PartitionKey(id), id, traceID, OrderStatusChangedPayload{OrderID: id, Status: st})
	return st, nil
}

// Verify sets the payment flag. Verifying also moves the order to preparing
// whatever its current status; un-verifying leaves the status alone.
func (s *Service) Verify(ctx context.Context, id int64, verified bool, traceID string) error {
	if err := s.Store.SetVerified(ctx, id, verified); err != nil {
		return s.storeErr(err)
	}
	s.evictStatus(ctx, id)
	p := PaymentVerifiedPayload{OrderID: id, Verified: verified}
	if verified {
		p.Status = StatusPreparing
	}
	s.publish(EventPaymentVerified, PartitionKey(id), id, traceID, p)
	return nil
}

// PurgeCompleted deletes all completed orders and reports how many went.
func (s *Service) PurgeCompleted(ctx context.Context, traceID string) (int, error) {
	ids, err := s.Store.DeleteCompleted(ctx)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, fmt.Sprintf(redisx.KeyOrderStatus, id))
	}
	if s.Cache != nil {
		_ = s.Cache.Del(ctx, keys...)
	}
	s.publish(EventCompletedOrdersPurged, purgeKey, 0, traceID, CompletedOrdersPurgedPayload{OrderIDs: ids, Count: len(ids)})
	return len(ids), nil
}

// StatusOf serves the status lookup: cache first, then the store.
func (s *Service) StatusOf(ctx context.Context, id int64) (StatusView, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	if s.Cache != nil {
		if b, ok := s.Cache.Get(ctx, key); ok {
			var v StatusView
			if err := json.Unmarshal(b, &v); err == nil {
				return v, nil
			}
		}
	}
	o, err := s.Store.Get(ctx, id)
	if err != nil {
		return StatusView{}, s.storeErr(err)
	}
	v := StatusView{ID: o.ID, Status: o.Status, Verified: o.Verified}
	s.cacheStatus(ctx, v)
	return v, nil
}

func (s *Service) storeErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Order not found")
	}
	return apperr.Storage(err)
}

func (s *Service) cacheStatus(ctx context.Context, v StatusView) {
	if s.Cache == nil {
		return
	}
	b, _ := json.Marshal(v)
	_ = s.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, v.ID), b, redisx.TTLStatusCache)
}

func (s *Service) evictStatus(ctx context.Context, id int64) {
	if s.Cache == nil {
		return
	}
	_ = s.Cache.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id))
}

// publish membungkus payload ke envelope v1; tidak pernah menggagalkan request.
func (s *Service) publish(eventType string, key []byte, orderID int64, traceID string, payload any) {
	if s.Events == nil {
		return
	}
	ev := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   s.now().UTC(),
		Producer:     s.Producer,
		TraceID:      traceID,
		Payload:      kafkax.MustMarshal(payload),
	}
	if orderID > 0 {
		ev.CorrelationID = strconv.FormatInt(orderID, 10)
	}
	s.Events.Publish(key, kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if s.Log != nil {
		s.Log.Debug("event published", zap.String("event_type", eventType), zap.String("event_id", ev.EventID))
	}
}

func parsePeople(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperr.Validation("numberOfPeople must be a positive integer")
	}
	return n, nil
}

var reservationLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// effectiveTime is the reservation time when given, otherwise now.
func (s *Service) effectiveTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().UTC(), nil
	}
	for _, layout := range reservationLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("Invalid reservationTime")
}
