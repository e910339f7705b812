package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated          = "OrderCreated"
	EventOrderStatusChanged    = "OrderStatusChanged"
	EventPaymentVerified       = "PaymentVerified"
	EventCompletedOrdersPurged = "CompletedOrdersPurged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "restaurant-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order id
	Payload       json.RawMessage `json:"payload"`                  // payload spesifik
}

// ---- Payload tipe per event ----

type OrderCreatedPayload struct {
	OrderID        int64     `json:"order_id"`
	CustomerName   string    `json:"customer_name"`
	NumberOfPeople int       `json:"number_of_people"`
	Items          []Item    `json:"items"`
	Timestamp      time.Time `json:"timestamp"`
}

type OrderStatusChangedPayload struct {
	OrderID int64  `json:"order_id"`
	Status  Status `json:"status"`
}

type PaymentVerifiedPayload struct {
	OrderID  int64 `json:"order_id"`
	Verified bool  `json:"verified"`
	// Status diisi "preparing" hanya kalau verified=true.
	Status Status `json:"status,omitempty"`
}

type CompletedOrdersPurgedPayload struct {
	OrderIDs []int64 `json:"order_ids"`
	Count    int     `json:"count"`
}
