package orders

import (
	"github.com/ariefcatur/go-restaurant-orders/internal/uploads"
	"time"
)

type Item struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID             int64     `json:"id"`
	CustomerName   string    `json:"customerName"`
	PhoneNumber    string    `json:"phoneNumber"`
	NumberOfPeople int       `json:"numberOfPeople"`
	Items          []Item    `json:"items"`
	Status         Status    `json:"status"`
	Timestamp      time.Time `json:"timestamp"` // waktu reservasi, atau waktu order masuk
	PaymentProof   string    `json:"paymentProof"`
	Verified       bool      `json:"verified"`
}

// View is an order as returned by the API, with the proof filename expanded.
type View struct {
	Order
	PaymentProofURL *string `json:"paymentProofUrl"`
}

// StatusView is the small body served by the status lookup and kept in the cache.
type StatusView struct {
	ID       int64  `json:"id"`
	Status   Status `json:"status"`
	Verified bool   `json:"verified"`
}

// Present expands the proof filename against origin ("scheme://host").
func Present(o Order, origin string) View {
	return View{Order: o, PaymentProofURL: uploads.PublicURL(origin, o.PaymentProof)}
}

func PresentAll(list []Order, origin string) []View {
	out := make([]View, 0, len(list))
	for _, o := range list {
		out = append(out, Present(o, origin))
	}
	return out
}
