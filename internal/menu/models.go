package menu

import (
	"github.com/ariefcatur/go-restaurant-orders/internal/uploads"
	"time"
)

type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // kategori, kunci pengelompokan di halaman menu
	Price     float64   `json:"price"`
	ImagePath string    `json:"imagePath,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type View struct {
	Item
	ImageURL *string `json:"imageUrl"`
}

func Present(it Item, origin string) View {
	return View{Item: it, ImageURL: uploads.PublicURL(origin, it.ImagePath)}
}

func PresentAll(list []Item, origin string) []View {
	out := make([]View, 0, len(list))
	for _, it := range list {
		out = append(out, Present(it, origin))
	}
	return out
}
