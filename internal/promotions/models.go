package promotions

import (
	"github.com/ariefcatur/go-restaurant-orders/internal/uploads"
	"time"
)

type Promotion struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImagePath   string    `json:"imagePath"`
	Date        string    `json:"date"` // teks bebas dari form, diurutkan apa adanya
	Timestamp   time.Time `json:"timestamp"`
}

type View struct {
	Promotion
	ImageURL *string `json:"imageUrl"`
}

func Present(p Promotion, origin string) View {
	return View{Promotion: p, ImageURL: uploads.PublicURL(origin, p.ImagePath)}
}

func PresentAll(list []Promotion, origin string) []View {
	out := make([]View, 0, len(list))
	for _, p := range list {
		out = append(out, Present(p, origin))
	}
	return out
}
