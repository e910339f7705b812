package orders

import (
	"encoding/json"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
)

type rawItem struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

// ParseItems decodes the submitted item list. It must be a non-empty JSON array
// whose elements carry a name, a non-negative numeric price and a positive
// integer quantity.
func ParseItems(raw string) ([]Item, error) {
	var in []*rawItem
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, apperr.Validation("Invalid items format")
	}
	if len(in) == 0 {
		return nil, apperr.Validation("Invalid items format: items cannot be empty")
	}
	out := make([]Item, 0, len(in))
	for i, it := range in {
		switch {
		case it == nil:
			return nil, apperr.Validationf("Invalid items format: items[%d] is null", i)
		case it.Name == nil || *it.Name == "":
			return nil, apperr.Validationf("Invalid items format: items[%d].name is required", i)
		case it.Price == nil || *it.Price < 0:
			return nil, apperr.Validationf("Invalid items format: items[%d].price must be a non-negative number", i)
		case it.Quantity == nil || *it.Quantity <= 0:
			return nil, apperr.Validationf("Invalid items format: items[%d].quantity must be a positive integer", i)
		}
		out = append(out, Item{Name: *it.Name, Price: *it.Price, Quantity: *it.Quantity})
	}
	return out, nil
}
