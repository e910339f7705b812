// Package memstore keeps orders, menu items and promotions in process memory.
// It follows the same id and ordering rules as the Postgres repos and is
// used when no database is configured.
package memstore

import (
	"context"
	"github.com/ariefcatur/go-restaurant-orders/internal/menu"
	"github.com/ariefcatur/go-restaurant-orders/internal/orders"
	"github.com/ariefcatur/go-restaurant-orders/internal/promotions"
	"sort"
	"sync"
)

type Orders struct {
	mu     sync.Mutex
	lastID int64
	rows   map[int64]orders.Order
}

func NewOrders() *Orders { return &Orders{rows: map[int64]orders.Order{}} }

func cloneOrder(o orders.Order) orders.Order {
	o.Items = append([]orders.Item(nil), o.Items...)
	return o
}

func (s *Orders) List(_ context.Context) ([]orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orders.Order, 0, len(s.rows))
	for _, o := range s.rows {
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := orders.Rank(out[i].Status), orders.Rank(out[j].Status)
		if ri != rj {
			return ri < rj
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Orders) Get(_ context.Context, id int64) (orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *Orders) Insert(_ context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	o.ID = s.lastID
	s.rows[o.ID] = cloneOrder(*o)
	return nil
}

func (s *Orders) UpdateStatus(_ context.Context, id int64, st orders.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.Status = st
	s.rows[id] = o
	return nil
}

func (s *Orders) SetVerified(_ context.Context, id int64, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.Verified = verified
	if verified {
		o.Status = orders.StatusPreparing
	}
	s.rows[id] = o
	return nil
}

func (s *Orders) DeleteCompleted(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []int64{}
	for id, o := range s.rows {
		if o.Status == orders.StatusCompleted {
			ids = append(ids, id)
			delete(s.rows, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type Menu struct {
	mu     sync.Mutex
	lastID int64
	rows   map[int64]menu.Item
}

func NewMenu() *Menu { return &Menu{rows: map[int64]menu.Item{}} }

func (s *Menu) List(_ context.Context) ([]menu.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]menu.Item, 0, len(s.rows))
	for _, it := range s.rows {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Menu) Insert(_ context.Context, it *menu.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	it.ID = s.lastID
	s.rows[it.ID] = *it
	return nil
}

func (s *Menu) ImagePath(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.rows[id]
	if !ok {
		return "", menu.ErrNotFound
	}
	return it.ImagePath, nil
}

func (s *Menu) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return menu.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

type Promotions struct {
	mu     sync.Mutex
	lastID int64
	rows   map[int64]promotions.Promotion
}

func NewPromotions() *Promotions { return &Promotions{rows: map[int64]promotions.Promotion{}} }

func (s *Promotions) List(_ context.Context) ([]promotions.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]promotions.Promotion, 0, len(s.rows))
	for _, p := range s.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Promotions) Insert(_ context.Context, p *promotions.Promotion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	p.ID = s.lastID
	s.rows[p.ID] = *p
	return nil
}

func (s *Promotions) ImagePath(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return "", promotions.ErrNotFound
	}
	return p.ImagePath, nil
}

func (s *Promotions) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return promotions.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

var (
	_ orders.Store     = (*Orders)(nil)
	_ menu.Store       = (*Menu)(nil)
	_ promotions.Store = (*Promotions)(nil)
)
