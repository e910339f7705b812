package promotions_test

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	"github.com/ariefcatur/go-restaurant-orders/internal/memstore"
	"github.com/ariefcatur/go-restaurant-orders/internal/promotions"
	"github.com/ariefcatur/go-restaurant-orders/internal/redisx"
	"mime/multipart"
	"sync"
	"testing"
	"time"
)

type fakeFiles struct {
	saved   []string
	removed []string
}

func (f *fakeFiles) Save(fh *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("%d-%s", len(f.saved)+1, fh.Filename)
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeFiles) Remove(name string) { f.removed = append(f.removed, name) }

type lockedCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (c *lockedCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	return b, ok
}

func (c *lockedCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = val
	return nil
}

func (c *lockedCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}

func newService() (*promotions.Service, *memstore.Promotions, *fakeFiles) {
	store := memstore.NewPromotions()
	files := &fakeFiles{}
	return &promotions.Service{Store: store, Files: files, Cache: redisx.Nop{}}, store, files
}

func input(date string) promotions.CreateInput {
	return promotions.CreateInput{
		Title:       "Mooncake week",
		Description: "Buy two get one",
		Date:        date,
		Image:       &multipart.FileHeader{Filename: "moon.png"},
	}
}

func TestCreateAndList(t *testing.T) {
	svc, _, files := newService()
	ctx := context.Background()
	for _, d := range []string{"2026-09-01", "2026-10-15", "2026-08-20"} {
		p, err := svc.Create(ctx, input(d))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if p.ImagePath == "" || p.Timestamp.IsZero() {
			t.Fatalf("unexpected promotion %+v", p)
		}
	}
	if len(files.saved) != 3 {
		t.Fatalf("expected 3 images saved, got %d", len(files.saved))
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if list[0].Date != "2026-10-15" || list[2].Date != "2026-08-20" {
		t.Fatalf("expected date descending, got %+v", list)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *promotions.CreateInput)
	}{
		{"missing title", func(in *promotions.CreateInput) { in.Title = "" }},
		{"missing description", func(in *promotions.CreateInput) { in.Description = "" }},
		{"missing date", func(in *promotions.CreateInput) { in.Date = " " }},
		{"missing image", func(in *promotions.CreateInput) { in.Image = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, files := newService()
			in := input("2026-10-01")
			tt.mutate(&in)
			if _, err := svc.Create(context.Background(), in); !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			list, _ := store.List(context.Background())
			if len(list) != 0 || len(files.saved) != 0 {
				t.Fatal("nothing should be stored")
			}
		})
	}
}

func TestDelete(t *testing.T) {
	svc, store, files := newService()
	ctx := context.Background()
	p, _ := svc.Create(ctx, input("2026-10-01"))

	if err := svc.Delete(ctx, p.ID+1); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(files.removed) != 0 {
		t.Fatal("no file should be touched for a missing promotion")
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(files.removed) != 1 || files.removed[0] != p.ImagePath {
		t.Fatalf("expected image cleanup, got %v", files.removed)
	}
	list, _ := store.List(ctx)
	if len(list) != 0 {
		t.Fatal("expected promotion deleted")
	}
}

func TestDelete_SweepsStaleListAfterSettle(t *testing.T) {
	svc, _, _ := newService()
	cache := &lockedCache{m: map[string][]byte{}}
	svc.Cache = cache
	svc.Settle = 10 * time.Millisecond
	ctx := context.Background()

	p, _ := svc.Create(ctx, input("2026-10-01"))
	stale, err := svc.List(ctx)
	if err != nil || len(stale) != 1 {
		t.Fatalf("List: %v %+v", err, stale)
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	// List yang terlambat menulis ulang daftar lama
	b, _ := json.Marshal(stale)
	_ = cache.Set(ctx, redisx.KeyPromotionList, b, redisx.TTLListCache)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := cache.Get(ctx, redisx.KeyPromotionList); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("stale list still cached after settle")
		}
		time.Sleep(5 * time.Millisecond)
	}
	list, _ := svc.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}
