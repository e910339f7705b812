package menu_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	"github.com/ariefcatur/go-restaurant-orders/internal/memstore"
	"github.com/ariefcatur/go-restaurant-orders/internal/menu"
	"github.com/ariefcatur/go-restaurant-orders/internal/redisx"
	"mime/multipart"
	"sync"
	"testing"
	"time"
)

type fakeFiles struct {
	n       int
	saved   []string
	removed []string
}

func (f *fakeFiles) Save(fh *multipart.FileHeader) (string, error) {
	f.n++
	name := fmt.Sprintf("%d-%s", f.n, fh.Filename)
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeFiles) Remove(name string) {
	if name != "" {
		f.removed = append(f.removed, name)
	}
}

type countingCache struct {
	mu   sync.Mutex
	m    map[string][]byte
	hits int
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	if ok {
		c.hits++
	}
	return b, ok
}

func (c *countingCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = val
	return nil
}

func (c *countingCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}

func (c *countingCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.m[key]
	return ok
}

type failingDelete struct{ menu.Store }

func (failingDelete) Delete(context.Context, int64) error { return errors.New("database is locked") }

func newService() (*menu.Service, *memstore.Menu, *fakeFiles, *countingCache) {
	store := memstore.NewMenu()
	files := &fakeFiles{}
	cache := &countingCache{m: map[string][]byte{}}
	// Settle panjang: delete kedua tidak ikut campur di test lain
	return &menu.Service{Store: store, Files: files, Cache: cache, Settle: time.Hour}, store, files, cache
}

func TestCreate(t *testing.T) {
	svc, _, files, _ := newService()
	ctx := context.Background()

	it, err := svc.Create(ctx, menu.CreateInput{Name: "Tea", Type: "drinks", Price: "2.50"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if it.ID != 1 || it.Price != 2.5 || it.ImagePath != "" {
		t.Fatalf("unexpected item %+v", it)
	}

	it, err = svc.Create(ctx, menu.CreateInput{Name: "Cake", Type: "dessert", Price: "4",
		Image: &multipart.FileHeader{Filename: "cake.jpg"}})
	if err != nil {
		t.Fatal(err)
	}
	if it.ImagePath != files.saved[0] {
		t.Fatalf("image %q not saved file %v", it.ImagePath, files.saved)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   menu.CreateInput
	}{
		{"missing price", menu.CreateInput{Name: "Tea", Type: "drinks"}},
		{"missing name", menu.CreateInput{Type: "drinks", Price: "1"}},
		{"missing type", menu.CreateInput{Name: "Tea", Price: "1"}},
		{"price text", menu.CreateInput{Name: "Tea", Type: "drinks", Price: "cheap"}},
		{"negative price", menu.CreateInput{Name: "Tea", Type: "drinks", Price: "-1"}},
		{"nan price", menu.CreateInput{Name: "Tea", Type: "drinks", Price: "NaN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, files, _ := newService()
			tt.in.Image = &multipart.FileHeader{Filename: "x.png"}
			if _, err := svc.Create(context.Background(), tt.in); !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			list, _ := store.List(context.Background())
			if len(list) != 0 || len(files.saved) != 0 {
				t.Fatalf("nothing should be stored: rows=%d files=%v", len(list), files.saved)
			}
		})
	}
}

func TestList_CachedUntilWrite(t *testing.T) {
	svc, _, _, cache := newService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, menu.CreateInput{Name: "Tea", Type: "drinks", Price: "2"})

	if _, err := svc.List(ctx); err != nil {
		t.Fatal(err)
	}
	if !cache.has(redisx.KeyMenuList) {
		t.Fatal("expected list cached")
	}
	list, _ := svc.List(ctx)
	if cache.hits != 1 || len(list) != 1 {
		t.Fatalf("expected cache hit, hits=%d len=%d", cache.hits, len(list))
	}

	_, _ = svc.Create(ctx, menu.CreateInput{Name: "Coffee", Type: "drinks", Price: "3"})
	if cache.has(redisx.KeyMenuList) {
		t.Fatal("expected cache invalidated by create")
	}
	list, _ = svc.List(ctx)
	if len(list) != 2 || list[0].Name != "Coffee" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestCreate_SweepsStaleListAfterSettle(t *testing.T) {
	svc, store, _, cache := newService()
	svc.Settle = 10 * time.Millisecond
	ctx := context.Background()

	// List lambat membaca store sebelum Create...
	stale, _ := store.List(ctx)
	_, _ = svc.Create(ctx, menu.CreateInput{Name: "Tea", Type: "drinks", Price: "2"})
	// ...lalu menulis cache setelah delete pertama
	b, _ := json.Marshal(stale)
	_ = cache.Set(ctx, redisx.KeyMenuList, b, redisx.TTLListCache)

	deadline := time.Now().Add(2 * time.Second)
	for cache.has(redisx.KeyMenuList) {
		if time.Now().After(deadline) {
			t.Fatal("stale list still cached after settle")
		}
		time.Sleep(5 * time.Millisecond)
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Tea" {
		t.Fatalf("expected fresh list, got %+v", list)
	}
}

func TestDelete(t *testing.T) {
	svc, store, files, _ := newService()
	ctx := context.Background()
	it, _ := svc.Create(ctx, menu.CreateInput{Name: "Cake", Type: "dessert", Price: "4",
		Image: &multipart.FileHeader{Filename: "cake.jpg"}})

	if err := svc.Delete(ctx, it.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(files.removed) != 1 || files.removed[0] != it.ImagePath {
		t.Fatalf("expected image removed, got %v", files.removed)
	}
	if _, err := store.ImagePath(ctx, it.ID); !errors.Is(err, menu.ErrNotFound) {
		t.Fatal("expected row deleted")
	}
}

func TestDelete_MissingLeavesStoreUnchanged(t *testing.T) {
	svc, store, files, _ := newService()
	ctx := context.Background()
	_, _ = svc.Create(ctx, menu.CreateInput{Name: "Tea", Type: "drinks", Price: "2"})

	if err := svc.Delete(ctx, 42); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	list, _ := store.List(ctx)
	if len(list) != 1 || len(files.removed) != 0 {
		t.Fatalf("store changed: rows=%d removed=%v", len(list), files.removed)
	}
}

func TestDelete_StoreFailureAfterImageRemoval(t *testing.T) {
	svc, store, files, _ := newService()
	ctx := context.Background()
	it, _ := svc.Create(ctx, menu.CreateInput{Name: "Cake", Type: "dessert", Price: "4",
		Image: &multipart.FileHeader{Filename: "cake.jpg"}})
	svc.Store = failingDelete{Store: store}

	err := svc.Delete(ctx, it.ID)
	if apperr.KindOf(err) != apperr.KindStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
	// tidak ada rollback: file sudah terhapus
	if len(files.removed) != 1 {
		t.Fatalf("expected image removal attempted, got %v", files.removed)
	}
}
