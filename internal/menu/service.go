package menu

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	"github.com/ariefcatur/go-restaurant-orders/internal/redisx"
	"go.uber.org/zap"
	"math"
	"mime/multipart"
	"strconv"
	"strings"
	"time"
)

type Store interface {
	List(ctx context.Context) ([]Item, error)
	Insert(ctx context.Context, it *Item) error
	ImagePath(ctx context.Context, id int64) (string, error)
	Delete(ctx context.Context, id int64) error
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

type Service struct {
	Store Store
	Files Files
	Cache Cache
	Log   *zap.Logger

	Now    func() time.Time
	Settle time.Duration // default redisx.ListCacheSettle
}

type CreateInput struct {
	Name  string
	Type  string
	Price string
	Image *multipart.FileHeader // opsional
}

// List returns the menu grouped by type, then by name. Results are cached
// until the next create or delete.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	if s.Cache != nil {
		if b, ok := s.Cache.Get(ctx, redisx.KeyMenuList); ok {
			var list []Item
			if err := json.Unmarshal(b, &list); err == nil {
				return list, nil
			}
		}
	}
	list, err := s.Store.List(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if s.Cache != nil {
		if b, err := json.Marshal(list); err == nil {
			_ = s.Cache.Set(ctx, redisx.KeyMenuList, b, redisx.TTLListCache)
		}
	}
	return list, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Item, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Price) == "" {
		return Item{}, apperr.Validation("Missing required fields")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return Item{}, apperr.Validation("price must be a non-negative number")
	}

	it := Item{Name: in.Name, Type: in.Type, Price: price, Timestamp: s.now().UTC()}
	if in.Image != nil {
		name, err := s.Files.Save(in.Image)
		if err != nil {
			return Item{}, apperr.Storage(err)
		}
		it.ImagePath = name
	}
	if err := s.Store.Insert(ctx, &it); err != nil {
		s.Files.Remove(it.ImagePath)
		return Item{}, apperr.Storage(err)
	}
	s.invalidate(ctx)
	return it, nil
}

// Delete removes the item and, best-effort, its image file.
func (s *Service) Delete(ctx context.Context, id int64) error {
	image, err := s.Store.ImagePath(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if image != "" {
		s.Files.Remove(image)
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.invalidate(ctx)
	return nil
}

// invalidate drops the cached list now and again after Settle. The second delete
// sweeps a stale copy set by a List that read the store before this write.
func (s *Service) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, redisx.KeyMenuList); err != nil && s.Log != nil {
		s.Log.Warn("menu cache invalidation failed", zap.Error(err))
	}
	settle := s.Settle
	if settle <= 0 {
		settle = redisx.ListCacheSettle
	}
	time.AfterFunc(settle, func() {
		dctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Cache.Del(dctx, redisx.KeyMenuList); err != nil && s.Log != nil {
			s.Log.Warn("menu cache invalidation failed", zap.Error(err))
		}
	})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func storeErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Menu item not found")
	}
	return apperr.Storage(err)
}
