package promotions

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-restaurant-orders/internal/apperr"
	"github.com/ariefcatur/go-restaurant-orders/internal/redisx"
	"go.uber.org/zap"
	"mime/multipart"
	"strings"
	"time"
)

type Store interface {
	List(ctx context.Context) ([]Promotion, error)
	Insert(ctx context.Context, p *Promotion) error
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
	Title       string
	Description string
	Date        string
	Image       *multipart.FileHeader
}

func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	if s.Cache != nil {
		if b, ok := s.Cache.Get(ctx, redisx.KeyPromotionList); ok {
			var list []Promotion
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
			_ = s.Cache.Set(ctx, redisx.KeyPromotionList, b, redisx.TTLListCache)
		}
	}
	return list, nil
}

// Create requires every field and an image.
func (s *Service) Create(ctx context.Context, in CreateInput) (Promotion, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Date) == "" || in.Image == nil {
		return Promotion{}, apperr.Validation("Missing required fields")
	}
	image, err := s.Files.Save(in.Image)
	if err != nil {
		return Promotion{}, apperr.Storage(err)
	}
	p := Promotion{
		Title:       in.Title,
		Description: in.Description,
		ImagePath:   image,
		Date:        in.Date,
		Timestamp:   s.now().UTC(),
	}
	if err := s.Store.Insert(ctx, &p); err != nil {
		s.Files.Remove(image)
		return Promotion{}, apperr.Storage(err)
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	image, err := s.Store.ImagePath(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	s.Files.Remove(image)
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
	if err := s.Cache.Del(ctx, redisx.KeyPromotionList); err != nil && s.Log != nil {
		s.Log.Warn("promotion cache invalidation failed", zap.Error(err))
	}
	settle := s.Settle
	if settle <= 0 {
		settle = redisx.ListCacheSettle
	}
	time.AfterFunc(settle, func() {
		dctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.Cache.Del(dctx, redisx.KeyPromotionList); err != nil && s.Log != nil {
			s.Log.Warn("promotion cache invalidation failed", zap.Error(err))
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
		return apperr.NotFound("Promotion not found")
	}
	return apperr.Storage(err)
}
