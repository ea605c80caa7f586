package service

import (
	"context"

	"github.com/ignatzorin/sugvoyage-backend/internal/models"
	"github.com/ignatzorin/sugvoyage-backend/internal/repository"
)

// VerificationStore хранит коды подтверждения по email.
// Find возвращает repository.ErrVerificationNotFound, если записи нет.
// Просроченная запись продолжает находиться, пока её не удалят.
type VerificationStore interface {
	Save(ctx context.Context, rec *models.VerificationRecord) error
	Find(ctx context.Context, email string) (*models.VerificationRecord, error)
	Consume(ctx context.Context, email, code string) (bool, error)
	Delete(ctx context.Context, email string) error
}

// MemoryVerificationStore держит коды в CacheService.
// Подходит для одного инстанса: записи теряются при перезапуске.
type MemoryVerificationStore struct {
	cache *CacheService
}

func NewMemoryVerificationStore(cache *CacheService) *MemoryVerificationStore {
	return &MemoryVerificationStore{cache: cache}
}

func (s *MemoryVerificationStore) Save(_ context.Context, rec *models.VerificationRecord) error {
	stored := *rec
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.cache.now()
	}
	rec.CreatedAt = stored.CreatedAt

	ttl := stored.ExpiresAt.Sub(s.cache.now()) + models.VerificationRetention
	s.cache.Set(VerificationCacheKey(stored.Email), &stored, ttl)
	return nil
}

func (s *MemoryVerificationStore) Find(_ context.Context, email string) (*models.VerificationRecord, error) {
	value, ok := s.cache.Get(VerificationCacheKey(email))
	if !ok {
		return nil, repository.ErrVerificationNotFound
	}
	rec := *value.(*models.VerificationRecord)
	return &rec, nil
}

func (s *MemoryVerificationStore) Consume(_ context.Context, email, code string) (bool, error) {
	return s.cache.CompareAndDelete(VerificationCacheKey(email), func(value interface{}) bool {
		rec, ok := value.(*models.VerificationRecord)
		return ok && rec.Code == code
	}), nil
}

func (s *MemoryVerificationStore) Delete(_ context.Context, email string) error {
	s.cache.Delete(VerificationCacheKey(email))
	return nil
}
