package analysis

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	t "refactorgen/internal/types"
)

// CachedStore keeps recently saved or loaded models in memory in front of
// another Store. Values are copied in and out.
type CachedStore struct {
	origin Store
	models *lru.Cache[string, *t.StructuralModel]
}

func NewCachedStore(origin Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, *t.StructuralModel](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{origin: origin, models: cache}, nil
}

func (s *CachedStore) Save(ctx context.Context, key string, m *t.StructuralModel) error {
	if err := s.origin.Save(ctx, key, m); err != nil {
		s.models.Remove(strings.TrimSpace(key))
		return err
	}
	s.models.Add(strings.TrimSpace(key), clone(m))
	return nil
}

func (s *CachedStore) Load(ctx context.Context, key string) (*t.StructuralModel, error) {
	k := strings.TrimSpace(key)
	if m, ok := s.models.Get(k); ok {
		return clone(m), nil
	}
	m, err := s.origin.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	s.models.Add(k, clone(m))
	return m, nil
}
