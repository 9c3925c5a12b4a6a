package analysis

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"refactorgen/internal/apperr"
	"refactorgen/internal/config"
	t "refactorgen/internal/types"
)

// Store persists structural models (with their clusters) by key.
// Load(Save(x)) returns a value equal to x field for field.
type Store interface {
	Save(ctx context.Context, key string, m *t.StructuralModel) error
	Load(ctx context.Context, key string) (*t.StructuralModel, error)
}

var ErrNotFound = errors.New("analysis not found")

// FileStore keeps one model per file; the key is the file path and its
// extension picks the codec.
type FileStore struct{}

func NewFileStore() *FileStore { return &FileStore{} }

func (FileStore) Save(_ context.Context, path string, m *t.StructuralModel) error {
	codec := CodecFor(path)
	data, err := codec.Marshal(m)
	if err != nil {
		return apperr.Wrap(apperr.KindSerialization, "encode "+codec.Name(), err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(apperr.KindIO, "create "+dir, err)
	}
	f, err := os.CreateTemp(dir, ".analysis-*")
	if err != nil {
		return apperr.Wrap(apperr.KindIO, "save "+path, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return apperr.Wrap(apperr.KindIO, "save "+path, err)
	}
	if err := f.Close(); err != nil {
		return apperr.Wrap(apperr.KindIO, "save "+path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return apperr.Wrap(apperr.KindIO, "save "+path, err)
	}
	return nil
}

func (FileStore) Load(_ context.Context, path string) (*t.StructuralModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = errors.Join(ErrNotFound, err)
		}
		return nil, apperr.Wrap(apperr.KindIO, "load "+path, err)
	}
	codec := CodecFor(path)
	var m t.StructuralModel
	if err := codec.Unmarshal(data, &m); err != nil {
		return nil, apperr.Wrap(apperr.KindDeserialization, "failed to parse saved analysis "+path, err)
	}
	return canonical(&m), nil
}

// NewFromConfig returns the postgres store when a DSN is configured and
// reachable, otherwise the file store. A positive CacheSize adds an LRU in
// front.
func NewFromConfig(cfg config.StoreConfig, logger *log.Logger) Store {
	if logger == nil {
		logger = log.Default()
	}
	var store Store = NewFileStore()
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		pg, err := NewPostgresStore(dsn)
		if err != nil {
			logger.Printf("analysis store: postgres unavailable, using files: %v", err)
		} else {
			logger.Printf("analysis store: postgres")
			store = pg
		}
	}
	if cfg.CacheSize > 0 {
		cached, err := NewCachedStore(store, cfg.CacheSize)
		if err != nil {
			logger.Printf("analysis store: cache disabled: %v", err)
			return store
		}
		return cached
	}
	return store
}
