package analysis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"refactorgen/internal/apperr"
	t "refactorgen/internal/types"
)

// PostgresStore keeps models as JSONB rows in the analyses table.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS analyses (
    key TEXT PRIMARY KEY,
    payload JSONB NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Save(ctx context.Context, key string, m *t.StructuralModel) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.New(apperr.KindValidation, "save analysis", "key is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return apperr.Wrap(apperr.KindIO, "analyses schema", err)
	}
	payload, err := JSON.Marshal(m)
	if err != nil {
		return apperr.Wrap(apperr.KindSerialization, "encode json", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO analyses (key, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key)
DO UPDATE SET payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at
`, key, payload, time.Now())
	if err != nil {
		return apperr.Wrap(apperr.KindIO, "save analysis "+key, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (*t.StructuralModel, error) {
	key = strings.TrimSpace(key)
	if err := s.ensureSchema(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindIO, "analyses schema", err)
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM analyses WHERE key=$1`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Wrap(apperr.KindIO, "load analysis "+key, ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, "load analysis "+key, err)
	}
	var m t.StructuralModel
	if err := JSON.Unmarshal(payload, &m); err != nil {
		return nil, apperr.Wrap(apperr.KindDeserialization, "failed to parse saved analysis "+key, err)
	}
	return canonical(&m), nil
}
