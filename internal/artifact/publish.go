package artifact

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"refactorgen/internal/apperr"
)

// Publisher copies a written proposal tree into a Store.
type Publisher struct {
	Store  Store
	Logger *log.Logger
}

// RunID names one published proposal: "<module>-<UTC timestamp>", with
// namespace separators made key-safe.
func RunID(module string, now time.Time) string {
	safe := strings.NewReplacer("::", "-", "/", "-", "\\", "-", " ", "").Replace(module)
	if safe == "" {
		safe = "proposal"
	}
	return safe + "-" + now.UTC().Format("20060102T150405Z")
}

// Publish uploads each written file under runID, keyed by its path relative
// to baseDir. It returns the keys in the order given.
func (p *Publisher) Publish(ctx context.Context, runID, baseDir string, written []string) ([]string, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("publish: no store configured")
	}
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}
	keys := make([]string, 0, len(written))
	for _, path := range written {
		rel, err := filepath.Rel(baseDir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return keys, apperr.New(apperr.KindValidation, "publish", "%s is outside %s", path, baseDir)
		}
		rel = filepath.ToSlash(rel)
		content, err := os.ReadFile(path)
		if err != nil {
			return keys, apperr.Wrap(apperr.KindIO, "read "+path, err)
		}
		if err := p.Store.Put(ctx, runID, rel, content); err != nil {
			return keys, apperr.Wrap(apperr.KindIO, fmt.Sprintf("publish %s/%s", runID, rel), err)
		}
		keys = append(keys, runID+"/"+rel)
	}
	logger.Printf("artifact: published %d file(s) as %s", len(keys), runID)
	return keys, nil
}
