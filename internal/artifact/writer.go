package artifact

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"refactorgen/internal/apperr"
	t "refactorgen/internal/types"
)

// DefaultBaseDir is the output directory used when the caller gives none.
func DefaultBaseDir(model string) string {
	return "refactored_" + model
}

// Writer lays proposed modules out on disk, one file per module.
type Writer struct {
	Namespace t.Namespace
	Logger    *log.Logger
}

// ModulePath maps a namespaced module name under baseDir:
// "App::Billing::Invoice" -> baseDir/App/Billing/Invoice.pm.
func ModulePath(baseDir, name string, ns t.Namespace) (string, error) {
	dirs, file := ns.Layout(name)
	for _, seg := range append(append([]string(nil), dirs...), file) {
		if seg == "." || seg == ".." || filepath.Base(seg) != seg {
			return "", apperr.New(apperr.KindValidation, "module path", "module %q has unsafe segment %q", name, seg)
		}
	}
	parts := append([]string{baseDir}, dirs...)
	return filepath.Join(append(parts, file)...), nil
}

// Write stores every module's generated code verbatim and returns the
// written paths in module order. The first failure stops the run; files
// already written stay in place.
func (w *Writer) Write(p *t.RefactoringProposal, baseDir string) ([]string, error) {
	if p == nil {
		return nil, apperr.New(apperr.KindValidation, "write", "no proposal")
	}
	logger := w.Logger
	if logger == nil {
		logger = log.Default()
	}
	if baseDir == "" {
		baseDir = DefaultBaseDir(p.OriginalModel.Name)
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindIO, "create "+baseDir, err)
	}

	written := make([]string, 0, len(p.SuggestedModules))
	for _, m := range p.SuggestedModules {
		path, err := ModulePath(baseDir, m.Name, w.Namespace)
		if err != nil {
			return written, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, apperr.Wrap(apperr.KindIO, "create "+filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(m.GeneratedCode), 0o644); err != nil {
			return written, apperr.Wrap(apperr.KindIO, fmt.Sprintf("write %s (%s)", path, m.Name), err)
		}
		logger.Printf("artifact: wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}
