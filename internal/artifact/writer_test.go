package artifact

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refactorgen/internal/apperr"
	"refactorgen/internal/config"
	"refactorgen/internal/types"
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func proposal(mods ...types.ModuleProposal) *types.RefactoringProposal {
	return &types.RefactoringProposal{
		OriginalModel:    types.StructuralModel{Name: "App"},
		SuggestedModules: mods,
	}
}

func TestModulePath_Layout(t *testing.T) {
	ns := types.DefaultNamespace()
	p, err := ModulePath("out", "App::Billing::Invoice", ns)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "App", "Billing", "Invoice.pm"), p)

	p, err = ModulePath("out", "Util", ns)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "Util.pm"), p)

	p, err = ModulePath("out", "", ns)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "Unknown.pm"), p)

	_, err = ModulePath("out", "App::..::Etc", ns)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = ModulePath("out", "App::a/b", ns)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestWriter_WritesVerbatimTree(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")
	w := &Writer{Logger: quiet()}
	code := "package App::Billing::Invoice;\n\n  sub x {  }\n1;"
	paths, err := w.Write(proposal(
		types.ModuleProposal{Name: "App::Billing::Invoice", GeneratedCode: code},
		types.ModuleProposal{Name: "Util", GeneratedCode: "package Util;\n1;\n"},
	), base)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(base, "App", "Billing", "Invoice.pm"),
		filepath.Join(base, "Util.pm"),
	}, paths)

	got, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, code, string(got))
	assert.DirExists(t, filepath.Join(base, "App", "Billing"))

	// Re-running over existing directories is fine.
	_, err = w.Write(proposal(types.ModuleProposal{Name: "App::Billing::Tax"}), base)
	assert.NoError(t, err)
}

func TestWriter_DefaultBaseDir(t *testing.T) {
	t.Chdir(t.TempDir())
	paths, err := (&Writer{Logger: quiet()}).Write(proposal(types.ModuleProposal{Name: "App::X"}), "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("refactored_App", "App", "X.pm")}, paths)
	assert.FileExists(t, paths[0])
}

func TestWriter_StopsAtFirstFailureWithoutRollback(t *testing.T) {
	base := t.TempDir()
	// A file where a directory is needed.
	require.NoError(t, os.WriteFile(filepath.Join(base, "Blocked"), []byte("x"), 0o644))

	paths, err := (&Writer{Logger: quiet()}).Write(proposal(
		types.ModuleProposal{Name: "First", GeneratedCode: "1;"},
		types.ModuleProposal{Name: "Blocked::Mod", GeneratedCode: "2;"},
		types.ModuleProposal{Name: "Third", GeneratedCode: "3;"},
	), base)
	require.Error(t, err)
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))
	assert.Contains(t, err.Error(), filepath.Join(base, "Blocked"))
	assert.Equal(t, []string{filepath.Join(base, "First.pm")}, paths)
	assert.FileExists(t, filepath.Join(base, "First.pm"))
	assert.NoFileExists(t, filepath.Join(base, "Third.pm"))
}

func TestWriter_ConcurrentSharedDirectories(t *testing.T) {
	base := t.TempDir()
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = (&Writer{Logger: quiet()}).Write(proposal(
				types.ModuleProposal{Name: "Shared::Deep::Mod" + string(rune('A'+i))},
			), base)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestPublisher_UploadsRelativeKeys(t *testing.T) {
	base := t.TempDir()
	paths, err := (&Writer{Logger: quiet()}).Write(proposal(
		types.ModuleProposal{Name: "App::Billing::Invoice", GeneratedCode: "inv"},
		types.ModuleProposal{Name: "Util", GeneratedCode: "util"},
	), base)
	require.NoError(t, err)

	store := NewMemoryStore()
	pub := &Publisher{Store: store, Logger: quiet()}
	keys, err := pub.Publish(context.Background(), "run-1", base, paths)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1/App/Billing/Invoice.pm", "run-1/Util.pm"}, keys)

	listed, err := store.List(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"App/Billing/Invoice.pm", "Util.pm"}, listed)
	got, err := store.Get(context.Background(), "run-1", "Util.pm")
	require.NoError(t, err)
	assert.Equal(t, "util", string(got))

	_, err = store.Get(context.Background(), "run-1", "missing.pm")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublisher_RejectsOutsidePaths(t *testing.T) {
	pub := &Publisher{Store: NewMemoryStore(), Logger: quiet()}
	_, err := pub.Publish(context.Background(), "run", t.TempDir(), []string{"/etc/passwd"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRunID(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "App-Billing-20250304T050607Z", RunID("App::Billing", now))
	assert.Equal(t, "proposal-20250304T050607Z", RunID("", now))
}

func TestNewS3Store_Validates(t *testing.T) {
	_, err := NewS3Store(config.PublishConfig{Bucket: "b", AccessKey: "a", SecretKey: "s"})
	assert.ErrorContains(t, err, "endpoint")
	_, err = NewS3Store(config.PublishConfig{Endpoint: "localhost:9000", Bucket: "b"})
	assert.ErrorContains(t, err, "access key")

	s, err := NewS3Store(config.PublishConfig{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "a", SecretKey: "s", Prefix: "/proposals/"})
	require.NoError(t, err)
	assert.Equal(t, "proposals/run", s.runPrefix("run"))
	assert.Equal(t, "us-east-1", s.region)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/x-perl; charset=utf-8", contentType("App/Billing/Store.pm"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType("notes.txt"))
}
