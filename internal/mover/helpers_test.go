package mover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/notemover/internal/models"
	"github.com/starford/notemover/internal/storage"
)

type captured struct {
	reports []Report
}

func (c *captured) Report(r Report) { c.reports = append(c.reports, r) }

func (c *captured) bySeverity(s Severity) []Report {
	var out []Report
	for _, r := range c.reports {
		if r.Severity == s {
			out = append(out, r)
		}
	}
	return out
}

// faultyStore wraps a real vault and injects failures.
type faultyStore struct {
	storage.Provider
	renameErr error
	createErr error
	panicOn   string
	renames   int
}

func (f *faultyStore) Rename(oldPath, newPath string) error {
	f.renames++
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.Provider.Rename(oldPath, newPath)
}

func (f *faultyStore) CreateDir(path string) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.Provider.CreateDir(path)
}

func (f *faultyStore) Resolve(path string) (models.Entry, error) {
	if f.panicOn != "" && path == f.panicOn {
		panic("lookup exploded")
	}
	return f.Provider.Resolve(path)
}

type fakeTemplates struct {
	store   storage.Provider
	err     error
	calls   []string
	sawFile bool
}

func (f *fakeTemplates) Append(_ context.Context, file models.NoteFile, ref string) error {
	f.calls = append(f.calls, ref)
	f.sawFile = storage.ExistsAs(f.store, file.Path, models.KindFile)
	return f.err
}

func newVault(t *testing.T, files ...string) *faultyStore {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)
	for _, f := range files {
		if f[len(f)-1] == '/' {
			require.NoError(t, fs.CreateDir(f))
			continue
		}
		require.NoError(t, fs.Write(f, []byte("# "+f+"\n")))
	}
	return &faultyStore{Provider: fs}
}
