package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/notemover/internal/apperr"
	"github.com/starford/notemover/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to vault directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string {
	return f.root
}

// Rel converts an absolute path under the vault into a normalized vault path.
func (f *FS) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return "", fmt.Errorf("storage: rel: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path outside vault: %s", abs)
	}
	return NormalizePath(filepath.ToSlash(rel)), nil
}

// safePath resolves a vault path against the root and rejects any result
// that escapes it. A leading slash means the vault root, not the host root.
func (f *FS) safePath(rel string) (string, error) {
	norm := NormalizePath(rel)
	if norm == RootPath {
		return f.root, nil
	}
	joined := filepath.Join(f.root, filepath.FromSlash(norm))
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// List walks dir and returns metadata for every .md file.
func (f *FS) List(dir string) ([]models.NoteMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.NoteMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), MarkdownExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := f.Rel(p)
		if err != nil {
			return err
		}
		out = append(out, models.NoteMetadata{
			Path:      rel,
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".notemover-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Resolve classifies path as a file, a folder, or nothing.
func (f *FS) Resolve(path string) (models.Entry, error) {
	norm := NormalizePath(path)
	abs, err := f.safePath(norm)
	if err != nil {
		return models.Entry{}, err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Entry{Path: norm, Kind: models.KindNone}, nil
		}
		return models.Entry{}, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	kind := models.KindFile
	if info.IsDir() {
		kind = models.KindDir
	}
	return models.Entry{Path: norm, Kind: kind}, nil
}

// CreateDir creates a folder and any missing parents.
func (f *FS) CreateDir(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		return fmt.Errorf("storage: create folder %s: %w", path, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("storage: create folder %s: %w", path, err)
	}
	return nil
}

// Rename moves a file or folder within the vault.
func (f *FS) Rename(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if absOld == f.root || absNew == f.root {
		return fmt.Errorf("storage: cannot rename the vault root")
	}
	if _, err := os.Lstat(absOld); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: rename %s: %w", oldPath, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: rename %s: %w", oldPath, err)
	}
	if _, err := os.Lstat(absNew); err == nil {
		return fmt.Errorf("storage: rename to %s: %w", newPath, apperr.ErrAlreadyExists)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}
