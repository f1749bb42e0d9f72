// Package storage defines the vault file-system abstraction and the path
// utilities shared by every component that compares vault paths.
package storage

import "github.com/starford/notemover/internal/models"

// Provider is the interface for vault file operations. All paths are
// vault-relative and slash-separated.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of the file at path.
	Write(path string, content []byte) error
	// Resolve classifies path. A missing path resolves to KindNone with a nil error.
	Resolve(path string) (models.Entry, error)
	// CreateDir creates the folder at path, including missing parents.
	CreateDir(path string) error
	// Rename moves a file or folder to newPath. It never overwrites an
	// existing entry and does not create missing parent folders.
	Rename(oldPath, newPath string) error
}
