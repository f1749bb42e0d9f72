package storage

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/starford/notemover/internal/models"
)

// RootPath is the normalized form of the vault root.
const RootPath = "/"

// MarkdownExt is the only extension treated as a note.
const MarkdownExt = ".md"

var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\\", "/")

// NormalizePath turns a user or event supplied path into the canonical vault
// form: slash separated, no leading or trailing slash, no repeated or dot
// segments, NFC composed. The empty path and the root both become RootPath.
// Equality of normalized paths is the only "same location" test.
func NormalizePath(p string) string {
	p = spaceReplacer.Replace(p)
	p = norm.NFC.String(p)
	p = strings.Trim(p, "/")
	if p == "" {
		return RootPath
	}
	p = path.Clean(p)
	if p == "." {
		return RootPath
	}
	return p
}

// JoinPath joins a folder and a name and normalizes the result.
func JoinPath(dir, name string) string {
	if NormalizePath(dir) == RootPath {
		return NormalizePath(name)
	}
	return NormalizePath(dir + "/" + name)
}

// StripMarkdownExt removes a literal trailing ".md". Other names pass through.
func StripMarkdownExt(name string) string {
	return strings.TrimSuffix(name, MarkdownExt)
}

// IsNote reports whether p names a Markdown note.
func IsNote(p string) bool {
	return strings.HasSuffix(p, MarkdownExt)
}

// Classify resolves a normalized path to its entry kind. Lookup errors
// classify as KindNone.
func Classify(store Provider, p string) models.EntryKind {
	e, err := store.Resolve(NormalizePath(p))
	if err != nil {
		return models.KindNone
	}
	return e.Kind
}

// ExistsAs reports whether p resolves to an entry of the given kind.
func ExistsAs(store Provider, p string, kind models.EntryKind) bool {
	return Classify(store, p) == kind
}
