// Package models defines the domain types for notemover.
package models

import (
	"path"
	"time"
)

// EntryKind classifies a path in the vault. A path denotes at most one entry.
type EntryKind int

const (
	KindNone EntryKind = iota
	KindFile
	KindDir
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "folder"
	default:
		return "none"
	}
}

// Entry is a resolved vault path. Kind is decided once at resolution time.
type Entry struct {
	Path string    `json:"path"`
	Kind EntryKind `json:"kind"`
}

// NoteFile is a Markdown file in the vault.
type NoteFile struct {
	Path   string `json:"path"`   // normalized, vault-relative
	Name   string `json:"name"`   // basename with extension
	Parent string `json:"parent"` // parent folder, "/" for the vault root
}

// NewNoteFile derives Name and Parent from a normalized vault-relative path.
func NewNoteFile(p string) NoteFile {
	parent := path.Dir(p)
	if parent == "." || parent == "" {
		parent = "/"
	}
	return NoteFile{Path: p, Name: path.Base(p), Parent: parent}
}

// Metadata is the frontmatter and tag set of a note, read fresh per evaluation.
type Metadata struct {
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Tags        []string       `json:"tags,omitempty"` // always with a leading '#'
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
}
