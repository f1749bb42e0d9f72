// Package template appends vault templates to notes before they move.
package template

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/notemover/internal/models"
	"github.com/starford/notemover/internal/storage"
)

// Files reads templates from a folder in the vault.
type Files struct {
	store  storage.Provider
	folder string
	now    func() time.Time
}

// NewFiles creates a provider reading templates from folder.
func NewFiles(store storage.Provider, folder string) *Files {
	return &Files{store: store, folder: storage.NormalizePath(folder), now: time.Now}
}

// Path returns the vault path of a template reference. The .md extension
// is optional in references.
func (f *Files) Path(ref string) string {
	name := strings.TrimSpace(ref)
	if !storage.IsNote(name) {
		name += storage.MarkdownExt
	}
	return storage.JoinPath(f.folder, name)
}

// Append expands the template and appends it to the note.
func (f *Files) Append(_ context.Context, file models.NoteFile, ref string) error {
	tpl, err := f.store.Read(f.Path(ref))
	if err != nil {
		return fmt.Errorf("template: %s: %w", ref, err)
	}
	note, err := f.store.Read(file.Path)
	if err != nil {
		return fmt.Errorf("template: read note: %w", err)
	}

	now := f.now()
	content := substituteVariables(string(tpl), map[string]string{
		"title": storage.StripMarkdownExt(file.Name),
		"date":  now.Format("2006-01-02"),
		"time":  now.Format("15:04"),
		"path":  file.Path,
	})

	var b strings.Builder
	b.Write(note)
	if len(note) > 0 && !strings.HasSuffix(string(note), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(content)
	if err := f.store.Write(file.Path, []byte(b.String())); err != nil {
		return fmt.Errorf("template: write note: %w", err)
	}
	return nil
}

func substituteVariables(content string, variables map[string]string) string {
	result := content
	for key, value := range variables {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{%s}}", key), value)
	}
	return result
}
